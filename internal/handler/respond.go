package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/apierror"
	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the json name so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeAndValidate reads a JSON body into dst and runs the struct's
// validate tags
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validationf("request body is required")
		}
		return domain.Validationf("malformed request body: %s", err.Error())
	}
	return validate.Struct(dst)
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.Validationf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// writeError maps an error kind onto its HTTP status. Unknown errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		apierror.Write(w, http.StatusBadRequest, "validation failed", validationMessages(verrs))
	case errors.Is(err, domain.ErrValidation):
		apierror.Write(w, http.StatusBadRequest, "validation failed", err.Error())
	case domain.IsNotFound(err):
		apierror.Write(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		apierror.Write(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrProductAlreadyExists),
		errors.Is(err, domain.ErrEmailAlreadyRegistered),
		errors.Is(err, domain.ErrReferencedByItems):
		apierror.Write(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrInsufficientStock):
		apierror.Write(w, http.StatusUnprocessableEntity, "insufficient stock", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed):
		apierror.Write(w, http.StatusUnauthorized, err.Error(), nil)
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		apierror.Write(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

func validationMessages(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
