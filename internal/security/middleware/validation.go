package middleware

import (
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aryan0dhankhar/stockroom/internal/apierror"
)

// markupChars are rejected in query values
const markupChars = `<>"'&`

// ValidateJSONContentType answers 415 when a request body on a write method
// is not declared as JSON
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !carriesBody(r) || isJSON(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("rejected request body",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("content_type", r.Header.Get("Content-Type")),
			)
			apierror.Write(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		})
	}
}

// SanitizeInputs rejects query values with markup characters and paths
// with traversal segments
func SanitizeInputs(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if param, bad := markupParam(r.URL.Query()); bad {
				log.Warn("rejected query parameter",
					slog.String("path", r.URL.Path),
					slog.String("param", param),
				)
				apierror.Write(w, http.StatusBadRequest, "Invalid input: dangerous characters detected", nil)
				return
			}
			if strings.Contains(r.URL.Path, "..") || strings.Contains(r.URL.Path, "//") {
				log.Warn("rejected path", slog.String("path", r.URL.Path))
				apierror.Write(w, http.StatusBadRequest, "Invalid path", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func carriesBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// isJSON accepts application/json and structured +json media types
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func markupParam(query url.Values) (string, bool) {
	for key, values := range query {
		for _, v := range values {
			if strings.ContainsAny(v, markupChars) {
				return key, true
			}
		}
	}
	return "", false
}
