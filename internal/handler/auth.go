package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/service"
)

// CallerResolver turns the identity attached by the auth middleware into
// a user record
type CallerResolver interface {
	CurrentCaller(ctx context.Context) (*domain.User, error)
}

// Authenticator is the account surface used by AuthHandler
type Authenticator interface {
	CallerResolver
	Register(ctx context.Context, email, password string) (*service.UserView, error)
	Authenticate(ctx context.Context, email, password string) (*service.AuthResult, error)
	ChangePassword(ctx context.Context, caller *domain.User, oldPassword, newPassword string) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService Authenticator
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authenticator, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("registration failed", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, err := h.authService.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req changePasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), caller, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}
