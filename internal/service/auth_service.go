package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
	"github.com/aryan0dhankhar/stockroom/internal/security/auth"
)

const minPasswordLength = 8

// dummyHash is compared against when the email is unknown so that a missing
// account costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("stockroom-timing-equalizer"), bcrypt.DefaultCost)

// AuthService handles authentication operations
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// UserView is the public identity of a user
type UserView struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// AuthResult represents a successful login
type AuthResult struct {
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"`
	ExpiresIn int      `json:"expiresIn"` // seconds
	User      UserView `json:"user"`
}

// NormalizeEmail is the single place where the case policy lives:
// emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account with the USER role
func (s *AuthService) Register(ctx context.Context, email, password string) (*UserView, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validationf("email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Validationf("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailAlreadyRegistered
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []domain.Role{domain.RoleUser},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	view := viewOf(user)
	return &view, nil
}

// Authenticate verifies credentials and issues a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.ObserveLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.logger.Info("login attempt with unknown email")
		metrics.ObserveLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("user_id", user.ID.String()))
		metrics.ObserveLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID.String()))
	metrics.ObserveLogin("success")

	return &AuthResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.ExpiresIn().Seconds()),
		User:      viewOf(user),
	}, nil
}

// CurrentCaller resolves the identity attached to ctx by the auth middleware
func (s *AuthService) CurrentCaller(ctx context.Context) (*domain.User, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.userRepo.GetByEmail(ctx, identity)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Error("failed to resolve caller", slog.String("error", err.Error()))
		}
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, caller *domain.User, oldPassword, newPassword string) error {
	if caller == nil {
		return domain.ErrNotAuthenticated
	}
	if len(newPassword) < minPasswordLength {
		return domain.Validationf("new password must be at least %d characters", minPasswordLength)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(caller.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	caller.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, caller); err != nil {
		s.logger.Error("failed to update user password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info("user changed password", slog.String("user_id", caller.ID.String()))
	return nil
}

func viewOf(user *domain.User) UserView {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}
	return UserView{UserID: user.ID.String(), Email: user.Email, Roles: roles}
}
