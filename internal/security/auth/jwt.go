package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// DefaultTokenTTL is the lifetime of an issued token
const DefaultTokenTTL = 24 * time.Hour

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager signing with secret. The secret must come
// from configuration; an empty one is rejected.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if issuer == "" {
		issuer = "stockroom"
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// ExpiresIn returns the lifetime of issued tokens
func (tm *TokenManager) ExpiresIn() time.Duration {
	return tm.ttl
}

// Issue signs a token whose subject is identity
func (tm *TokenManager) Issue(identity string) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("identity required")
	}
	now := tm.now()
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		Issuer:    tm.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// SubjectOf verifies the token and returns its subject. Expiry is reported
// as domain.ErrTokenExpired, every other failure as domain.ErrTokenMalformed.
func (tm *TokenManager) SubjectOf(tokenString string) (string, error) {
	claims, err := tm.parse(tokenString, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}
	return claims.Subject, nil
}

// IsValid reports whether the token belongs to expectedIdentity and has not expired
func (tm *TokenManager) IsValid(tokenString, expectedIdentity string) bool {
	subject, err := tm.SubjectOf(tokenString)
	if err != nil {
		return false
	}
	return subject == expectedIdentity && !tm.isExpired(tokenString)
}

// isExpired re-reads the expiry claim without validating it
func (tm *TokenManager) isExpired(tokenString string) bool {
	claims, err := tm.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !tm.now().Before(claims.ExpiresAt.Time)
}

func (tm *TokenManager) parse(tokenString string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithTimeFunc(tm.now),
	)
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>" header
func ExtractBearer(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
