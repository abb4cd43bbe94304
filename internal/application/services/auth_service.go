package services

import (
	"errors"
	"time"

	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/security"
)

// ErrInvalidCredentials is returned for a failed login attempt
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues editor tokens for the protected form mutation routes
type AuthService struct {
	jwtSecret      string
	editorPassword string
	tokenLifetime  time.Duration
	logger         *logging.ChanneledLogger
}

// NewAuthService creates an auth service
func NewAuthService(jwtSecret, editorPassword string, tokenLifetime time.Duration, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		jwtSecret:      jwtSecret,
		editorPassword: editorPassword,
		tokenLifetime:  tokenLifetime,
		logger:         logger,
	}
}

// Login verifies the editor password and returns a signed editor token
func (s *AuthService) Login(password string) (string, error) {
	if s.editorPassword == "" || s.jwtSecret == "" {
		return "", errors.New("editor authentication is not configured")
	}
	if !security.VerifyPassword(password, s.editorPassword) {
		if s.logger != nil {
			s.logger.Auth().Warn("Failed editor login attempt")
		}
		return "", ErrInvalidCredentials
	}

	token, err := security.GenerateEditorToken(s.jwtSecret, s.tokenLifetime)
	if err != nil {
		return "", err
	}
	if s.logger != nil {
		s.logger.Auth().Info("Editor login succeeded")
	}
	return token, nil
}

// Validate checks a bearer token and reports whether it grants editor rights
func (s *AuthService) Validate(token string) bool {
	claims, err := security.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return false
	}
	return security.RoleFromClaims(claims) == "editor"
}
