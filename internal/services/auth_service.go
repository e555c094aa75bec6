package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskbot/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrBridgeNotConfigured  = errors.New("bridge credentials are not configured")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService authenticates the platform bridge against the configured
// username and bcrypt password hash.
type AuthService struct {
	username     string
	passwordHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(username, passwordHash string) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: passwordHash,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the bridge identity.
func (s *AuthService) Login(input LoginInput) (string, error) {
	if s.username == "" || s.passwordHash == "" {
		return "", ErrBridgeNotConfigured
	}
	username := strings.TrimSpace(input.Username)
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(input.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.username, nil
}

// HashPassword produces the value to configure as BRIDGE_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return string(hashed), nil
}
