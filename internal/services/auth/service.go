// Package auth guards the moderation endpoints with a shared admin key.
package auth

import (
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Errors
var (
	ErrAdminDisabled   = errors.New("admin access is not configured")
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// Config holds configuration for the auth service
type Config struct {
	// AdminKeyHash is a bcrypt hash of the admin key. Empty disables admin access.
	AdminKeyHash string
}

// Service checks presented admin keys against the configured hash
type Service struct {
	hash   []byte
	logger *slog.Logger
}

// New creates a new auth Service
func New(cfg Config, logger *slog.Logger) *Service {
	var hash []byte
	if h := strings.TrimSpace(cfg.AdminKeyHash); h != "" {
		hash = []byte(h)
	}
	return &Service{hash: hash, logger: logger}
}

// Enabled reports whether an admin key hash is configured
func (s *Service) Enabled() bool {
	return s.hash != nil
}

// VerifyAdminKey returns nil when key matches the configured hash
func (s *Service) VerifyAdminKey(key string) error {
	if !s.Enabled() {
		return ErrAdminDisabled
	}
	if key == "" {
		return ErrInvalidAdminKey
	}

	err := bcrypt.CompareHashAndPassword(s.hash, []byte(key))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidAdminKey
	}
	if err != nil {
		// A malformed hash is a deployment problem, not a bad key
		s.logger.Error("admin key hash unusable", slog.String("error", err.Error()))
		return ErrInvalidAdminKey
	}
	return nil
}

// HashKey produces the value to configure as the admin key hash
func HashKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("admin key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
