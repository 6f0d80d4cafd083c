package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUpstream      = errors.New("ai provider error")
	ErrNotConfigured = errors.New("ai provider not configured")
)

// PolicyError lists the password rules a candidate password breaks.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return "password policy: " + strings.Join(e.Violations, "; ")
}
