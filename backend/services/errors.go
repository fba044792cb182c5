// Package services holds the data-access functions behind the HTTP handlers.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidEdge        = errors.New("edge must connect two distinct nodes of the same roadmap")
	ErrCycle              = errors.New("edge would create a cycle")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError reports invalid input per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func invalid(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// notFound maps gorm's record-not-found onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
