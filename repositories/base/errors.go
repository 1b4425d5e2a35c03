package base

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Typed repository errors so callers can branch on NotFound vs Conflict vs
// Internal without inspecting driver errors.

// RepositoryError represents an unexpected database failure.
type RepositoryError struct {
	Operation string
	Table     string
	Cause     error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Table, e.Cause)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError represents a missing entity. Tenant-scoping failures
// deliberately surface as this same error.
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// DuplicateEntityError represents a uniqueness violation.
type DuplicateEntityError struct {
	Table string
	Field string
	Value string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Table, e.Field, e.Value)
}

func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{Table: table, Identifier: identifier}
}

func NewDuplicateEntityError(table, field, value string) *DuplicateEntityError {
	return &DuplicateEntityError{Table: table, Field: field, Value: value}
}

// HandleDBError maps a GORM error to the typed repository errors.
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return NewDuplicateEntityError(table, "key", identifier)
	}
	return &RepositoryError{Operation: operation, Table: table, Cause: err}
}

// WrapDBError wraps a database error with operation context, mapping
// uniqueness violations to DuplicateEntityError.
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return NewDuplicateEntityError(table, "key", "duplicate")
	}
	return &RepositoryError{Operation: operation, Table: table, Cause: err}
}

// isUniqueViolation matches driver-level unique constraint errors (pgx
// reports SQLSTATE 23505, sqlite reports "UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsEntityNotFound checks if err is an entity not found error.
func IsEntityNotFound(err error) bool {
	var notFound *EntityNotFoundError
	return errors.As(err, &notFound)
}

// IsDuplicateEntity checks if err is a duplicate entity error.
func IsDuplicateEntity(err error) bool {
	var duplicate *DuplicateEntityError
	return errors.As(err, &duplicate)
}
