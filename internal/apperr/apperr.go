// Package apperr defines the error taxonomy shared by every service
// operation: validation, authorization, storage-constraint and not-found
// failures. Callers discriminate with errors.As, never by string matching.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input caught before the
// mutation reaches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports an absent, inactive or under-privileged actor.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// Unauthorized builds an AuthorizationError.
func Unauthorized(format string, args ...any) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// StorageConstraintError reports a check, uniqueness or not-null violation
// raised by the store. Constraint carries the violated constraint's name so
// tests can distinguish root causes.
type StorageConstraintError struct {
	Constraint string
	Err        error
}

func (e *StorageConstraintError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("constraint %q violated", e.Constraint)
	}
	return fmt.Sprintf("constraint %q violated: %v", e.Constraint, e.Err)
}

func (e *StorageConstraintError) Unwrap() error { return e.Err }

// Constraint builds a StorageConstraintError for a named constraint.
func Constraint(name string, cause error) error {
	return &StorageConstraintError{Constraint: name, Err: cause}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

// IsConstraint reports whether err is a StorageConstraintError, optionally
// against a specific constraint name.
func IsConstraint(err error, name string) bool {
	var c *StorageConstraintError
	if !errors.As(err, &c) {
		return false
	}
	return name == "" || c.Constraint == name
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
