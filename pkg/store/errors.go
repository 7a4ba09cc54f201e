package store

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or constraint-violating input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports an absent (or inactive) entity.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// PermissionDeniedError reports an actor without the right to mutate.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return e.Reason
}

// ConstraintViolationError reports a uniqueness or integrity breach at the
// store level. Constraint names which invariant was broken.
type ConstraintViolationError struct {
	Constraint string
}

func (e *ConstraintViolationError) Error() string {
	return e.Constraint
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsPermissionDenied(err error) bool {
	var e *PermissionDeniedError
	return errors.As(err, &e)
}

func IsConstraintViolation(err error) bool {
	var e *ConstraintViolationError
	return errors.As(err, &e)
}
