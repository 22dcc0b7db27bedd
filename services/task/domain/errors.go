// Package domain holds the error taxonomy shared by every task entity kind.
// All four categories propagate unchanged to the transport layer; check them
// with errors.Is against the sentinels, or errors.As for the carried detail.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match these via errors.Is.
var (
	// ErrNotFound indicates the requested entity id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict indicates the entity's stored version differs from
	// the version the caller observed. The caller decides whether to refetch
	// and retry; the service never retries on its own.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidArgument indicates a contract violation: id or version preset
	// on create, a non-nullable field cleared via patch, or a field value
	// failing validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable indicates the underlying store call failed for
	// infrastructure reasons. Not retried by the service.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NotFoundError reports which entity was missing.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s [%d] not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound returns a NotFoundError for the given kind and id.
func NewNotFound(kind string, id int64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// VersionConflictError carries both sides of a failed optimistic-lock check.
type VersionConflictError struct {
	Kind     string
	ID       int64
	Expected int64
	Found    int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s [%d] has a different version than the expected one. Expected [%d], found [%d]",
		e.Kind, e.ID, e.Expected, e.Found)
}

func (e *VersionConflictError) Is(target error) bool { return target == ErrVersionConflict }

// NewVersionConflict returns a VersionConflictError for the given kind and id.
func NewVersionConflict(kind string, id, expected, found int64) error {
	return &VersionConflictError{Kind: kind, ID: id, Expected: expected, Found: found}
}

// NewInvalidArgument returns an error matching ErrInvalidArgument with a
// formatted reason.
func NewInvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
