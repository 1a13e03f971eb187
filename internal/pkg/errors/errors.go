package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicateTag marks an intent tag collision on create/update.
	ErrDuplicateTag = errors.New("duplicate intent tag")
	// ErrInsufficientData marks unmet training preconditions.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrArtifactUnavailable marks a registry with no loaded artifacts.
	ErrArtifactUnavailable = errors.New("model artifacts unavailable")
)
