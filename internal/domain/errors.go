package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks field-scoped validation failures that block a submission.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized means the session has no usable token or the backend refused it.
	ErrUnauthorized = errors.New("unauthorized")
)
