package domain

import "errors"

var (
	// ErrAuth credential missing or rejected
	ErrAuth = errors.New("unauthorized")
	// ErrValidation request rejected before any side effect
	ErrValidation = errors.New("validation failed")
	// ErrPersistence message or profile store failure
	ErrPersistence = errors.New("persistence failed")
	// ErrAuthorization caller may not act on the resource
	ErrAuthorization = errors.New("not allowed")
	// ErrNotFound resource does not exist
	ErrNotFound = errors.New("not found")
)
