package analysis

import "errors"

var (
	// ErrEntityNotFound is returned when an entity ID is not in the catalog.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInvalidRequest is returned when a custom review request is missing required fields.
	ErrInvalidRequest = errors.New("invalid request")
)
