package domain

import "errors"

var (
	// ErrValidation marks failures caused by invalid caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups for records that do not exist.
	ErrNotFound = errors.New("not found")
)
