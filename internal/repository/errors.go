package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity or key doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
