package project

import "errors"

// ErrInvalidInput indicates invalid project or study input.
var ErrInvalidInput = errors.New("invalid project input")
