package template

import "errors"

// ErrInvalidInput indicates invalid template input.
var ErrInvalidInput = errors.New("invalid template input")
