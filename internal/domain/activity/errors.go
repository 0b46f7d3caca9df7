package activity

import "errors"

// ErrInvalidInput indicates an activity entry was missing required fields.
var ErrInvalidInput = errors.New("invalid activity input")
