package task

import (
	"errors"
	"fmt"
)

var (
	// ErrRemote indicates the task backend reported a failure.
	ErrRemote = errors.New("task backend error")
	// ErrInvalidInput indicates invalid task input.
	ErrInvalidInput = errors.New("invalid task input")
)

// RemoteError carries the message reported by the task backend.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemote
}
