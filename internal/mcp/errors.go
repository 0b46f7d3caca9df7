package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
	"github.com/ganot/studyvault/internal/repository"
)

// ErrUnknownMethod is returned for a method or tool name the handler does not serve.
var ErrUnknownMethod = errors.New("unknown method")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var remoteErr *task.RemoteError
	switch {
	case errors.As(err, &remoteErr):
		return &APIError{Code: "REMOTE_ERROR", Message: remoteErr.Message, Details: map[string]string{"op": remoteErr.Op}, RecoveryHint: "Retry; the local task collection is unchanged"}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, template.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields and enum values"}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_METHOD", Message: err.Error(), RecoveryHint: "Call tools/list for available tools"}
	default:
		return nil
	}
}

func invalidParams(err error) error {
	return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check the tool input schema"}
}
