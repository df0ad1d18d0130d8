// Package errors provides typed errors for the generation pipeline and the
// classification that turns raw failures into user-facing explanations.
package errors

import (
	"errors"
	"fmt"
)

// Literal failure markers raised by the remote capability. Classification is
// substring-based on these, so they must appear verbatim in error messages.
const (
	MarkerPromptBlocked = "PROMPT_BLOCKED"
	MarkerSafety        = "FINISH_SAFETY"
	MarkerRecitation    = "FINISH_RECITATION"
	MarkerFinishOther   = "FINISH_OTHER"
	MarkerNoContent     = "NO_CONTENT_RETURNED"
)

// Sentinel errors for common cases
var (
	ErrNoContent     = errors.New(MarkerNoContent)
	ErrClientClosed  = errors.New("client is closed")
	ErrMissingAPIKey = errors.New("no API key configured")
)

// BlockedPromptError means the prompt itself was rejected before generation.
type BlockedPromptError struct {
	Reason string
}

func (e *BlockedPromptError) Error() string {
	if e.Reason == "" {
		return MarkerPromptBlocked
	}
	return fmt.Sprintf("%s: %s", MarkerPromptBlocked, e.Reason)
}

// NewBlockedPromptError creates a new BlockedPromptError
func NewBlockedPromptError(reason string) *BlockedPromptError {
	return &BlockedPromptError{Reason: reason}
}

// FinishError means generation stopped with a blocking finish reason
// (safety filter, recitation filter, or an unexplained stop with no output).
type FinishError struct {
	Marker string // MarkerSafety, MarkerRecitation or MarkerFinishOther
}

func (e *FinishError) Error() string {
	return e.Marker
}

// NewFinishError creates a new FinishError
func NewFinishError(marker string) *FinishError {
	return &FinishError{Marker: marker}
}

// NoContentError means the call succeeded transport-wise but yielded nothing.
type NoContentError struct{}

func (e *NoContentError) Error() string {
	return MarkerNoContent
}

// Is allows comparison with the ErrNoContent sentinel
func (e *NoContentError) Is(target error) bool {
	if target == ErrNoContent {
		return true
	}
	_, ok := target.(*NoContentError)
	return ok
}

// APIError represents an API request failure with an HTTP status
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NetworkError represents a local connectivity failure
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unreachable during %s at %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}
