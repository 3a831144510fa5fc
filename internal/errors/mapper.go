package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MapAdapterError maps transport-level failures from domain service clients
// into the fleetdesk taxonomy. Context cancellation propagates as-is so the
// dispatcher can distinguish a cancelled turn from a failed lookup.
func MapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", ErrAdapterFailure)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return fmt.Errorf("request timeout: %w", ErrAdapterFailure)

	case strings.Contains(errStr, "network"), strings.Contains(errStr, "connection"), strings.Contains(errStr, "unreachable"):
		return fmt.Errorf("network error: %w", ErrAdapterFailure)

	default:
		return fmt.Errorf("%s: %w", err.Error(), ErrAdapterFailure)
	}
}

// Category returns the taxonomy category name for an error
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrDuplicateToolName):
		return "DuplicateToolName"
	case errors.Is(err, ErrUnknownTool):
		return "UnknownTool"
	case errors.Is(err, ErrInvalidArguments):
		return "InvalidArguments"
	case errors.Is(err, ErrModelUnavailable):
		return "ModelUnavailable"
	case errors.Is(err, ErrChatIDMismatch):
		return "ChatIdMismatch"
	case errors.Is(err, ErrNonMonotonicTranscript):
		return "NonMonotonicTranscript"
	case errors.Is(err, ErrTurnInProgress):
		return "TurnInProgress"
	case errors.Is(err, ErrAdapterFailure):
		return "AdapterFailure"
	default:
		return "Unknown"
	}
}

// IsFatal reports whether an error is a state-store invariant violation.
// These are programming errors: the turn must fail without a commit.
func IsFatal(err error) bool {
	return errors.Is(err, ErrChatIDMismatch) || errors.Is(err, ErrNonMonotonicTranscript)
}

// IsRetryable reports whether the caller may resubmit the same turn.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrTurnInProgress)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// UnknownTool wraps a message as an unknown-tool error
func UnknownTool(message string) error {
	return fmt.Errorf("%s: %w", message, ErrUnknownTool)
}

// ModelUnavailable wraps a message as a model-unavailable error
func ModelUnavailable(message string) error {
	return fmt.Errorf("%s: %w", message, ErrModelUnavailable)
}

// AdapterFailure wraps a message as an adapter failure
func AdapterFailure(message string) error {
	return fmt.Errorf("%s: %w", message, ErrAdapterFailure)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}
