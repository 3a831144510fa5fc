package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrDuplicateToolName - a tool with this name is already registered (registration-time only)
	ErrDuplicateToolName = errors.New("duplicate tool name")

	// ErrUnknownTool - the model asked for a tool the registry does not hold
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments - tool arguments failed schema validation
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrModelUnavailable - inference backend unreachable or errored (turn fails with no commit, caller may retry)
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrChatIDMismatch - state update carried a different chat id (programming error, fatal to the turn)
	ErrChatIDMismatch = errors.New("chat id mismatch")

	// ErrNonMonotonicTranscript - state update tried to rewrite committed history (programming error, fatal to the turn)
	ErrNonMonotonicTranscript = errors.New("non-monotonic transcript")

	// ErrTurnInProgress - a second submission arrived while a turn was still active
	ErrTurnInProgress = errors.New("turn in progress")

	// ErrAdapterFailure - a domain service call failed on transport (handlers convert this to a "no data" artifact)
	ErrAdapterFailure = errors.New("adapter failure")
)
