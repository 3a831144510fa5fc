package dispatch

import (
	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/tool"
)

// TurnState tracks one turn through its lifecycle:
// Idle -> AwaitingModelDecision -> {EmittingText | InvokingTool} -> Committed.
// The model decides between text and tool exactly once per turn.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnAwaitingModelDecision
	TurnEmittingText
	TurnInvokingTool
	TurnCommitted
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnAwaitingModelDecision:
		return "awaiting_model_decision"
	case TurnEmittingText:
		return "emitting_text"
	case TurnInvokingTool:
		return "invoking_tool"
	case TurnCommitted:
		return "committed"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sink observes a turn's progressive output: streamed text fragments on the
// text path, tool frames on the tool path. Calls arrive strictly in
// production order and never overlap within one turn.
type Sink interface {
	TextFragment(fragment string)
	ToolFrame(frame tool.Frame)
}

// NullSink discards everything. Useful for callers that only want the
// committed result.
type NullSink struct{}

func (NullSink) TextFragment(string)  {}
func (NullSink) ToolFrame(tool.Frame) {}

// TurnResult reports how a turn ended. Committed is true exactly when one
// commit reached the state store.
type TurnResult struct {
	State     TurnState
	Committed bool
	Message   chat.Message
}
