package tool

import (
	"log/slog"

	"github.com/osanhueza/fleetdesk/internal/chat"
)

type FrameKind int

const (
	// FrameProgress is ephemeral feedback shown while a tool runs. Never
	// persisted into the transcript.
	FrameProgress FrameKind = iota

	// FrameTerminal closes the invocation: the tool's final artifact or its
	// "no data found" sentinel. Exactly one per invocation.
	FrameTerminal
)

// Frame is one unit of progressive output from a running tool.
type Frame struct {
	Kind     FrameKind
	Text     string
	Display  *chat.DisplayPayload
	NotFound bool
}

func (f Frame) Terminal() bool {
	return f.Kind == FrameTerminal
}

// Emitter carries progress frames from a handler to the caller. Sending is
// fire-and-forget: a slow consumer costs frames, never handler progress.
// The terminal frame is appended by the pipeline, not by handlers, which is
// what makes "exactly one terminal frame" hold by construction.
type Emitter struct {
	tool   string
	frames chan Frame
}

func NewEmitter(toolName string, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 16
	}
	return &Emitter{
		tool:   toolName,
		frames: make(chan Frame, buffer),
	}
}

// Progress emits an ephemeral progress frame without blocking.
func (e *Emitter) Progress(text string) {
	select {
	case e.frames <- Frame{Kind: FrameProgress, Text: text}:
	default:
		slog.Warn("Progress frame dropped, consumer lagging", "tool", e.tool)
	}
}

// Frames is the caller-side view; it yields frames in emission order and is
// closed after the terminal frame.
func (e *Emitter) Frames() <-chan Frame {
	return e.frames
}

// Finish delivers the terminal frame and closes the stream. Pipeline use
// only. Unlike progress frames the terminal frame is never dropped.
func (e *Emitter) Finish(terminal Frame) {
	terminal.Kind = FrameTerminal
	e.frames <- terminal
	close(e.frames)
}

// Abort closes the stream without a terminal frame. Only for cancelled
// turns, which never commit and owe the caller nothing further.
func (e *Emitter) Abort() {
	close(e.frames)
}
