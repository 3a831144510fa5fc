package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/osanhueza/fleetdesk/internal/chat"
	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
	"github.com/osanhueza/fleetdesk/internal/logger"
	"github.com/osanhueza/fleetdesk/internal/model"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	"github.com/osanhueza/fleetdesk/internal/session"
	"github.com/osanhueza/fleetdesk/internal/tool"
)

// Options tunes a dispatcher.
type Options struct {
	Model        string
	System       string
	HistoryLimit int
	FrameBuffer  int
}

// Dispatcher owns the per-turn flow: it appends the user message
// provisionally, asks the inference backend to pick between text and a tool
// call, then drives the chosen path to its single commit. One turn per chat
// session at a time; concurrent submissions are rejected, never interleaved.
type Dispatcher struct {
	registry *tool.Registry
	router   model.Router
	sessions session.Provider
	pipeline *Pipeline
	opts     Options

	mu     sync.Mutex
	active map[string]struct{}
}

func New(registry *tool.Registry, router model.Router, sessions session.Provider, opts Options) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		router:   router,
		sessions: sessions,
		pipeline: NewPipeline(registry, opts.FrameBuffer),
		opts:     opts,
		active:   make(map[string]struct{}),
	}
}

// SubmitUserMessage runs one turn against store and reports how it ended.
// On ModelUnavailable the provisional user message stays pending so the
// caller can retry; on cancellation the provisional state is discarded.
func (d *Dispatcher) SubmitUserMessage(ctx context.Context, store *chat.Store, content string, sink Sink) (*TurnResult, error) {
	chatID := store.ChatID()
	if !d.beginTurn(chatID) {
		return nil, fderrors.Wrap(fderrors.ErrTurnInProgress, "chat "+chatID)
	}
	defer d.endTurn(chatID)

	if sink == nil {
		sink = NullSink{}
	}

	turnID := ulid.Make().String()
	ctx = logger.WithChatID(ctx, chatID)
	ctx = logger.WithTurnID(ctx, turnID)

	slog.Info("Turn started", "chat_id", chatID, "turn_id", turnID)

	provisional := store.Get().Append(chat.Message{
		Role:    chat.RoleUser,
		Content: strings.TrimSpace(content),
	})
	if err := store.Update(provisional); err != nil {
		return nil, err
	}

	state := TurnAwaitingModelDecision

	var text strings.Builder
	onFragment := func(fragment string) {
		state = TurnEmittingText
		text.WriteString(fragment)
		sink.TextFragment(fragment)
	}

	req := contract.CompletionRequest{
		Model:    d.opts.Model,
		System:   d.opts.System,
		Messages: d.history(provisional),
		Tools:    d.registry.Descriptors(),
	}

	resp, err := d.router.Route(ctx, d.opts.Model, req, onFragment)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			store.Discard()
			slog.Info("Turn cancelled", "chat_id", chatID, "turn_id", turnID, "state", state.String())
			return &TurnResult{State: TurnFailed}, ctx.Err()
		}
		slog.Error("Model decision failed", "chat_id", chatID, "turn_id", turnID, "error", err)
		// Provisional user message stays pending so the caller can retry.
		return &TurnResult{State: TurnFailed}, err
	}

	if resp.ToolCall != nil {
		state = TurnInvokingTool
		slog.Info("Turn invoking tool", "chat_id", chatID, "turn_id", turnID, "tool", resp.ToolCall.Name)

		sess := d.currentSession(ctx)
		return d.pipeline.Execute(ctx, store, provisional, resp.ToolCall, sess, sink)
	}

	// Text path. Providers that do not stream still return final content.
	if text.Len() == 0 && resp.Content != "" {
		onFragment(resp.Content)
	}

	if ctx.Err() != nil {
		store.Discard()
		slog.Info("Turn cancelled before commit", "chat_id", chatID, "turn_id", turnID)
		return &TurnResult{State: TurnFailed}, ctx.Err()
	}

	msg := chat.Message{
		Role:    chat.RoleAssistant,
		Content: strings.TrimSpace(text.String()),
	}
	if err := store.Commit(ctx, provisional.Append(msg)); err != nil {
		return &TurnResult{State: TurnFailed}, err
	}

	slog.Info("Turn committed", "chat_id", chatID, "turn_id", turnID, "path", "text")
	return &TurnResult{State: TurnCommitted, Committed: true, Message: msg}, nil
}

// history converts the transcript to the model's view: the most recent
// messages, minus function/tool output entries, which the backend never
// sees again.
func (d *Dispatcher) history(state chat.State) []contract.Message {
	messages := make([]contract.Message, 0, len(state.Messages))
	for _, m := range state.Messages {
		if m.Role == chat.RoleFunction || m.Role == chat.RoleTool {
			continue
		}
		messages = append(messages, contract.Message{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		})
	}

	if d.opts.HistoryLimit > 0 && len(messages) > d.opts.HistoryLimit {
		messages = messages[len(messages)-d.opts.HistoryLimit:]
	}
	return messages
}

func (d *Dispatcher) currentSession(ctx context.Context) *session.Session {
	if d.sessions == nil {
		return nil
	}
	sess, err := d.sessions.GetSession(ctx)
	if err != nil {
		slog.Warn("Session lookup failed, running turn without identity", "error", err)
		return nil
	}
	return sess
}

func (d *Dispatcher) beginTurn(chatID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.active[chatID]; busy {
		return false
	}
	d.active[chatID] = struct{}{}
	return true
}

func (d *Dispatcher) endTurn(chatID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, chatID)
}
