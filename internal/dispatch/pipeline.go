package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/concurrency"
	"github.com/osanhueza/fleetdesk/internal/logger"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	"github.com/osanhueza/fleetdesk/internal/session"
	"github.com/osanhueza/fleetdesk/internal/tool"
)

// Pipeline executes one resolved tool call: registry validation, the
// handler's frame sequence, and the turn's single commit. Resolution and
// validation failures still commit - a plain-language explanation, never a
// raw error - so the turn can't be left open.
type Pipeline struct {
	registry    *tool.Registry
	frameBuffer int
}

func NewPipeline(registry *tool.Registry, frameBuffer int) *Pipeline {
	return &Pipeline{registry: registry, frameBuffer: frameBuffer}
}

func (p *Pipeline) Execute(ctx context.Context, store *chat.Store, provisional chat.State, call *contract.ToolCall, sess *session.Session, sink Sink) (*TurnResult, error) {
	turnID := logger.GetTurnID(ctx)

	t, err := p.registry.Resolve(call.Name)
	if err != nil {
		slog.Warn("Tool resolution failed", "tool", call.Name, "turn_id", turnID, "error", err)
		return p.commitFailure(ctx, store, provisional, sink,
			fmt.Sprintf("No puedo completar la solicitud: no existe una herramienta llamada %q.", call.Name))
	}

	args, err := tool.ValidateArguments(call.Name, t.Parameters(), json.RawMessage(call.Args))
	if err != nil {
		slog.Warn("Tool argument validation failed", "tool", call.Name, "turn_id", turnID, "error", err)
		return p.commitFailure(ctx, store, provisional, sink, validationFailureText(call.Name, err))
	}

	emitter := tool.NewEmitter(call.Name, p.frameBuffer)

	done := make(chan struct{})
	concurrency.SafeGo(func() {
		defer close(done)
		for frame := range emitter.Frames() {
			sink.ToolFrame(frame)
		}
	}, nil)

	inv := tool.Invocation{
		Args:    args,
		Session: sess,
		State:   provisional.Clone(),
	}

	artifact, genErr := t.Generate(ctx, inv, emitter)

	if ctx.Err() != nil {
		emitter.Abort()
		<-done
		store.Discard()
		slog.Info("Tool invocation cancelled", "tool", call.Name, "turn_id", turnID)
		return &TurnResult{State: TurnFailed}, ctx.Err()
	}

	if genErr != nil {
		// Handlers convert adapter failures themselves; this is the
		// backstop that keeps the one-commit invariant when one slips
		// through.
		slog.Warn("Tool handler errored, committing no-data artifact",
			"tool", call.Name, "turn_id", turnID, "error", genErr)
		artifact = tool.Artifact{
			Summary:  fmt.Sprintf("No se encontraron datos para la solicitud (%s).", call.Name),
			NotFound: true,
		}
	}

	emitter.Finish(tool.Frame{
		Text:     artifact.Summary,
		Display:  artifact.Display,
		NotFound: artifact.NotFound,
	})
	<-done

	msg := chat.Message{
		Role:    chat.RoleAssistant,
		Content: artifact.Summary,
		Display: artifact.Display,
	}
	if err := store.Commit(ctx, provisional.Append(msg)); err != nil {
		return &TurnResult{State: TurnFailed}, err
	}

	slog.Info("Turn committed", "tool", call.Name, "turn_id", turnID, "path", "tool", "not_found", artifact.NotFound)
	return &TurnResult{State: TurnCommitted, Committed: true, Message: msg}, nil
}

// commitFailure closes a turn whose tool call never ran: one terminal frame
// for the caller, one committed assistant message for the transcript.
func (p *Pipeline) commitFailure(ctx context.Context, store *chat.Store, provisional chat.State, sink Sink, text string) (*TurnResult, error) {
	sink.ToolFrame(tool.Frame{Kind: tool.FrameTerminal, Text: text, NotFound: true})

	msg := chat.Message{
		Role:    chat.RoleAssistant,
		Content: text,
	}
	if err := store.Commit(ctx, provisional.Append(msg)); err != nil {
		return &TurnResult{State: TurnFailed}, err
	}

	return &TurnResult{State: TurnCommitted, Committed: true, Message: msg}, nil
}

func validationFailureText(toolName string, err error) string {
	var argErr *tool.ArgumentError
	if errors.As(err, &argErr) {
		fields := make([]string, 0, len(argErr.Fields))
		for _, f := range argErr.Fields {
			fields = append(fields, f.Field)
		}
		return fmt.Sprintf("No puedo completar la solicitud: los datos entregados para %s no son válidos (%s).",
			toolName, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("No puedo completar la solicitud con los datos entregados para %s.", toolName)
}
