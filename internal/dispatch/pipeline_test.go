package dispatch

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osanhueza/fleetdesk/internal/chat"
	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	"github.com/osanhueza/fleetdesk/internal/tool"
)

// countingTool records whether its handler ran.
type countingTool struct {
	name     string
	calls    int
	artifact tool.Artifact
	err      error
	progress []string
	block    chan struct{}
}

func (c *countingTool) Name() string        { return c.name }
func (c *countingTool) Description() string { return "fixture" }
func (c *countingTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vehicle_number": map[string]any{"type": "integer"},
		},
		"required": []string{"vehicle_number"},
	}
}

func (c *countingTool) Generate(ctx context.Context, inv tool.Invocation, emit *tool.Emitter) (tool.Artifact, error) {
	c.calls++
	for _, p := range c.progress {
		emit.Progress(p)
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return tool.Artifact{}, ctx.Err()
		}
	}
	return c.artifact, c.err
}

func runPipeline(t *testing.T, fixture *countingTool, args string) (*chat.Store, *collectingSink, *TurnResult) {
	t.Helper()

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(fixture))
	pipeline := NewPipeline(registry, 8)

	store := chat.NewStore(chat.NewState("chat-1"), nil)
	provisional := store.Get().Append(chat.Message{Role: chat.RoleUser, Content: "consulta"})
	require.NoError(t, store.Update(provisional))

	sink := &collectingSink{}
	result, err := pipeline.Execute(context.Background(), store, provisional,
		&contract.ToolCall{Name: fixture.name, Args: args}, nil, sink)
	require.NoError(t, err)

	return store, sink, result
}

func TestPipelineInvalidArgumentsSkipsHandler(t *testing.T) {
	fixture := &countingTool{name: "vehicle_lookup"}

	store, sink, result := runPipeline(t, fixture, `{"vehicle_number":"12a"}`)

	assert.Zero(t, fixture.calls, "handler must not run on validation failure")
	require.True(t, result.Committed)

	committed := store.Committed()
	require.Len(t, committed.Messages, 2)
	msg := committed.Messages[1].Content
	assert.Contains(t, msg, "vehicle_lookup")
	assert.Contains(t, msg, "vehicle_number")
	assert.NotContains(t, strings.ToLower(msg), "error", "committed text must be plain language")

	require.Len(t, sink.frames, 1)
	assert.True(t, sink.frames[0].Terminal())
}

func TestPipelineUnknownToolCommitsFailure(t *testing.T) {
	registry := tool.NewRegistry()
	pipeline := NewPipeline(registry, 8)

	store := chat.NewStore(chat.NewState("chat-1"), nil)
	provisional := store.Get().Append(chat.Message{Role: chat.RoleUser, Content: "consulta"})
	require.NoError(t, store.Update(provisional))

	sink := &collectingSink{}
	result, err := pipeline.Execute(context.Background(), store, provisional,
		&contract.ToolCall{Name: "no_existe", Args: `{}`}, nil, sink)
	require.NoError(t, err)
	require.True(t, result.Committed)

	committed := store.Committed()
	require.Len(t, committed.Messages, 2)
	assert.Contains(t, committed.Messages[1].Content, "no_existe")
}

func TestPipelineAdapterFailureCommitsNoData(t *testing.T) {
	fixture := &countingTool{
		name: "vehicle_lookup",
		err:  fderrors.AdapterFailure("backend 500"),
	}

	store, sink, result := runPipeline(t, fixture, `{"vehicle_number":42}`)

	assert.Equal(t, 1, fixture.calls)
	require.True(t, result.Committed)

	committed := store.Committed()
	require.Len(t, committed.Messages, 2)
	assert.Contains(t, committed.Messages[1].Content, "No se encontraron datos")

	terminal := sink.frames[len(sink.frames)-1]
	assert.True(t, terminal.Terminal())
	assert.True(t, terminal.NotFound)
}

func TestPipelineDeliversProgressThenOneTerminal(t *testing.T) {
	fixture := &countingTool{
		name:     "vehicle_lookup",
		progress: []string{"buscando...", "casi listo..."},
		artifact: tool.Artifact{Summary: "Mostrando información sobre el móvil: 42"},
	}

	store, sink, _ := runPipeline(t, fixture, `{"vehicle_number":42}`)

	require.Len(t, sink.frames, 3)
	assert.False(t, sink.frames[0].Terminal())
	assert.False(t, sink.frames[1].Terminal())
	assert.True(t, sink.frames[2].Terminal())
	assert.Equal(t, "Mostrando información sobre el móvil: 42", sink.frames[2].Text)

	// Progress frames are ephemeral: only the terminal summary is committed.
	committed := store.Committed()
	require.Len(t, committed.Messages, 2)
	assert.Equal(t, "Mostrando información sobre el móvil: 42", committed.Messages[1].Content)
}

func TestPipelineCancellationDiscards(t *testing.T) {
	fixture := &countingTool{
		name:  "vehicle_lookup",
		block: make(chan struct{}),
	}

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(fixture))
	pipeline := NewPipeline(registry, 8)

	store := chat.NewStore(chat.NewState("chat-1"), nil)
	provisional := store.Get().Append(chat.Message{Role: chat.RoleUser, Content: "consulta"})
	require.NoError(t, store.Update(provisional))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Execute(ctx, store, provisional,
		&contract.ToolCall{Name: fixture.name, Args: `{"vehicle_number":42}`}, nil, &collectingSink{})
	require.Error(t, err)

	assert.Empty(t, store.Committed().Messages)
	assert.Empty(t, store.Get().Messages)
}

func TestPipelineCoercesNumericString(t *testing.T) {
	fixture := &countingTool{
		name:     "vehicle_lookup",
		artifact: tool.Artifact{Summary: "ok"},
	}

	_, _, result := runPipeline(t, fixture, fmt.Sprintf(`{"vehicle_number":%q}`, "42"))

	assert.Equal(t, 1, fixture.calls, "coercible arguments must reach the handler")
	require.True(t, result.Committed)
}
