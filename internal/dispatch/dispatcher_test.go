package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osanhueza/fleetdesk/internal/chat"
	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	"github.com/osanhueza/fleetdesk/internal/tool"
)

// fakeRouter scripts the model decision for one turn at a time.
type fakeRouter struct {
	mu        sync.Mutex
	responses []routedResponse
	calls     int
	started   chan struct{}
	release   chan struct{}
}

type routedResponse struct {
	fragments []string
	resp      *contract.CompletionResponse
	err       error
}

func (r *fakeRouter) Route(ctx context.Context, model string, req contract.CompletionRequest, onFragment contract.FragmentFunc) (*contract.CompletionResponse, error) {
	r.mu.Lock()
	idx := r.calls
	r.calls++
	if idx >= len(r.responses) {
		idx = len(r.responses) - 1
	}
	scripted := r.responses[idx]
	started := r.started
	release := r.release
	r.mu.Unlock()

	if started != nil {
		close(started)
		r.mu.Lock()
		r.started = nil
		r.mu.Unlock()
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if scripted.err != nil {
		return nil, scripted.err
	}
	for _, f := range scripted.fragments {
		if onFragment != nil {
			onFragment(f)
		}
	}
	return scripted.resp, nil
}

func (r *fakeRouter) ListModels() []string { return []string{"fake"} }

type collectingSink struct {
	mu        sync.Mutex
	fragments []string
	frames    []tool.Frame
}

func (s *collectingSink) TextFragment(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragment)
}

func (s *collectingSink) ToolFrame(frame tool.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func newTestDispatcher(router *fakeRouter, tools ...tool.Tool) (*Dispatcher, *tool.Registry) {
	registry := tool.NewRegistry()
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			panic(err)
		}
	}
	d := New(registry, router, nil, Options{
		Model:  "fake",
		System: "asistente de prueba",
	})
	return d, registry
}

func TestSubmitUserMessageTextPath(t *testing.T) {
	router := &fakeRouter{responses: []routedResponse{{
		fragments: []string{"Hola, ", "¿en qué te ayudo?"},
		resp:      &contract.CompletionResponse{Content: "Hola, ¿en qué te ayudo?"},
	}}}
	d, _ := newTestDispatcher(router)
	store := chat.NewStore(chat.NewState("chat-1"), nil)
	sink := &collectingSink{}

	result, err := d.SubmitUserMessage(context.Background(), store, "  hola  ", sink)
	require.NoError(t, err)
	require.True(t, result.Committed)
	assert.Equal(t, TurnCommitted, result.State)

	committed := store.Committed()
	require.Len(t, committed.Messages, 2)
	assert.Equal(t, chat.RoleUser, committed.Messages[0].Role)
	assert.Equal(t, "hola", committed.Messages[0].Content)
	assert.Equal(t, chat.RoleAssistant, committed.Messages[1].Role)
	assert.Equal(t, "Hola, ¿en qué te ayudo?", committed.Messages[1].Content)
	assert.Equal(t, []string{"Hola, ", "¿en qué te ayudo?"}, sink.fragments)
	assert.Len(t, committed.Interactions, 1)
}

func TestSubmitUserMessageOrdersTwoTurns(t *testing.T) {
	router := &fakeRouter{responses: []routedResponse{
		{resp: &contract.CompletionResponse{Content: "primera"}},
		{resp: &contract.CompletionResponse{Content: "segunda"}},
	}}
	d, _ := newTestDispatcher(router)
	store := chat.NewStore(chat.NewState("chat-1"), nil)

	_, err := d.SubmitUserMessage(context.Background(), store, "uno", nil)
	require.NoError(t, err)
	_, err = d.SubmitUserMessage(context.Background(), store, "dos", nil)
	require.NoError(t, err)

	committed := store.Committed()
	require.Len(t, committed.Messages, 4)
	want := []string{"uno", "primera", "dos", "segunda"}
	for i, content := range want {
		assert.Equal(t, content, committed.Messages[i].Content, "message %d", i)
	}
	assert.Len(t, committed.Interactions, 2)
}

func TestSubmitUserMessageModelUnavailable(t *testing.T) {
	router := &fakeRouter{responses: []routedResponse{{
		err: fderrors.ModelUnavailable("backend down"),
	}}}
	d, _ := newTestDispatcher(router)
	store := chat.NewStore(chat.NewState("chat-1"), nil)

	result, err := d.SubmitUserMessage(context.Background(), store, "hola", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fderrors.ErrModelUnavailable))
	assert.Equal(t, TurnFailed, result.State)
	assert.False(t, result.Committed)

	// No commit: the committed transcript is untouched, the user message
	// stays pending for a retry.
	assert.Empty(t, store.Committed().Messages)
	require.Len(t, store.Get().Messages, 1)
	assert.Equal(t, "hola", store.Get().Messages[0].Content)
}

func TestSubmitUserMessageRejectsConcurrentTurn(t *testing.T) {
	router := &fakeRouter{
		responses: []routedResponse{{resp: &contract.CompletionResponse{Content: "lenta"}}},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	d, _ := newTestDispatcher(router)
	store := chat.NewStore(chat.NewState("chat-1"), nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := d.SubmitUserMessage(context.Background(), store, "primera", nil)
		firstDone <- err
	}()

	<-router.started

	_, err := d.SubmitUserMessage(context.Background(), store, "segunda", nil)
	assert.True(t, errors.Is(err, fderrors.ErrTurnInProgress))

	close(router.release)
	require.NoError(t, <-firstDone)

	// Only the first turn committed.
	assert.Len(t, store.Committed().Messages, 2)
}

func TestSubmitUserMessageCancellationDiscards(t *testing.T) {
	router := &fakeRouter{
		responses: []routedResponse{{resp: &contract.CompletionResponse{Content: "nunca"}}},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	d, _ := newTestDispatcher(router)
	store := chat.NewStore(chat.NewState("chat-1"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.SubmitUserMessage(ctx, store, "hola", nil)
		done <- err
	}()

	<-router.started
	cancel()

	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// Cancelled turns leave no trace, provisional included.
	assert.Empty(t, store.Committed().Messages)
	assert.Empty(t, store.Get().Messages)
}

func TestHistoryFiltersToolOutputAndLimits(t *testing.T) {
	router := &fakeRouter{responses: []routedResponse{{resp: &contract.CompletionResponse{Content: "ok"}}}}
	d, _ := newTestDispatcher(router)
	d.opts.HistoryLimit = 2

	state := chat.NewState("chat-1").Append(
		chat.Message{Role: chat.RoleUser, Content: "uno"},
		chat.Message{Role: chat.RoleFunction, Name: "vehicle_status", Content: "resultado"},
		chat.Message{Role: chat.RoleAssistant, Content: "dos"},
		chat.Message{Role: chat.RoleUser, Content: "tres"},
	)

	history := d.history(state)
	require.Len(t, history, 2)
	assert.Equal(t, "dos", history[0].Content)
	assert.Equal(t, "tres", history[1].Content)
}

func TestSubmitUserMessageToolPath(t *testing.T) {
	router := &fakeRouter{responses: []routedResponse{{
		resp: &contract.CompletionResponse{ToolCall: &contract.ToolCall{
			ID:   "call_1",
			Name: "echo",
			Args: `{"text":"hola"}`,
		}},
	}}}
	d, _ := newTestDispatcher(router, &echoTool{})
	store := chat.NewStore(chat.NewState("chat-1"), nil)
	sink := &collectingSink{}

	result, err := d.SubmitUserMessage(context.Background(), store, "di hola", sink)
	require.NoError(t, err)
	require.True(t, result.Committed)

	committed := store.Committed()
	require.Len(t, committed.Messages, 2)
	assert.Equal(t, "eco: hola", committed.Messages[1].Content)

	require.NotEmpty(t, sink.frames)
	assert.True(t, sink.frames[len(sink.frames)-1].Terminal())
}

// echoTool is the minimal tool-path fixture: one progress frame, one
// summary.
type echoTool struct{}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "repite un texto" }
func (e *echoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func (e *echoTool) Generate(ctx context.Context, inv tool.Invocation, emit *tool.Emitter) (tool.Artifact, error) {
	emit.Progress("repitiendo...")
	var args struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return tool.Artifact{}, err
	}
	return tool.Artifact{Summary: "eco: " + args.Text}, nil
}
