package tool

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/osanhueza/fleetdesk/internal/chat"
	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	"github.com/osanhueza/fleetdesk/internal/session"
)

// Invocation is what a handler receives: schema-validated arguments plus
// read-only session context. Handlers never touch the state store directly.
type Invocation struct {
	Args    json.RawMessage
	Session *session.Session
	State   chat.State
}

// Artifact is a handler's terminal result: a short human-readable summary
// for the transcript and an optional rich payload for rendering. NotFound
// marks the "no data found" sentinel.
type Artifact struct {
	Summary  string
	Display  *chat.DisplayPayload
	NotFound bool
}

// Tool is one invocable operation. Generate may emit any number of progress
// frames through emit and must return exactly one terminal artifact; the
// pipeline turns adapter failures surfacing as errors into a NotFound
// artifact so the turn always commits.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Generate(ctx context.Context, inv Invocation, emit *Emitter) (Artifact, error)
}

// Registry holds the static tool catalog. Populated at startup, immutable
// while a session runs.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) error {
	name := NormalizeToolName(t.Name())
	if name == "" {
		return fderrors.Wrap(fderrors.ErrInvalidArguments, "empty tool name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fderrors.Wrap(fderrors.ErrDuplicateToolName, name)
	}

	r.tools[name] = t
	return nil
}

func (r *Registry) Resolve(name string) (Tool, error) {
	name = NormalizeToolName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, fderrors.UnknownTool(name)
	}
	return t, nil
}

// Has reports whether a tool name is registered. Satisfies chat.ToolCatalog.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tools[NormalizeToolName(name)]
	return ok
}

// Descriptors returns the catalog handed to the inference backend, sorted by
// name for a stable prompt.
func (r *Registry) Descriptors() []contract.ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]contract.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(name)
}
