package tool

import (
	"context"
	"errors"
	"testing"

	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
)

type stubTool struct {
	name string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (s *stubTool) Generate(ctx context.Context, inv Invocation, emit *Emitter) (Artifact, error) {
	return Artifact{Summary: "ok"}, nil
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubTool{name: "lookup"}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	err := registry.Register(&stubTool{name: "lookup"})
	if !errors.Is(err, fderrors.ErrDuplicateToolName) {
		t.Fatalf("expected duplicate-tool-name error, got %v", err)
	}

	// Whitespace variants collapse onto the same name.
	err = registry.Register(&stubTool{name: "  lookup  "})
	if !errors.Is(err, fderrors.ErrDuplicateToolName) {
		t.Fatalf("expected duplicate for normalized name, got %v", err)
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("missing")
	if !errors.Is(err, fderrors.ErrUnknownTool) {
		t.Fatalf("expected unknown-tool error, got %v", err)
	}
	if registry.Has("missing") {
		t.Error("Has() must be false for unregistered tools")
	}
}

func TestRegistryDescriptorsSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(&stubTool{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	defs := registry.Descriptors()
	if len(defs) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(defs))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("descriptor %d = %q, want %q", i, def.Name, want[i])
		}
	}
}
