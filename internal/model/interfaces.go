package model

import (
	"context"

	"github.com/osanhueza/fleetdesk/internal/model/contract"
)

type Router interface {
	Route(ctx context.Context, model string, req contract.CompletionRequest, onFragment contract.FragmentFunc) (*contract.CompletionResponse, error)
	ListModels() []string
}

type Provider interface {
	// Generate runs one completion. When onFragment is non-nil and the model
	// answers with text, each delta is pushed through it before the final
	// response returns.
	Generate(ctx context.Context, req contract.CompletionRequest, onFragment contract.FragmentFunc) (*contract.CompletionResponse, error)
	Name() string
}
