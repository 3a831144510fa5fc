package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/osanhueza/fleetdesk/internal/config"
	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
	"github.com/osanhueza/fleetdesk/internal/logger"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	anthropicProvider "github.com/osanhueza/fleetdesk/internal/model/providers/anthropic"
	geminiProvider "github.com/osanhueza/fleetdesk/internal/model/providers/gemini"
	openaiProvider "github.com/osanhueza/fleetdesk/internal/model/providers/openai"
)

// DefaultRouter maps configured model names to providers. It makes exactly
// one generation attempt per turn; retrying a failed turn is the caller's
// call, never the router's.
type DefaultRouter struct {
	cfg       config.ModelsConfig
	providers map[string]Provider
	mu        sync.RWMutex
}

func NewRouter(cfg config.ModelsConfig) (*DefaultRouter, error) {
	router := &DefaultRouter{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

func (r *DefaultRouter) Route(ctx context.Context, model string, req contract.CompletionRequest, onFragment contract.FragmentFunc) (*contract.CompletionResponse, error) {
	turnID := logger.GetTurnID(ctx)

	slog.Info("Routing completion request", "model", model, "turn_id", turnID)

	provider, resolvedModel, err := r.resolveProvider(ctx, model)
	if err != nil {
		return nil, err
	}

	req.Model = resolvedModel
	resp, err := provider.Generate(ctx, req, onFragment)
	if err != nil {
		slog.Error("Provider request failed", "model", resolvedModel, "error", err, "turn_id", turnID)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fderrors.ModelUnavailable("provider request failed: " + err.Error())
	}

	slog.Info("Request completed", "model", resolvedModel, "tool_call", resp.ToolCall != nil, "turn_id", turnID)
	return resp, nil
}

func (r *DefaultRouter) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for name := range r.providers {
		models = append(models, name)
	}
	sort.Strings(models)

	return models
}

func (r *DefaultRouter) initProviders() error {
	for _, entry := range r.cfg.Registry {
		provider, err := r.createProvider(entry)
		if err != nil {
			slog.Warn("Failed to create provider", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		r.providers[entry.Name] = provider
		slog.Info("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	if len(r.providers) == 0 && len(r.cfg.Registry) > 0 {
		return fderrors.ModelUnavailable("no providers initialized")
	}

	return nil
}

func (r *DefaultRouter) createProvider(entry config.ModelRegistry) (Provider, error) {
	timeout, err := config.DurationOrDefault(entry.RequestTimeout, config.DefaultModelRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request_timeout for model %s: %w", entry.Name, err)
	}

	switch entry.Provider {
	case "openai", "mistral":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
			if entry.Provider == "mistral" {
				baseURL = config.DefaultMistralBaseURL
			}
		}
		return openaiProvider.New(entry.APIKey, baseURL, entry.Name, timeout), nil
	case "anthropic":
		return anthropicProvider.New(entry.APIKey, timeout), nil
	case "gemini":
		return geminiProvider.New(entry.APIKey, timeout)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", entry.Provider)
	}
}

func (r *DefaultRouter) resolveProvider(ctx context.Context, model string) (Provider, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fderrors.Wrap(ctx.Err(), "provider resolution cancelled")
	default:
	}

	r.mu.RLock()
	provider, exists := r.providers[model]
	r.mu.RUnlock()

	if !exists {
		slog.Warn("Model not found", "model", model)

		if r.cfg.Fallback != "" && model != r.cfg.Fallback {
			slog.Info("Trying fallback model", "model", model, "fallback", r.cfg.Fallback)

			r.mu.RLock()
			fallbackProvider, fallbackExists := r.providers[r.cfg.Fallback]
			r.mu.RUnlock()
			if fallbackExists {
				return fallbackProvider, r.cfg.Fallback, nil
			}
		}

		return nil, "", fderrors.ModelUnavailable(fmt.Sprintf("model %s not found", model))
	}

	return provider, model, nil
}
