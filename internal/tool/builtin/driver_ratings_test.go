package builtin

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osanhueza/fleetdesk/internal/model/contract"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

// fakeGenerator returns a scripted narrative and records the request.
type fakeGenerator struct {
	lastReq contract.CompletionRequest
	content string
	err     error
}

func (g *fakeGenerator) Route(ctx context.Context, model string, req contract.CompletionRequest, onFragment contract.FragmentFunc) (*contract.CompletionResponse, error) {
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return &contract.CompletionResponse{Content: g.content}, nil
}

func TestDriverRatingsToolBuildsNarrative(t *testing.T) {
	client := fleetServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/drivers/search":
			assert.Equal(t, "56912345678", r.URL.Query().Get("q"))
			_, _ = io.WriteString(w, `{"fleet_id":77}`)
		case "/drivers/77/profile":
			_, _ = io.WriteString(w, `{"fleet_id":77,"personal":{"full_name":"Juan Pérez","email":"jp@transvip.cl"},"quality":{"avg_rating":4.671,"total_trips":812}}`)
		case "/drivers/77/ratings":
			_, _ = io.WriteString(w, `[{"booking_id":1,"score":5},{"booking_id":2,"score":1,"comment":"llegó tarde"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	generator := &fakeGenerator{content: "Resumen: desempeño estable con una queja puntual."}
	tool := &DriverRatingsTool{
		Fleet:        client,
		Generator:    generator,
		Model:        "smart-model",
		SystemPrompt: "Escribe un análisis breve.",
	}
	emit := toolcore.NewEmitter(tool.Name(), 8)

	artifact, err := tool.Generate(context.Background(), invocation(`{"driver_query":"+56912345678"}`), emit)
	require.NoError(t, err)

	assert.Equal(t, "Resumen: desempeño estable con una queja puntual.", artifact.Summary)
	assert.Equal(t, "Escribe un análisis breve.", generator.lastReq.System)

	require.Len(t, generator.lastReq.Messages, 1)
	promptContext := generator.lastReq.Messages[0].Content
	assert.Contains(t, promptContext, "Juan Pérez")
	assert.Contains(t, promptContext, "llegó tarde")
	assert.Contains(t, promptContext, "4.67", "historical average keeps two decimals")
}

func TestDriverRatingsToolDriverMissing(t *testing.T) {
	client := fleetServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	generator := &fakeGenerator{content: "nunca"}
	tool := &DriverRatingsTool{Fleet: client, Generator: generator, Model: "smart-model"}
	emit := toolcore.NewEmitter(tool.Name(), 8)

	artifact, err := tool.Generate(context.Background(), invocation(`{"driver_query":"nadie@transvip.cl"}`), emit)
	require.NoError(t, err)
	assert.True(t, artifact.NotFound)
	assert.Empty(t, generator.lastReq.Messages, "model must not run without a driver")
}
