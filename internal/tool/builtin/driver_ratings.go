package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	"github.com/osanhueza/fleetdesk/internal/model/contract"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type driverRatingsArgs struct {
	DriverQuery string `json:"driver_query"`
}

func init() {
	toolcore.RegisterBuiltin("driver_ratings", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Fleet == nil {
			return nil, fmt.Errorf("fleet client is required")
		}
		if options.Generator == nil {
			return nil, fmt.Errorf("generator is required")
		}
		return &DriverRatingsTool{
			Fleet:        options.Fleet,
			Generator:    options.Generator,
			Model:        options.SmartModel,
			SystemPrompt: options.RatingsSummaryPrompt,
		}, nil
	})
}

// DriverRatingsTool builds a narrative summary of the evaluations a driver
// received over the last 90 days.
type DriverRatingsTool struct {
	Fleet        *fleet.Client
	Generator    toolcore.Generator
	Model        string
	SystemPrompt string
}

func (t *DriverRatingsTool) Name() string { return "driver_ratings" }

func (t *DriverRatingsTool) Description() string {
	return "Utiliza esta función para construir un resumen de las evaluaciones que este " +
		"conductor ha recibido de parte de los pasajeros en los últimos 90 días. Se realiza " +
		"la búsqueda sólo por email o por teléfono. NO utilizar si sólo se quiere obtener " +
		"el perfil del conductor."
}

func (t *DriverRatingsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"driver_query": map[string]any{
				"type":        "string",
				"description": "El email o teléfono del conductor del cual se quiere buscar sus evaluaciones.",
			},
		},
		"required": []string{"driver_query"},
	}
}

func (t *DriverRatingsTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args driverRatingsArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	query := fleet.CleanDriverQuery(args.DriverQuery)
	emit.Progress(fmt.Sprintf("Buscando conductor: %s", query))

	fleetID, err := t.Fleet.SearchDriver(ctx, query)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if fleetID == 0 {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el conductor usando %s.", query),
			NotFound: true,
		}, nil
	}

	profile, err := t.Fleet.GetDriverProfile(ctx, fleetID)
	if err != nil {
		return toolcore.Artifact{}, err
	}

	emit.Progress("Buscando evaluaciones del conductor...")
	ratings, err := t.Fleet.GetDriverRatings(ctx, fleetID)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if len(ratings) == 0 {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el conductor usando %s.", query),
			NotFound: true,
		}, nil
	}

	emit.Progress("Armando resumen de las evaluaciones...")
	summary := fleet.SummarizeRatings(ratings)

	resp, err := t.Generator.Route(ctx, t.Model, contract.CompletionRequest{
		System: t.SystemPrompt,
		Messages: []contract.Message{{
			Role:    "assistant",
			Content: ratingsContext(profile, args.DriverQuery, summary),
		}},
	}, nil)
	if err != nil {
		return toolcore.Artifact{}, err
	}

	return toolcore.Artifact{
		Summary: strings.TrimSpace(resp.Content),
		Display: &chat.DisplayPayload{
			Name: "driver-ratings",
			Props: map[string]any{
				"fleet_id": fleetID,
				"summary":  summary,
			},
		},
	}, nil
}

func ratingsContext(profile *fleet.DriverProfile, query string, summary fleet.RatingSummary) string {
	name := ""
	avg := ""
	if profile != nil {
		name = profile.Personal.FullName
		avg = fleet.FormatAverage(profile.Quality.AvgRating)
	}

	summaryJSON, _ := json.Marshal(summary)
	lowJSON, _ := json.Marshal(summary.LowScore)

	return fmt.Sprintf(
		"Evaluaciones del conductor %s, buscando con %s, últimos 90 días\n\n"+
			"Resumen: %s\n\nCalificaciones bajas: %s\n\nCalificación promedio histórica: %s",
		name, query, summaryJSON, lowJSON, avg,
	)
}
