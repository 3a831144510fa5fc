package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type driverProfileArgs struct {
	DriverQuery string `json:"driver_query"`
}

func init() {
	toolcore.RegisterBuiltin("driver_profile", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Fleet == nil {
			return nil, fmt.Errorf("fleet client is required")
		}
		return &DriverProfileTool{Fleet: options.Fleet}, nil
	})
}

// DriverProfileTool resolves an email or phone to a driver profile.
type DriverProfileTool struct {
	Fleet *fleet.Client
}

func (t *DriverProfileTool) Name() string { return "driver_profile" }

func (t *DriverProfileTool) Description() string {
	return "Utiliza esta función para obtener información general del perfil de un " +
		"conductor de Transvip, como su nombre, teléfono, y otros. NO utilizar si se " +
		"quiere armar un resumen de las evaluaciones del conductor."
}

func (t *DriverProfileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"driver_query": map[string]any{
				"type":        "string",
				"description": "El email o teléfono del conductor del cual se quiere buscar su perfil.",
			},
		},
		"required": []string{"driver_query"},
	}
}

func (t *DriverProfileTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args driverProfileArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	query := fleet.CleanDriverQuery(args.DriverQuery)
	emit.Progress(fmt.Sprintf("Buscando conductor: %s...", query))

	fleetID, err := t.Fleet.SearchDriver(ctx, query)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if fleetID == 0 {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el conductor utilizando: %s.", args.DriverQuery),
			NotFound: true,
		}, nil
	}

	profile, err := t.Fleet.GetDriverProfile(ctx, fleetID)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if profile == nil {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el conductor utilizando: %s.", args.DriverQuery),
			NotFound: true,
		}, nil
	}

	return toolcore.Artifact{
		Summary: fmt.Sprintf("Mostrando perfil del conductor %s", profile.Personal.Email),
		Display: &chat.DisplayPayload{
			Name: "driver-profile",
			Props: map[string]any{
				"fleet_id":    profile.FleetID,
				"full_name":   profile.Personal.FullName,
				"email":       profile.Personal.Email,
				"phone":       profile.Personal.Phone,
				"avg_rating":  profile.Quality.AvgRating,
				"total_trips": profile.Quality.TotalTrips,
				"status":      profile.Status,
			},
		},
	}, nil
}
