package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type vehicleDetailArgs struct {
	LicensePlate string `json:"license_plate"`
}

func init() {
	toolcore.RegisterBuiltin("vehicle_detail", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Fleet == nil {
			return nil, fmt.Errorf("fleet client is required")
		}
		return &VehicleDetailTool{Fleet: options.Fleet}, nil
	})
}

// VehicleDetailTool looks a vehicle up by license plate.
type VehicleDetailTool struct {
	Fleet *fleet.Client
}

func (t *VehicleDetailTool) Name() string { return "vehicle_detail" }

func (t *VehicleDetailTool) Description() string {
	return "Útil para obtener el detalle sobre un vehículo en particular (como status, " +
		"marca, color, conductores asignados), y NO es para saber si está online. " +
		"La búsqueda se realiza por patente, con formato ABCD12 (4 letras y 2 números)."
}

func (t *VehicleDetailTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"license_plate": map[string]any{
				"type": "string",
				"description": "El valor de la patente del vehículo del cual se necesita conocer " +
					"su información. Tiene formato ABCD12 (4 letras y 2 números).",
			},
		},
		"required": []string{"license_plate"},
	}
}

func (t *VehicleDetailTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args vehicleDetailArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	plate := strings.ToUpper(strings.TrimSpace(args.LicensePlate))
	emit.Progress(fmt.Sprintf("Buscando información del móvil PPU %s...", plate))

	// A malformed plate never reaches the backend, same outcome as a miss.
	if !fleet.ValidLicensePlate(plate) {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el móvil con PPU %s.", plate),
			NotFound: true,
		}, nil
	}

	detail, err := t.Fleet.GetVehicleDetail(ctx, plate)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if detail == nil {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el móvil con PPU %s.", plate),
			NotFound: true,
		}, nil
	}

	return toolcore.Artifact{
		Summary: fmt.Sprintf("Mostrando información del móvil PPU %s", plate),
		Display: &chat.DisplayPayload{
			Name: "vehicle-detail",
			Props: map[string]any{
				"license_plate":    detail.LicensePlate,
				"vehicle_number":   detail.VehicleNumber,
				"brand":            detail.Brand,
				"model":            detail.Model,
				"color":            detail.Color,
				"status":           detail.Status,
				"assigned_drivers": detail.AssignedDrivers,
			},
		},
	}, nil
}
