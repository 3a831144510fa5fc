package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type vehicleStatusArgs struct {
	VehicleNumber int `json:"vehicle_number"`
}

func init() {
	toolcore.RegisterBuiltin("vehicle_status", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Fleet == nil {
			return nil, fmt.Errorf("fleet client is required")
		}
		return &VehicleStatusTool{Fleet: options.Fleet}, nil
	})
}

// VehicleStatusTool answers whether a vehicle is connected to the app.
type VehicleStatusTool struct {
	Fleet *fleet.Client
}

func (t *VehicleStatusTool) Name() string { return "vehicle_status" }

func (t *VehicleStatusTool) Description() string {
	return "Útil para responder sobre el estado de un vehículo o móvil, es decir, " +
		"para saber si un vehículo o móvil se encuentra conectado a la aplicación " +
		"de Transvip (online) o si no está conectado (offline)."
}

func (t *VehicleStatusTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vehicle_number": map[string]any{
				"type":        "integer",
				"description": "El número del vehículo o móvil del cual se necesita saber su status",
			},
		},
		"required": []string{"vehicle_number"},
	}
}

func (t *VehicleStatusTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args vehicleStatusArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	emit.Progress(fmt.Sprintf("Buscando el status del móvil #%d...", args.VehicleNumber))

	status, err := t.Fleet.GetVehicleStatus(ctx, args.VehicleNumber)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if status == nil {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar el móvil %d.", args.VehicleNumber),
			NotFound: true,
		}, nil
	}

	if !status.Online() {
		return toolcore.Artifact{
			Summary: fmt.Sprintf("El móvil %d está desconectado de la app de Transvip.", args.VehicleNumber),
		}, nil
	}

	props := map[string]any{
		"vehicle_number": status.VehicleNumber,
		"status":         status.Status,
		"driver_name":    status.DriverName,
		"latitude":       status.Latitude,
		"longitude":      status.Longitude,
		"updated_at":     status.UpdatedAt,
	}
	if inv.Session != nil {
		props["operator_email"] = inv.Session.Email
	}

	return toolcore.Artifact{
		Summary: fmt.Sprintf("Mostrando información sobre el móvil: %d", args.VehicleNumber),
		Display: &chat.DisplayPayload{
			Name:  "vehicle-status",
			Props: props,
		},
	}, nil
}
