package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type bookingInfoArgs struct {
	BookingID int `json:"booking_id"`
}

func init() {
	toolcore.RegisterBuiltin("booking_info", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Fleet == nil {
			return nil, fmt.Errorf("fleet client is required")
		}
		return &BookingInfoTool{Fleet: options.Fleet}, nil
	})
}

// BookingInfoTool fetches a booking by id, falling back to a shared-package
// lookup when the direct lookup misses.
type BookingInfoTool struct {
	Fleet *fleet.Client
}

func (t *BookingInfoTool) Name() string { return "booking_info" }

func (t *BookingInfoTool) Description() string {
	return "Útil para obtener el detalle de una reserva o servicio solicitado en Transvip."
}

func (t *BookingInfoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"booking_id": map[string]any{
				"type":        "integer",
				"description": "El número o código de la reserva, servicio o paquete del cual se necesita saber su detalle",
			},
		},
		"required": []string{"booking_id"},
	}
}

func (t *BookingInfoTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args bookingInfoArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	emit.Progress(fmt.Sprintf("Buscando la reserva/paquete %d...", args.BookingID))

	shared := false
	bookings, err := t.Fleet.GetBookingInfo(ctx, args.BookingID, false)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if len(bookings) == 0 {
		bookings, err = t.Fleet.GetBookingInfo(ctx, args.BookingID, true)
		if err != nil {
			return toolcore.Artifact{}, err
		}
		shared = true
	}
	if len(bookings) == 0 {
		return toolcore.Artifact{
			Summary:  fmt.Sprintf("No se pudo encontrar la reserva o paquete con el código %d.", args.BookingID),
			NotFound: true,
		}, nil
	}

	fleet.SortBookingsByJobTime(bookings)

	kind := "la reserva"
	if shared {
		kind = "del paquete"
	}

	props := map[string]any{
		"booking_id": args.BookingID,
		"shared":     shared,
		"bookings":   bookings,
	}
	if inv.Session != nil {
		props["operator_email"] = inv.Session.Email
	}

	return toolcore.Artifact{
		Summary: fmt.Sprintf("Mostrando información %s: %d", kind, args.BookingID),
		Display: &chat.DisplayPayload{
			Name:  "booking-search",
			Props: props,
		},
	}, nil
}
