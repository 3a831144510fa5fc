package builtin

import (
	"context"
	"fmt"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("future_bookings", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Fleet == nil {
			return nil, fmt.Errorf("fleet client is required")
		}
		return &FutureBookingsTool{Fleet: options.Fleet}, nil
	})
}

// FutureBookingsTool lists the bookings scheduled over the next hours.
type FutureBookingsTool struct {
	Fleet *fleet.Client
}

func (t *FutureBookingsTool) Name() string { return "future_bookings" }

func (t *FutureBookingsTool) Description() string {
	return "Útil para obtener reservas futuras, programadas para las siguientes horas."
}

func (t *FutureBookingsTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *FutureBookingsTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	emit.Progress("Buscando próximas reservas...")

	bookings, err := t.Fleet.GetUpcomingBookings(ctx)
	if err != nil {
		return toolcore.Artifact{}, err
	}
	if len(bookings) == 0 {
		return toolcore.Artifact{
			Summary:  "No se pudo encontrar reservas para las próximas horas.",
			NotFound: true,
		}, nil
	}

	fleet.SortBookingsByJobTime(bookings)

	return toolcore.Artifact{
		Summary: "Mostrando información de próximas reservas...",
		Display: &chat.DisplayPayload{
			Name: "booking-list",
			Props: map[string]any{
				"bookings": bookings,
			},
		},
	}, nil
}
