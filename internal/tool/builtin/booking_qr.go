package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osanhueza/fleetdesk/internal/chat"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type bookingQRArgs struct {
	BookingID int `json:"booking_id"`
}

func init() {
	toolcore.RegisterBuiltin("booking_qr", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &BookingQRTool{BookingURL: options.BookingURL}, nil
	})
}

// BookingQRTool builds the QR payload for a booking. Purely local, no
// backend call involved.
type BookingQRTool struct {
	BookingURL string
}

func (t *BookingQRTool) Name() string { return "booking_qr" }

func (t *BookingQRTool) Description() string {
	return "Útil para crear un código QR a partir de un número de reserva."
}

func (t *BookingQRTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"booking_id": map[string]any{
				"type":        "integer",
				"description": "El número o código de la reserva para el cual se creará un código QR",
			},
		},
		"required": []string{"booking_id"},
	}
}

func (t *BookingQRTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args bookingQRArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	emit.Progress(fmt.Sprintf("Creando código QR para la reserva %d...", args.BookingID))

	payload, err := json.Marshal(map[string]any{
		"booking_id": args.BookingID,
		"url":        t.BookingURL,
	})
	if err != nil {
		return toolcore.Artifact{}, err
	}

	return toolcore.Artifact{
		Summary: fmt.Sprintf("Mostrando información de la reserva: %d", args.BookingID),
		Display: &chat.DisplayPayload{
			Name: "qr-code",
			Props: map[string]any{
				"value": string(payload),
				"size":  256,
			},
		},
	}, nil
}
