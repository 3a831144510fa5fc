package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

func TestBookingQRTool(t *testing.T) {
	tool := &BookingQRTool{BookingURL: "https://www.transvip.cl/"}
	emit := toolcore.NewEmitter(tool.Name(), 8)

	artifact, err := tool.Generate(context.Background(), invocation(`{"booking_id":900123}`), emit)
	require.NoError(t, err)

	assert.Equal(t, "Mostrando información de la reserva: 900123", artifact.Summary)
	require.NotNil(t, artifact.Display)
	assert.Equal(t, "qr-code", artifact.Display.Name)

	value, ok := artifact.Display.Props["value"].(string)
	require.True(t, ok)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(value), &payload))
	assert.Equal(t, float64(900123), payload["booking_id"])
	assert.Equal(t, "https://www.transvip.cl/", payload["url"])
}
