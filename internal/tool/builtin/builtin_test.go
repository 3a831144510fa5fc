package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osanhueza/fleetdesk/internal/fleet"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

func TestInstantiateBuiltinsCatalog(t *testing.T) {
	tools, err := toolcore.InstantiateBuiltins(toolcore.BuiltinOptions{
		Fleet:     fleet.NewClient("http://localhost:0", "", 0),
		Generator: &fakeGenerator{},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		names = append(names, tl.Name())
	}

	assert.Equal(t, []string{
		"airport_zone",
		"booking_info",
		"booking_qr",
		"create_text",
		"driver_profile",
		"driver_ratings",
		"future_bookings",
		"invert_geojson",
		"vehicle_detail",
		"vehicle_status",
	}, names)
}

func TestBuiltinsDeclareObjectSchemas(t *testing.T) {
	tools, err := toolcore.InstantiateBuiltins(toolcore.BuiltinOptions{
		Fleet:     fleet.NewClient("http://localhost:0", "", 0),
		Generator: &fakeGenerator{},
	})
	require.NoError(t, err)

	for _, tl := range tools {
		params := tl.Parameters()
		assert.Equal(t, "object", params["type"], tl.Name())
		_, ok := params["properties"].(map[string]any)
		assert.True(t, ok, "%s must declare properties", tl.Name())
		assert.NotEmpty(t, tl.Description(), tl.Name())
	}
}
