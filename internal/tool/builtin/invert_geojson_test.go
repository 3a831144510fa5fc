package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

func TestInvertGeoJSONTool(t *testing.T) {
	tool := &InvertGeoJSONTool{}
	emit := toolcore.NewEmitter(tool.Name(), 8)

	payload := `{"type":"Polygon","coordinates":[[[-70.64,-33.45],[-70.65,-33.46],[-70.64,-33.45]]]}`
	args, err := json.Marshal(map[string]string{"coordinates": payload})
	require.NoError(t, err)

	artifact, err := tool.Generate(context.Background(), invocation(string(args)), emit)
	require.NoError(t, err)

	var out geoJSONGeometry
	require.NoError(t, json.Unmarshal([]byte(artifact.Summary), &out))
	assert.Equal(t, "Polygon", out.Type)
	require.Len(t, out.Coordinates, 1)
	assert.Equal(t, []float64{-33.45, -70.64}, out.Coordinates[0][0])
	assert.Equal(t, []float64{-33.46, -70.65}, out.Coordinates[0][1])
}

func TestInvertGeoJSONToolBadPayload(t *testing.T) {
	tool := &InvertGeoJSONTool{}
	emit := toolcore.NewEmitter(tool.Name(), 8)

	_, err := tool.Generate(context.Background(), invocation(`{"coordinates":"no es geojson"}`), emit)
	assert.Error(t, err)
}
