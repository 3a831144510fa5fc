package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/osanhueza/fleetdesk/internal/chat"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type invertGeoJSONArgs struct {
	Coordinates string `json:"coordinates"`
}

type geoJSONGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

func init() {
	toolcore.RegisterBuiltin("invert_geojson", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &InvertGeoJSONTool{}, nil
	})
}

// InvertGeoJSONTool swaps the lon/lat order of every coordinate pair in a
// GeoJSON polygon the user pastes in.
type InvertGeoJSONTool struct{}

func (t *InvertGeoJSONTool) Name() string { return "invert_geojson" }

func (t *InvertGeoJSONTool) Description() string {
	return "Utiliza esta función para invertir el orden de las coordenadas de un texto " +
		"que entrega el usuario en formato GeoJson. Solicita siempre al usuario el texto " +
		"en GeoJson. No se debe utilizar otras herramientas."
}

func (t *InvertGeoJSONTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coordinates": map[string]any{
				"type":        "string",
				"description": "El texto en formato GeoJson que se requiere para invertir sus coordenadas",
			},
		},
		"required": []string{"coordinates"},
	}
}

func (t *InvertGeoJSONTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args invertGeoJSONArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	emit.Progress("Invirtiendo coordenadas...")

	var geometry geoJSONGeometry
	if err := json.Unmarshal([]byte(args.Coordinates), &geometry); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("decode geojson: %w", err)
	}

	for _, ring := range geometry.Coordinates {
		for _, pair := range ring {
			for i, j := 0, len(pair)-1; i < j; i, j = i+1, j-1 {
				pair[i], pair[j] = pair[j], pair[i]
			}
		}
	}

	out, err := json.Marshal(geometry)
	if err != nil {
		return toolcore.Artifact{}, err
	}

	return toolcore.Artifact{
		Summary: string(out),
		Display: &chat.DisplayPayload{
			Name: "geojson-result",
			Props: map[string]any{
				"geojson": string(out),
			},
		},
	}, nil
}
