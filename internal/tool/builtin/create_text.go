package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/osanhueza/fleetdesk/internal/model/contract"
	toolcore "github.com/osanhueza/fleetdesk/internal/tool"
)

type createTextArgs struct {
	AddressedTo string `json:"addressed_to"`
	Subject     string `json:"subject"`
}

func init() {
	toolcore.RegisterBuiltin("create_text", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Generator == nil {
			return nil, fmt.Errorf("generator is required")
		}
		return &CreateTextTool{
			Generator:    options.Generator,
			Model:        options.SmartModel,
			SystemPrompt: options.CreateTextPrompt,
		}, nil
	})
}

// CreateTextTool drafts a free-form text (usually an email) with the smart
// model.
type CreateTextTool struct {
	Generator    toolcore.Generator
	Model        string
	SystemPrompt string
}

func (t *CreateTextTool) Name() string { return "create_text" }

func (t *CreateTextTool) Description() string {
	return "Utiliza esta función para escribir un texto que solicite el usuario. Puede " +
		"ser un email (lo más probable), pero podría ser también otro tipo de texto, " +
		"como un whatsapp, un texto para un proveedor, etc."
}

func (t *CreateTextTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"addressed_to": map[string]any{
				"type":        "string",
				"description": "El nombre de la persona que recibirá el texto. Si no se conoce, se puede dejar en blanco",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "El asunto de la comunicación, si aplica",
			},
		},
		"required": []string{"addressed_to", "subject"},
	}
}

func (t *CreateTextTool) Generate(ctx context.Context, inv toolcore.Invocation, emit *toolcore.Emitter) (toolcore.Artifact, error) {
	var args createTextArgs
	if err := json.Unmarshal(inv.Args, &args); err != nil {
		return toolcore.Artifact{}, fmt.Errorf("invalid input: %w", err)
	}

	emit.Progress("Redactando un texto para el usuario...")

	system := t.SystemPrompt
	if strings.TrimSpace(args.Subject) != "" {
		system += "\n\nAsunto: " + strings.TrimSpace(args.Subject)
	}
	if strings.TrimSpace(args.AddressedTo) != "" {
		system += "\nDirigido a: " + strings.TrimSpace(args.AddressedTo)
	}

	resp, err := t.Generator.Route(ctx, t.Model, contract.CompletionRequest{
		System: system,
		Messages: []contract.Message{{
			Role:    "assistant",
			Content: "Redactando un texto para el usuario...",
		}},
	}, nil)
	if err != nil {
		return toolcore.Artifact{}, err
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return toolcore.Artifact{
			Summary:  "No se pudo escribir el texto solicitado.",
			NotFound: true,
		}, nil
	}

	return toolcore.Artifact{Summary: text}, nil
}
