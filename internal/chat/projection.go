package chat

import "fmt"

// DisplayVariant selects the rendering treatment for a projected entry.
type DisplayVariant string

const (
	DisplayUser      DisplayVariant = "user"
	DisplayAssistant DisplayVariant = "assistant"
	DisplayTool      DisplayVariant = "tool"
)

// DisplayEntry is one row of the display-oriented transcript view handed to
// a client on (re)hydration.
type DisplayEntry struct {
	ID      string          `json:"id"`
	Variant DisplayVariant  `json:"variant"`
	Tool    string          `json:"tool,omitempty"`
	Content string          `json:"content"`
	Display *DisplayPayload `json:"display,omitempty"`
}

// ToolCatalog answers whether a tool name is known. Function messages naming
// an unknown tool have no rendering and are omitted from the projection.
type ToolCatalog interface {
	Has(name string) bool
}

// Project derives the display view of a transcript. System messages are
// dropped. Every remaining message consumes one index position, so entry IDs
// of the form "{chatID}-{index}" stay stable even when an unknown-tool
// function message is omitted from the output. Pure and idempotent.
func Project(state State, catalog ToolCatalog) []DisplayEntry {
	entries := make([]DisplayEntry, 0, len(state.Messages))

	index := -1
	for _, msg := range state.Messages {
		if msg.Role == RoleSystem {
			continue
		}
		index++

		id := msg.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", state.ChatID, index)
		}

		switch msg.Role {
		case RoleFunction, RoleTool:
			if catalog == nil || !catalog.Has(msg.Name) {
				continue
			}
			entries = append(entries, DisplayEntry{
				ID:      id,
				Variant: DisplayTool,
				Tool:    msg.Name,
				Content: msg.Content,
				Display: cloneDisplay(msg.Display),
			})
		case RoleUser:
			entries = append(entries, DisplayEntry{
				ID:      id,
				Variant: DisplayUser,
				Content: msg.Content,
			})
		default:
			entries = append(entries, DisplayEntry{
				ID:      id,
				Variant: DisplayAssistant,
				Content: msg.Content,
				Display: cloneDisplay(msg.Display),
			})
		}
	}

	return entries
}

func cloneDisplay(d *DisplayPayload) *DisplayPayload {
	if d == nil {
		return nil
	}
	clone := DisplayPayload{Name: d.Name}
	if d.Props != nil {
		clone.Props = make(map[string]any, len(d.Props))
		for k, v := range d.Props {
			clone.Props[k] = v
		}
	}
	return &clone
}
