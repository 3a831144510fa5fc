package chat

// Role identifies who produced a transcript entry. Roles are mutually
// exclusive and drive projection filtering.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleFunction  Role = "function"
	RoleData      Role = "data"
	RoleTool      Role = "tool"
)

// DisplayPayload is a structured rendering payload carried alongside a
// message's content. The core never interprets it.
type DisplayPayload struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// Message is one transcript entry. For tool-originated messages Content is a
// short summary string; the rich artifact rides on Display.
type Message struct {
	Role    Role            `json:"role"`
	Content string          `json:"content"`
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Display *DisplayPayload `json:"display,omitempty"`
}

func (m Message) Clone() Message {
	out := m
	if m.Display != nil {
		display := DisplayPayload{Name: m.Display.Name}
		if m.Display.Props != nil {
			display.Props = make(map[string]any, len(m.Display.Props))
			for k, v := range m.Display.Props {
				display.Props[k] = v
			}
		}
		out.Display = &display
	}
	return out
}

// equalMessage compares the committed identity of a transcript entry.
// Display payloads are opaque and IDs are assigned at projection time, so
// neither participates in the append-only prefix check.
func equalMessage(a, b Message) bool {
	return a.Role == b.Role && a.Content == b.Content && a.Name == b.Name
}
