package contract

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

type CompletionRequest struct {
	Model    string    `json:"model"`
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
	Tools    []ToolDef `json:"tools,omitempty"`
}

type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// FragmentFunc receives streamed text deltas as they arrive. It is only
// invoked on the text path; a tool-calling response produces no fragments.
type FragmentFunc func(fragment string)

// CompletionResponse is the model's per-turn decision: either final text
// (Content) or a single tool invocation (ToolCall). The backend picks once
// per turn and never switches mid-turn.
type CompletionResponse struct {
	Content  string    `json:"content"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

type ToolCall struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Args string `json:"args"`
}
