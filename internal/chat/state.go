package chat

// State is the authoritative transcript of one chat session. ChatID is
// assigned once at session creation and never changes. Messages are
// append-only; Interactions is an opaque audit trail advanced on commit.
type State struct {
	ChatID       string    `json:"chat_id"`
	Interactions []string  `json:"interactions,omitempty"`
	Messages     []Message `json:"messages"`
}

// NewState returns the seed state for a fresh session.
func NewState(chatID string) State {
	return State{ChatID: chatID}
}

func (s State) Clone() State {
	out := State{ChatID: s.ChatID}
	if s.Interactions != nil {
		out.Interactions = append([]string(nil), s.Interactions...)
	}
	if s.Messages != nil {
		out.Messages = make([]Message, 0, len(s.Messages))
		for _, m := range s.Messages {
			out.Messages = append(out.Messages, m.Clone())
		}
	}
	return out
}

// Append returns a copy of the state with msgs added at the end.
func (s State) Append(msgs ...Message) State {
	next := s.Clone()
	next.Messages = append(next.Messages, msgs...)
	return next
}

// extendsPrefix reports whether next preserves prior as an unmodified prefix.
func extendsPrefix(prior, next []Message) bool {
	if len(next) < len(prior) {
		return false
	}
	for i := range prior {
		if !equalMessage(prior[i], next[i]) {
			return false
		}
	}
	return true
}
