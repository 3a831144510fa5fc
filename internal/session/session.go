// Package session supplies the opaque user context tool handlers attach to
// their rendered output. The core consumes it, never interprets it.
package session

import "context"

type Session struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

type Provider interface {
	GetSession(ctx context.Context) (*Session, error)
}

// StaticProvider hands out a fixed session, used by the CLI surface where
// identity comes from configuration rather than a login flow.
type StaticProvider struct {
	session Session
}

func NewStaticProvider(email, fullName string) *StaticProvider {
	return &StaticProvider{session: Session{Email: email, FullName: fullName}}
}

func (p *StaticProvider) GetSession(ctx context.Context) (*Session, error) {
	s := p.session
	return &s, nil
}
