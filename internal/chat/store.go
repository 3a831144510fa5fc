package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
)

// Persister receives a fully committed State for durable storage. Its
// success or failure is independent of the in-memory commit.
type Persister interface {
	SaveChat(ctx context.Context, state State) error
}

// Store holds the transcript for one chat session. It tracks two copies of
// the state: the last committed one and a provisional one visible to the
// turn currently in flight. The active turn is the only writer; projection
// reads the committed copy at any time.
type Store struct {
	mu          sync.RWMutex
	committed   State
	provisional State
	persister   Persister
}

func NewStore(seed State, persister Persister) *Store {
	return &Store{
		committed:   seed.Clone(),
		provisional: seed.Clone(),
		persister:   persister,
	}
}

// ChatID returns the immutable session identifier.
func (st *Store) ChatID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.committed.ChatID
}

// Get returns a snapshot of the provisional state. Callers must not assume
// the returned value shares memory with the store.
func (st *Store) Get() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.provisional.Clone()
}

// Committed returns a snapshot of the last committed state.
func (st *Store) Committed() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.committed.Clone()
}

// Update replaces the provisional state. The replacement must belong to the
// same session and must not rewrite any message already visible in the
// provisional transcript.
func (st *Store) Update(next State) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.validate(st.provisional, next); err != nil {
		return err
	}

	st.provisional = next.Clone()
	return nil
}

// Commit closes the turn: next becomes both the provisional and the
// committed state, the interaction trail advances, and the persister (if
// any) receives the result. A persistence failure is logged and surfaced as
// a warning only; the in-memory commit stands.
func (st *Store) Commit(ctx context.Context, next State) error {
	st.mu.Lock()

	if err := st.validate(st.committed, next); err != nil {
		st.mu.Unlock()
		return err
	}

	committed := next.Clone()
	committed.Interactions = append(committed.Interactions, ulid.Make().String())

	st.committed = committed
	st.provisional = committed.Clone()
	persister := st.persister
	snapshot := committed.Clone()
	st.mu.Unlock()

	if persister != nil {
		if err := persister.SaveChat(ctx, snapshot); err != nil {
			slog.Warn("Chat persistence failed, committed state retained in memory",
				"chat_id", snapshot.ChatID, "error", err)
		}
	}

	return nil
}

// Discard drops any provisional progress, restoring the last committed
// state. Used when a turn is cancelled before its commit.
func (st *Store) Discard() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.provisional = st.committed.Clone()
}

func (st *Store) validate(prior, next State) error {
	if next.ChatID != prior.ChatID {
		return fderrors.Wrap(fderrors.ErrChatIDMismatch, "state update for chat "+next.ChatID+" against "+prior.ChatID)
	}
	if !extendsPrefix(prior.Messages, next.Messages) {
		return fderrors.Wrap(fderrors.ErrNonMonotonicTranscript, "state update rewrites transcript history")
	}
	return nil
}
