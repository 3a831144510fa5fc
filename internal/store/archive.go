// Package store persists committed conversations to disk. It is the
// persistence collaborator behind the state store's commit: its failures
// are logged by the caller and never roll back an in-memory commit.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/osanhueza/fleetdesk/internal/chat"
)

const titleMaxLen = 100

// Chat is the durable form of one committed conversation.
type Chat struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	UserID       string         `json:"user_id"`
	CreatedAt    time.Time      `json:"created_at"`
	Path         string         `json:"path"`
	Interactions []string       `json:"interactions,omitempty"`
	Messages     []chat.Message `json:"messages"`
}

type ArchiveConfig struct {
	LockTimeout  time.Duration
	LockRetry    time.Duration
	LockMaxRetry int
}

func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		LockTimeout:  30 * time.Second,
		LockRetry:    100 * time.Millisecond,
		LockMaxRetry: 300,
	}
}

// Archive writes one JSON file per chat under basePath, guarded by a file
// lock so concurrent processes do not interleave writes.
type Archive struct {
	basePath string
	userID   string
	lock     *flock.Flock
	cfg      ArchiveConfig
}

func NewArchive(basePath, userID string, cfg ArchiveConfig) (*Archive, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("archive base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultArchiveConfig().LockTimeout
	}
	if cfg.LockRetry <= 0 {
		cfg.LockRetry = DefaultArchiveConfig().LockRetry
	}
	if cfg.LockMaxRetry <= 0 {
		cfg.LockMaxRetry = DefaultArchiveConfig().LockMaxRetry
	}

	return &Archive{
		basePath: basePath,
		userID:   userID,
		lock:     flock.New(filepath.Join(basePath, "archive.lock")),
		cfg:      cfg,
	}, nil
}

// SaveChat persists a committed state. Implements chat.Persister. The
// creation timestamp of an existing chat file survives rewrites.
func (a *Archive) SaveChat(ctx context.Context, state chat.State) error {
	if len(state.Messages) == 0 {
		return nil
	}

	if err := a.acquireLock(ctx); err != nil {
		return err
	}
	defer a.lock.Unlock()

	record := Chat{
		ID:           state.ChatID,
		Title:        chatTitle(state),
		UserID:       a.userID,
		CreatedAt:    time.Now().UTC(),
		Path:         "/chat/" + state.ChatID,
		Interactions: state.Interactions,
		Messages:     state.Messages,
	}

	if existing, err := a.readChat(state.ChatID); err == nil && existing != nil {
		record.CreatedAt = existing.CreatedAt
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}

	if err := atomic.WriteFile(a.chatPath(state.ChatID), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write chat file: %w", err)
	}

	return nil
}

// acquireLock polls the archive file lock every LockRetry, giving up after
// LockMaxRetry attempts or once LockTimeout elapses, whichever comes first.
func (a *Archive) acquireLock(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, a.cfg.LockTimeout)
	defer cancel()

	for attempt := 0; attempt < a.cfg.LockMaxRetry; attempt++ {
		locked, err := a.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire archive lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-lockCtx.Done():
			return fmt.Errorf("acquire archive lock: %w", lockCtx.Err())
		case <-time.After(a.cfg.LockRetry):
		}
	}

	return fmt.Errorf("archive lock busy after %d attempts", a.cfg.LockMaxRetry)
}

// LoadChat reads one archived chat, nil when it does not exist.
func (a *Archive) LoadChat(chatID string) (*Chat, error) {
	return a.readChat(chatID)
}

// ListChats returns archived chats, newest first.
func (a *Archive) ListChats() ([]Chat, error) {
	entries, err := os.ReadDir(a.basePath)
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	var chats []Chat
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := a.readChat(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil || record == nil {
			continue
		}
		chats = append(chats, *record)
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})

	return chats, nil
}

func (a *Archive) readChat(chatID string) (*Chat, error) {
	data, err := os.ReadFile(a.chatPath(chatID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var record Chat
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode chat file: %w", err)
	}
	return &record, nil
}

func (a *Archive) chatPath(chatID string) string {
	return filepath.Join(a.basePath, chatID+".json")
}

func chatTitle(state chat.State) string {
	title := strings.TrimSpace(state.Messages[0].Content)
	if len(title) > titleMaxLen {
		title = title[:titleMaxLen]
	}
	return title
}
