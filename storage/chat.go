package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rpoptimizer/config"
	"rpoptimizer/model"
)

// ErrUnknownMessage is returned when a write targets a message id the chat does not have.
var ErrUnknownMessage = errors.New("unknown message id")

// Chat is a chat history the optimizer can read and rewrite, plus the
// operations the CLI and watcher need to feed it.
type Chat interface {
	model.ChatStore
	Append(ctx context.Context, role, text string) (int, error)
	All(ctx context.Context) ([]model.ChatMessage, error)
	Close() error
}

// Open returns the chat store selected by cfg.Chat.Backend.
func Open(cfg *config.Config) (Chat, error) {
	switch cfg.Chat.Backend {
	case "sqlite":
		chat, err := OpenSQLite(filepath.Join(cfg.DataDir(), "chat.db"))
		if err != nil {
			return nil, err
		}
		return chat, nil
	case "", "json":
		sessions, err := NewSessionStorage(cfg.DataDir())
		if err != nil {
			return nil, err
		}
		chat, err := OpenJSONChat(sessions, cfg.Chat.Session)
		if err != nil {
			return nil, err
		}
		return chat, nil
	default:
		return nil, fmt.Errorf("unknown chat backend: %s", cfg.Chat.Backend)
	}
}

// JSONChat exposes one session file as a model.ChatStore. Message ids are
// positions in the transcript.
type JSONChat struct {
	mu       sync.Mutex
	sessions *SessionStorage
	session  *Session
}

// OpenJSONChat loads session id, or the current session when id is empty.
// A new session is created when there is none.
func OpenJSONChat(sessions *SessionStorage, id string) (*JSONChat, error) {
	if id == "" {
		if current, err := sessions.LoadCurrentSessionID(); err == nil && current != "" && sessions.Exists(current) {
			id = current
		}
	}

	var session *Session
	if id != "" && sessions.Exists(id) {
		loaded, err := sessions.Load(id)
		if err != nil {
			return nil, err
		}
		session = loaded
	} else {
		session = &Session{ID: id, Name: "New Chat"}
		if err := sessions.Save(session); err != nil {
			return nil, err
		}
	}

	if err := sessions.SaveCurrentSessionID(session.ID); err != nil {
		return nil, fmt.Errorf("failed to save current session: %w", err)
	}

	return &JSONChat{sessions: sessions, session: session}, nil
}

// SessionID returns the id of the backing session.
func (c *JSONChat) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

func (c *JSONChat) Messages(ctx context.Context, id int) ([]model.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return nil, err
	}
	if id < 0 || id >= len(c.session.Messages) {
		return nil, nil
	}
	m := c.session.Messages[id]
	return []model.ChatMessage{{ID: id, Role: m.Role, Text: m.Content}}, nil
}

func (c *JSONChat) SetMessages(ctx context.Context, msgs []model.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return err
	}
	for _, m := range msgs {
		if m.ID < 0 || m.ID >= len(c.session.Messages) {
			return fmt.Errorf("failed to set message %d: %w", m.ID, ErrUnknownMessage)
		}
	}

	updated := make([]Message, len(c.session.Messages))
	copy(updated, c.session.Messages)
	for _, m := range msgs {
		updated[m.ID].Content = m.Text
	}

	next := *c.session
	next.Messages = updated
	if err := c.sessions.Save(&next); err != nil {
		return err
	}
	c.session = &next
	return nil
}

func (c *JSONChat) LatestMessageID(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return -1, err
	}
	return len(c.session.Messages) - 1, nil
}

// Append adds a message and returns its id.
func (c *JSONChat) Append(ctx context.Context, role, text string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return -1, err
	}

	next := *c.session
	next.Messages = append(append([]Message(nil), c.session.Messages...), Message{
		Role:      role,
		Content:   text,
		Timestamp: time.Now(),
	})
	if next.Name == "" || next.Name == "New Chat" {
		next.Name = GenerateSessionName(text)
	}
	if err := c.sessions.Save(&next); err != nil {
		return -1, err
	}
	c.session = &next
	return len(next.Messages) - 1, nil
}

// All returns every message in order.
func (c *JSONChat) All(ctx context.Context) ([]model.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return nil, err
	}
	out := make([]model.ChatMessage, len(c.session.Messages))
	for i, m := range c.session.Messages {
		out[i] = model.ChatMessage{ID: i, Role: m.Role, Text: m.Content}
	}
	return out, nil
}

func (c *JSONChat) Close() error { return nil }

// reloadLocked picks up edits made by another process (the host app or a
// second CLI invocation). A missing file keeps the in-memory copy.
func (c *JSONChat) reloadLocked() error {
	loaded, err := c.sessions.Load(c.session.ID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	c.session = loaded
	return nil
}
