package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rpoptimizer/config"
	"rpoptimizer/model"
)

// Watcher polls a chat store and emits MessageRendered for every new
// assistant message. It stands in for the host's render event when the
// chat is edited by another program.
type Watcher struct {
	chats    model.ChatStore
	bus      *Bus
	interval time.Duration
	lastSeen int
	log      zerolog.Logger
}

func NewWatcher(chats model.ChatStore, bus *Bus, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		chats:    chats,
		bus:      bus,
		interval: interval,
		lastSeen: -1,
		log:      config.Logger("watcher"),
	}
}

// Prime marks every existing message as seen so only later ones fire.
func (w *Watcher) Prime(ctx context.Context) error {
	id, err := w.chats.LatestMessageID(ctx)
	if err != nil {
		return fmt.Errorf("failed to read latest message id: %w", err)
	}
	w.lastSeen = id
	return nil
}

// Poll checks once for a new latest message and emits an event if it is an
// assistant message. It reports whether an event was emitted.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	id, err := w.chats.LatestMessageID(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read latest message id: %w", err)
	}
	if id <= w.lastSeen {
		// Chat was truncated; start over from the new end
		if id < w.lastSeen {
			w.lastSeen = id
		}
		return false, nil
	}
	w.lastSeen = id

	msgs, err := w.chats.Messages(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to read message %d: %w", id, err)
	}
	if len(msgs) == 0 || !msgs[0].IsAssistant() {
		return false, nil
	}

	w.log.Debug().Int("message_id", id).Msg("message rendered")
	w.bus.Emit(ctx, MessageRendered{ID: id})
	return true, nil
}

// Run polls until ctx is cancelled. Poll errors are logged and retried.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.log.Warn().Err(err).Msg("poll failed")
			}
		}
	}
}
