package model

import (
	"context"

	"rpoptimizer/config"
)

// ChatStore is the host chat history.
type ChatStore interface {
	// Messages returns the messages matching id, most recent first.
	// An unknown id yields an empty slice, not an error.
	Messages(ctx context.Context, id int) ([]ChatMessage, error)

	// SetMessages replaces the text of each message by id. Either every
	// message is written or none is.
	SetMessages(ctx context.Context, msgs []ChatMessage) error

	// LatestMessageID returns the id of the newest message, or -1 for an empty chat.
	LatestMessageID(ctx context.Context) (int, error)
}

// SettingsStore owns the persisted optimizer settings.
type SettingsStore interface {
	// Settings returns a fully-defaulted snapshot.
	Settings(ctx context.Context) (config.Settings, error)

	// SaveSettings merges patch over the current snapshot and persists the result.
	SaveSettings(ctx context.Context, patch config.SettingsPatch) error
}

// Level is a notification severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows short user-facing messages.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }
