package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"rpoptimizer/model"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// LevelStyle returns the style used to render a level tag.
func LevelStyle(level model.Level) lipgloss.Style {
	switch level {
	case model.LevelSuccess:
		return successStyle
	case model.LevelWarning:
		return warningStyle
	case model.LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}

// Format renders "[level] message", truncated to width display cells.
// A width of 0 disables truncation.
func Format(level model.Level, message string, width int) string {
	tag := fmt.Sprintf("[%s]", level)
	if width > 0 {
		room := width - runewidth.StringWidth(tag) - 1
		if room < 1 {
			room = 1
		}
		message = runewidth.Truncate(message, room, "…")
	}
	return LevelStyle(level).Render(tag) + " " + message
}

// Terminal writes styled notifications, one per line.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	width int
}

func NewTerminal(out io.Writer, width int) *Terminal {
	return &Terminal{out: out, width: width}
}

func (t *Terminal) Notify(level model.Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, Format(level, message, t.width))
}

// Log forwards notifications to a zerolog logger. Used by headless commands.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(level model.Level, message string) {
	var ev *zerolog.Event
	switch level {
	case model.LevelError:
		ev = l.logger.Error()
	case model.LevelWarning:
		ev = l.logger.Warn()
	default:
		ev = l.logger.Info()
	}
	ev.Str("level_tag", string(level)).Msg(message)
}

// Multi fans a notification out to several notifiers.
type Multi []model.Notifier

func (m Multi) Notify(level model.Level, message string) {
	for _, n := range m {
		n.Notify(level, message)
	}
}

// Entry is one recorded notification.
type Entry struct {
	Level   model.Level
	Message string
}

func (e Entry) String() string {
	return string(e.Level) + ": " + e.Message
}

// DefaultRecorderLimit is how many undrained notifications a Recorder keeps.
const DefaultRecorderLimit = 256

// Recorder keeps the most recent notifications in memory. It backs the HTTP
// and MCP responses and is handy in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

func NewRecorder() *Recorder {
	return NewRecorderWithLimit(DefaultRecorderLimit)
}

// NewRecorderWithLimit returns a Recorder that drops its oldest entries once
// more than limit are held. limit <= 0 means DefaultRecorderLimit.
func NewRecorderWithLimit(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(level model.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
	if over := len(r.entries) - r.limit; over > 0 {
		r.entries = append(r.entries[:0], r.entries[over:]...)
	}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many notifications of level were recorded.
func (r *Recorder) Count(level model.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Drain returns the recorded entries and clears the recorder.
func (r *Recorder) Drain() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries
	r.entries = nil
	return out
}

func (r *Recorder) String() string {
	var b strings.Builder
	for _, e := range r.Entries() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
