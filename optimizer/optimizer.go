package optimizer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"rpoptimizer/config"
	"rpoptimizer/events"
	"rpoptimizer/metrics"
	"rpoptimizer/model"
)

// ModelLister is implemented by generators that can enumerate models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]model.ModelInfo, error)
}

// Subscriber is the lifecycle trigger the optimizer attaches to.
type Subscriber interface {
	Subscribe(h events.Handler) func()
}

// Optimizer runs the extract, rewrite and replace flows against one chat.
// At most one mutating flow (Replace, RunFull) is in flight at a time.
type Optimizer struct {
	chats    model.ChatStore
	gen      model.Generator
	settings model.SettingsStore
	notifier model.Notifier

	busy     atomic.Bool
	attached sync.Once
	log      zerolog.Logger
}

func New(chats model.ChatStore, gen model.Generator, settings model.SettingsStore, notifier model.Notifier) *Optimizer {
	if notifier == nil {
		notifier = model.NotifierFunc(func(model.Level, string) {})
	}
	return &Optimizer{
		chats:    chats,
		gen:      gen,
		settings: settings,
		notifier: notifier,
		log:      config.Logger("optimizer"),
	}
}

// Attach subscribes the automatic trigger to bus. Only the first call has
// any effect.
func (o *Optimizer) Attach(ctx context.Context, bus Subscriber) {
	o.attached.Do(func() {
		bus.Subscribe(func(ctx context.Context, ev events.MessageRendered) {
			_ = o.HandleRendered(ctx, ev.ID)
		})
		o.notify(o.snapshot(ctx), model.LevelSuccess, "Text optimizer loaded")
	})
}

// Busy reports whether a mutating flow is running.
func (o *Optimizer) Busy() bool {
	return o.busy.Load()
}

func (o *Optimizer) snapshot(ctx context.Context) config.Settings {
	s, err := o.settings.Settings(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("using default settings")
	}
	return s
}

func (o *Optimizer) notify(s config.Settings, level model.Level, msg string) {
	if s.DisableNotifications && level != model.LevelError {
		return
	}
	o.notifier.Notify(level, msg)
}

// run executes fn behind the in-flight guard.
func (o *Optimizer) run(ctx context.Context, flow string, fn func(s config.Settings) error) error {
	if !o.busy.CompareAndSwap(false, true) {
		metrics.FlowsTotal.WithLabelValues(flow, "busy").Inc()
		o.log.Debug().Str("flow", flow).Msg("flow rejected, another one is running")
		o.notify(o.snapshot(ctx), model.LevelWarning, "An optimization is already running")
		return reported(ErrBusy)
	}
	defer o.busy.Store(false)

	return o.guard(ctx, flow, fn)
}

// guard is the outermost boundary of a flow: panics are recovered, failures
// are logged and shown once as an error notification.
func (o *Optimizer) guard(ctx context.Context, flow string, fn func(s config.Settings) error) (err error) {
	s := o.snapshot(ctx)

	defer func() {
		if r := recover(); r != nil {
			metrics.FlowsTotal.WithLabelValues(flow, "panic").Inc()
			o.log.Error().Str("flow", flow).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("flow panicked")
			o.notify(s, model.LevelError, "Optimization failed unexpectedly")
			err = reported(fmt.Errorf("%s: panic: %v", flow, r))
		}
	}()

	err = fn(s)
	switch {
	case err == nil:
		metrics.FlowsTotal.WithLabelValues(flow, "ok").Inc()
	case errors.Is(err, ErrBusy):
		metrics.FlowsTotal.WithLabelValues(flow, "busy").Inc()
	default:
		metrics.FlowsTotal.WithLabelValues(flow, "error").Inc()
		o.log.Error().Str("flow", flow).Err(err).Msg("flow failed")
		if !isReported(err) {
			o.notify(s, model.LevelError, err.Error())
			err = reported(err)
		}
	}
	return err
}

// CheckText cleans text with the rules in s and reports whether it contains
// a disabled word.
func CheckText(s config.Settings, text string) bool {
	m := NewMatcher(ParseWordList(s.DisabledWords))
	if m.Empty() {
		return false
	}
	return m.Match(CleanerFor(s).Clean(text))
}

// CheckMessage reports whether text contains a disabled word after cleaning.
func (o *Optimizer) CheckMessage(ctx context.Context, text string) bool {
	return CheckText(o.snapshot(ctx), text)
}

// SystemPrompt assembles the rewrite instruction from the current settings.
func (o *Optimizer) SystemPrompt(ctx context.Context) string {
	return BuildSystemPrompt(o.snapshot(ctx))
}

func (o *Optimizer) latest(ctx context.Context) (model.ChatMessage, bool, error) {
	id, err := o.chats.LatestMessageID(ctx)
	if err != nil {
		return model.ChatMessage{}, false, fmt.Errorf("failed to get latest message id: %w", err)
	}
	if id < 0 {
		return model.ChatMessage{}, false, nil
	}

	msgs, err := o.chats.Messages(ctx, id)
	if err != nil {
		return model.ChatMessage{}, false, fmt.Errorf("failed to get message %d: %w", id, err)
	}
	if len(msgs) == 0 {
		return model.ChatMessage{}, false, nil
	}
	return msgs[0], true, nil
}

// LatestText returns the text of the newest message, or "" for an empty chat.
func (o *Optimizer) LatestText(ctx context.Context) (string, error) {
	msg, ok, err := o.latest(ctx)
	if err != nil || !ok {
		return "", err
	}
	return msg.Text, nil
}

// Extract returns the numbered block of sentences in the latest message
// that contain a disabled word. An empty chat, an empty word list and zero
// matches all yield "" with a notification.
func (o *Optimizer) Extract(ctx context.Context) (string, error) {
	var block string
	err := o.guard(ctx, "extract", func(s config.Settings) error {
		var err error
		block, err = o.extract(ctx, s)
		return err
	})
	return block, err
}

func (o *Optimizer) extract(ctx context.Context, s config.Settings) (string, error) {
	msg, ok, err := o.latest(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		o.notify(s, model.LevelError, "Chat is empty, nothing to optimize")
		return "", nil
	}

	m := NewMatcher(ParseWordList(s.DisabledWords))
	if m.Empty() {
		o.notify(s, model.LevelWarning, "No disabled words configured, nothing to extract")
		return "", nil
	}

	sentences := Extract(CleanerFor(s).Clean(msg.Text), m)
	if len(sentences) == 0 {
		o.notify(s, model.LevelInfo, "No sentences with disabled words in the latest message")
		return "", nil
	}

	metrics.SentencesExtracted.Add(float64(len(sentences)))
	o.log.Debug().Int("message_id", msg.ID).Int("sentences", len(sentences)).Msg("extracted sentences")
	o.notify(s, model.LevelSuccess, "Extracted sentences to optimize")
	return FormatNumbered(sentences), nil
}

// RewriteText sends numbered to the model with systemPrompt and returns the
// raw response. Any failure yields "" and an error notification.
func (o *Optimizer) RewriteText(ctx context.Context, numbered, systemPrompt string) string {
	return o.rewrite(ctx, o.snapshot(ctx), numbered, systemPrompt)
}

func (o *Optimizer) rewrite(ctx context.Context, s config.Settings, numbered, systemPrompt string) (out string) {
	o.notify(s, model.LevelInfo, "Sending sentences to the model...")

	defer func() {
		if r := recover(); r != nil {
			metrics.RewritesTotal.WithLabelValues("error").Inc()
			o.log.Error().Interface("panic", r).Msg("generator panicked")
			o.notify(s, model.LevelError, "Rewrite failed, see the debug log")
			out = ""
		}
	}()

	out, err := o.gen.Generate(ctx, RewriteRequest(numbered, systemPrompt, s))
	if err != nil {
		metrics.RewritesTotal.WithLabelValues("error").Inc()
		o.log.Error().Err(err).Msg("rewrite request failed")
		o.notify(s, model.LevelError, "Rewrite failed, see the debug log")
		return ""
	}

	if out == "" {
		metrics.RewritesTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.RewritesTotal.WithLabelValues("ok").Inc()
	}
	o.notify(s, model.LevelSuccess, "Rewrite finished")
	return out
}

// Replace splices rewritten into the latest message in place of the
// sentences listed in original, shows the result through preview and
// saves it.
func (o *Optimizer) Replace(ctx context.Context, original, rewritten string, preview func(string)) error {
	return o.run(ctx, "replace", func(s config.Settings) error {
		return o.replace(ctx, s, original, rewritten, preview)
	})
}

func (o *Optimizer) replace(ctx context.Context, s config.Settings, original, rewritten string, preview func(string)) error {
	msg, ok, err := o.latest(ctx)
	if err != nil {
		return err
	}
	if !ok {
		o.notify(s, model.LevelError, "No message found to replace")
		return reported(ErrNoMessage)
	}

	if len(ParseNumbered(original)) != len(ParseRewritten(rewritten)) {
		o.notify(s, model.LevelWarning, "Sentence count does not match, replacing as one block")
	}

	res, err := Reconcile(msg.Text, original, rewritten)
	if err != nil {
		metrics.SplicesTotal.WithLabelValues(string(res.Mode), "anchor_missing").Inc()
		o.notify(s, model.LevelError, "Could not find where the original sentences start, nothing replaced")
		return reported(fmt.Errorf("failed to splice message %d: %w", msg.ID, err))
	}
	metrics.SplicesTotal.WithLabelValues(string(res.Mode), "ok").Inc()

	if len(res.Missing) > 0 {
		o.log.Warn().Int("message_id", msg.ID).Strs("missing", res.Missing).Msg("original sentences not found in message")
	}

	if preview != nil {
		preview(res.Text)
	}

	updated := msg
	updated.Text = res.Text
	if err := o.chats.SetMessages(ctx, []model.ChatMessage{updated}); err != nil {
		return fmt.Errorf("failed to save message %d: %w", msg.ID, err)
	}

	o.log.Info().Int("message_id", msg.ID).Str("mode", string(res.Mode)).Int("replaced", res.Replaced).Msg("message replaced")
	o.notify(s, model.LevelSuccess, "Message replaced")
	return nil
}

// RunFull extracts, rewrites and replaces in one go. Nothing to extract ends
// the flow without error.
func (o *Optimizer) RunFull(ctx context.Context) error {
	return o.run(ctx, "full", func(s config.Settings) error {
		o.notify(s, model.LevelInfo, "Automatic optimization started")

		block, err := o.extract(ctx, s)
		if err != nil {
			return err
		}
		if block == "" {
			return nil
		}

		rewritten := o.rewrite(ctx, s, block, BuildSystemPrompt(s))
		if rewritten == "" {
			return ErrEmptyRewrite
		}

		if err := o.replace(ctx, s, block, rewritten, nil); err != nil {
			return err
		}

		o.notify(s, model.LevelSuccess, "Automatic optimization finished")
		return nil
	})
}

// HandleRendered is the automatic trigger. It runs the full flow when
// auto-optimize is on, id is still the newest message and the message
// contains a disabled word. Events for superseded messages are dropped.
func (o *Optimizer) HandleRendered(ctx context.Context, id int) error {
	var run bool
	err := o.guard(ctx, "rendered", func(s config.Settings) error {
		if !s.AutoOptimize {
			return nil
		}

		latest, err := o.chats.LatestMessageID(ctx)
		if err != nil {
			return fmt.Errorf("failed to get latest message id: %w", err)
		}
		if id != latest {
			metrics.StaleEventsDropped.Inc()
			o.log.Debug().Int("event_id", id).Int("latest_id", latest).Msg("stale render event dropped")
			return nil
		}

		msgs, err := o.chats.Messages(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get message %d: %w", id, err)
		}
		if len(msgs) == 0 {
			return nil
		}

		run = CheckText(s, msgs[0].Text)
		return nil
	})
	if err != nil || !run {
		return err
	}
	return o.RunFull(ctx)
}

// TestConnection issues a minimal generation to check the backend.
func (o *Optimizer) TestConnection(ctx context.Context) bool {
	s := o.snapshot(ctx)
	_, err := o.gen.Generate(ctx, model.GenerateRequest{UserInput: "test", MaxChatHistory: 0})
	if err != nil {
		o.log.Warn().Err(err).Msg("connection test failed")
		o.notify(s, model.LevelError, "API connection failed")
		return false
	}
	o.notify(s, model.LevelSuccess, "API connection succeeded")
	return true
}

// ListModels returns the models offered by the backend.
func (o *Optimizer) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	lister, ok := o.gen.(ModelLister)
	if !ok {
		return nil, errors.New("backend does not support listing models")
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return models, nil
}
