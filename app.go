package main

import (
	"fmt"
	"os"

	"rpoptimizer/config"
	"rpoptimizer/events"
	"rpoptimizer/model"
	"rpoptimizer/notify"
	"rpoptimizer/optimizer"
	"rpoptimizer/provider"
	"rpoptimizer/storage"
)

// app holds the wired collaborators every command starts from.
type app struct {
	cfg      *config.Config
	chat     storage.Chat
	settings *config.FileSettingsStore
	gen      *provider.Generator
	rec      *notify.Recorder
	bus      *events.Bus
	opt      *optimizer.Optimizer
}

type output int

const (
	// notifications printed to stderr
	outputTerminal output = iota
	// notifications only recorded and logged; stdout belongs to a protocol
	outputQuiet
)

func newApp(out output) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.InitDebugLog(cfg.DataDir())

	chat, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat: %w", err)
	}

	gen, err := provider.InitializeGenerator(cfg)
	if err != nil {
		chat.Close()
		return nil, err
	}

	rec := notify.NewRecorder()
	notifiers := notify.Multi{notify.NewLog(config.Logger("notify"))}
	if out == outputTerminal {
		notifiers = append(notifiers, notify.NewTerminal(os.Stderr, 100))
	} else {
		// panel, api and mcp read notifications back from rec
		notifiers = append(notifiers, rec)
	}

	settings := config.NewFileSettingsStore(cfg.DataDir())

	return &app{
		cfg:      cfg,
		chat:     chat,
		settings: settings,
		gen:      gen,
		rec:      rec,
		bus:      events.NewBus(),
		opt:      optimizer.New(chat, gen, settings, model.Notifier(notifiers)),
	}, nil
}

func (a *app) Close() error {
	return a.chat.Close()
}
