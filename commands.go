package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"

	"rpoptimizer/api"
	"rpoptimizer/config"
	"rpoptimizer/events"
	"rpoptimizer/mcp"
	"rpoptimizer/storage"
	"rpoptimizer/ui"
)

func runPanel(args []string) error {
	a, err := newApp(outputQuiet)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(ui.NewPanel(a.opt, a.gen, a.rec), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runCheck(args []string) error {
	a, err := newApp(outputTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	text := strings.Join(args, " ")
	if text == "" {
		if text, err = a.opt.LatestText(ctx); err != nil {
			return err
		}
	}

	if a.opt.CheckMessage(ctx, text) {
		fmt.Println("match")
	} else {
		fmt.Println("no match")
	}
	return nil
}

func runExtract(args []string) error {
	a, err := newApp(outputTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	block, err := a.opt.Extract(context.Background())
	if err != nil {
		return err
	}
	if block != "" {
		fmt.Println(block)
	}
	return nil
}

func runAuto(args []string) error {
	a, err := newApp(outputTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.opt.RunFull(ctx); err != nil {
		return err
	}
	text, err := a.opt.LatestText(ctx)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// flagValue returns the value of --name (as "--name v" or "--name=v").
func flagValue(args []string, name, def string) (string, error) {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, nil
		}
		if arg == name {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", name)
			}
			return args[i+1], nil
		}
	}
	return def, nil
}

func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func startWatcher(ctx context.Context, a *app, interval time.Duration) (*events.Watcher, error) {
	w := events.NewWatcher(a.chat, a.bus, interval)
	if err := w.Prime(ctx); err != nil {
		return nil, fmt.Errorf("failed to read chat: %w", err)
	}
	return w, nil
}

func runWatch(args []string) error {
	raw, err := flagValue(args, "--interval", "2s")
	if err != nil {
		return err
	}
	interval, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}

	a, err := newApp(outputTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	w, err := startWatcher(ctx, a, interval)
	if err != nil {
		return err
	}
	a.opt.Attach(ctx, a.bus)

	fmt.Fprintf(os.Stderr, "Watching chat every %s, Ctrl+C to stop\n", interval)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(args []string) error {
	addr, err := flagValue(args, "--addr", ":8787")
	if err != nil {
		return err
	}

	// before newApp so every component logger picks it up
	config.SetLogOutput(config.ConsoleWriter(os.Stdout), zerolog.InfoLevel)

	a, err := newApp(outputQuiet)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := config.Logger("api")

	ctx, stop := signalContext()
	defer stop()

	a.opt.Attach(ctx, a.bus)

	if hasFlag(args, "--watch") {
		w, err := startWatcher(ctx, a, 2*time.Second)
		if err != nil {
			return err
		}
		go w.Run(ctx)
	}

	h := api.NewHandler(a.opt, a.chat, a.settings, a.bus, a.rec, a.gen)
	srv := api.NewServer(addr, logger, h)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func runMCP(args []string) error {
	a, err := newApp(outputQuiet)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcp.ServeStdio(mcp.ServerConfig{
		Optimizer: a.opt,
		Recorder:  a.rec,
		Version:   Version,
	})
}

func runModels(args []string) error {
	a, err := newApp(outputTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	models, err := a.opt.ListModels(context.Background())
	if err != nil {
		return err
	}

	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	for _, name := range filterModels(names, strings.Join(args, " ")) {
		fmt.Println(name)
	}
	return nil
}

// filterModels fuzzy-matches query against names, best match first.
// An empty query keeps every name in order.
func filterModels(names []string, query string) []string {
	if query == "" {
		return names
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

func runPing(args []string) error {
	a, err := newApp(outputTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.opt.TestConnection(context.Background()) {
		return fmt.Errorf("backend %s unreachable", a.gen.ID())
	}
	return nil
}

type chatImportEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func runChat(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rpoptimizer chat add|show|import")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	chat, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer chat.Close()

	ctx := context.Background()
	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: rpoptimizer chat add <role> <text>")
		}
		id, err := chat.Append(ctx, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("added message %d\n", id)
	case "show":
		msgs, err := chat.All(ctx)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			fmt.Printf("[%d] %s: %s\n", m.ID, m.Role, m.Text)
		}
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("usage: rpoptimizer chat import <file.json>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}
		var entries []chatImportEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[1], err)
		}
		for _, e := range entries {
			if _, err := chat.Append(ctx, e.Role, e.Content); err != nil {
				return err
			}
		}
		fmt.Printf("imported %d messages\n", len(entries))
	default:
		return fmt.Errorf("unknown chat command: %s", args[0])
	}
	return nil
}
