package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rpoptimizer/config"
)

func runSettings(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rpoptimizer settings show|set|export|import")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store := config.NewFileSettingsStore(cfg.DataDir())
	ctx := context.Background()

	format, err := flagValue(args, "--format", "")
	if err != nil {
		return err
	}

	switch args[0] {
	case "show":
		s, err := store.Settings(ctx)
		if err != nil {
			return err
		}
		return config.ExportSettings(os.Stdout, s, format)

	case "set":
		patch, err := parseSettingsPatch(args[1:])
		if err != nil {
			return err
		}
		if err := store.SaveSettings(ctx, patch); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", store.Path())

	case "export":
		if len(args) < 2 {
			return fmt.Errorf("usage: rpoptimizer settings export <file> [--format toml|json|yaml]")
		}
		path := args[1]
		if format == "" {
			format = formatFromExt(path)
		}
		s, err := store.Settings(ctx)
		if err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		if err := config.ExportSettings(f, s, format); err != nil {
			return fmt.Errorf("failed to export settings: %w", err)
		}
		fmt.Printf("exported to %s\n", path)

	case "import":
		if len(args) < 2 {
			return fmt.Errorf("usage: rpoptimizer settings import <file> [--format toml|json|yaml]")
		}
		path := args[1]
		if format == "" {
			format = formatFromExt(path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		s, err := config.ImportSettings(f, format)
		if err != nil {
			return err
		}
		if err := store.SaveSettings(ctx, config.PatchFrom(s)); err != nil {
			return err
		}
		fmt.Printf("imported %s\n", path)

	default:
		return fmt.Errorf("unknown settings command: %s", args[0])
	}
	return nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// parseSettingsPatch turns key=value pairs into a patch. Prompt fragments
// are addressed as prompts.main, prompts.system and prompts.final_system.
func parseSettingsPatch(pairs []string) (config.SettingsPatch, error) {
	var p config.SettingsPatch
	var prompts *config.PromptSettings

	for _, pair := range pairs {
		if strings.HasPrefix(pair, "--") {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return p, fmt.Errorf("expected key=value, got %q", pair)
		}

		var err error
		switch key {
		case "auto_optimize":
			p.AutoOptimize, err = parseBool(value)
		case "disable_notifications":
			p.DisableNotifications, err = parseBool(value)
		case "disabled_words":
			p.DisabledWords = &value
		case "regex_filters":
			v := strings.ReplaceAll(value, `\n`, "\n")
			p.RegexFilters = &v
		case "regex_timeout_ms":
			p.RegexTimeoutMS, err = parseInt(value)
		case "temperature":
			p.Temperature, err = parseFloat(value)
		case "max_tokens":
			p.MaxTokens, err = parseInt(value)
		case "top_p":
			p.TopP, err = parseFloat(value)
		case "top_k":
			p.TopK, err = parseInt(value)
		case "prompts.main", "prompts.system", "prompts.final_system":
			if prompts == nil {
				current, lerr := currentPrompts()
				if lerr != nil {
					return p, lerr
				}
				prompts = &current
			}
			switch key {
			case "prompts.main":
				prompts.Main = value
			case "prompts.system":
				prompts.System = value
			default:
				prompts.FinalSystem = value
			}
			p.Prompts = prompts
		default:
			return p, fmt.Errorf("unknown setting: %s", key)
		}
		if err != nil {
			return p, fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return p, nil
}

// currentPrompts is swapped in tests.
var currentPrompts = func() (config.PromptSettings, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.PromptSettings{}, err
	}
	s, err := config.NewFileSettingsStore(cfg.DataDir()).Settings(context.Background())
	return s.Prompts, err
}

func parseBool(s string) (*bool, error) {
	v, err := strconv.ParseBool(s)
	return &v, err
}

func parseInt(s string) (*int, error) {
	v, err := strconv.Atoi(s)
	return &v, err
}

func parseFloat(s string) (*float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	return &v, err
}
