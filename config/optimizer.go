package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// PromptSettings holds the prompt fragments of the rewrite request.
type PromptSettings struct {
	Main        string `toml:"main" json:"main" yaml:"main"`
	System      string `toml:"system" json:"system" yaml:"system"`
	FinalSystem string `toml:"final_system" json:"final_system" yaml:"final_system"`
}

// Settings is the flat, versioned optimizer configuration.
type Settings struct {
	Version              int            `toml:"version" json:"version" yaml:"version"`
	AutoOptimize         bool           `toml:"auto_optimize" json:"auto_optimize" yaml:"auto_optimize"`
	DisabledWords        string         `toml:"disabled_words" json:"disabled_words" yaml:"disabled_words"`
	RegexFilters         string         `toml:"regex_filters" json:"regex_filters" yaml:"regex_filters"`
	RegexTimeoutMS       int            `toml:"regex_timeout_ms" json:"regex_timeout_ms" yaml:"regex_timeout_ms"`
	DisableNotifications bool           `toml:"disable_notifications" json:"disable_notifications" yaml:"disable_notifications"`
	Temperature          float64        `toml:"temperature" json:"temperature" yaml:"temperature"`
	MaxTokens            int            `toml:"max_tokens" json:"max_tokens" yaml:"max_tokens"`
	TopP                 float64        `toml:"top_p" json:"top_p" yaml:"top_p"`
	TopK                 int            `toml:"top_k,omitempty" json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Prompts              PromptSettings `toml:"prompts" json:"prompts" yaml:"prompts"`
}

// SettingsPatch is a partial update. Nil fields are left untouched.
type SettingsPatch struct {
	AutoOptimize         *bool           `json:"auto_optimize,omitempty"`
	DisabledWords        *string         `json:"disabled_words,omitempty"`
	RegexFilters         *string         `json:"regex_filters,omitempty"`
	RegexTimeoutMS       *int            `json:"regex_timeout_ms,omitempty"`
	DisableNotifications *bool           `json:"disable_notifications,omitempty"`
	Temperature          *float64        `json:"temperature,omitempty"`
	MaxTokens            *int            `json:"max_tokens,omitempty"`
	TopP                 *float64        `json:"top_p,omitempty"`
	TopK                 *int            `json:"top_k,omitempty"`
	Prompts              *PromptSettings `json:"prompts,omitempty"`
}

// Apply merges p over s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.AutoOptimize != nil {
		s.AutoOptimize = *p.AutoOptimize
	}
	if p.DisabledWords != nil {
		s.DisabledWords = *p.DisabledWords
	}
	if p.RegexFilters != nil {
		s.RegexFilters = *p.RegexFilters
	}
	if p.RegexTimeoutMS != nil {
		s.RegexTimeoutMS = *p.RegexTimeoutMS
	}
	if p.DisableNotifications != nil {
		s.DisableNotifications = *p.DisableNotifications
	}
	if p.Temperature != nil {
		s.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		s.MaxTokens = *p.MaxTokens
	}
	if p.TopP != nil {
		s.TopP = *p.TopP
	}
	if p.TopK != nil {
		s.TopK = *p.TopK
	}
	if p.Prompts != nil {
		s.Prompts = *p.Prompts
	}
	return s
}

// Normalize replaces out-of-range values with their defaults and returns the
// names of the fields it had to fix.
func (s *Settings) Normalize() []string {
	def := DefaultSettings()
	var fixed []string

	if s.Version == 0 {
		s.Version = SettingsVersion
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		s.Temperature = def.Temperature
		fixed = append(fixed, "temperature")
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = def.MaxTokens
		fixed = append(fixed, "max_tokens")
	}
	if s.TopP < 0 || s.TopP > 1 {
		s.TopP = def.TopP
		fixed = append(fixed, "top_p")
	}
	if s.TopK < 0 {
		s.TopK = def.TopK
		fixed = append(fixed, "top_k")
	}
	if s.RegexTimeoutMS <= 0 || s.RegexTimeoutMS > 10000 {
		s.RegexTimeoutMS = def.RegexTimeoutMS
		fixed = append(fixed, "regex_timeout_ms")
	}
	return fixed
}

// FileSettingsStore persists Settings as <dataDir>/optimizer.toml.
type FileSettingsStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSettingsStore(dataDir string) *FileSettingsStore {
	return &FileSettingsStore{path: filepath.Join(dataDir, "optimizer.toml")}
}

// Path returns the backing file path.
func (s *FileSettingsStore) Path() string {
	return s.path
}

// Settings returns the stored settings with every missing or invalid field
// filled with its default. A missing file is not an error.
func (s *FileSettingsStore) Settings(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileSettingsStore) load() (Settings, error) {
	settings := DefaultSettings()
	if !FileExists(s.path) {
		return settings, nil
	}

	if _, err := toml.DecodeFile(s.path, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}

	if fixed := settings.Normalize(); len(fixed) > 0 {
		log := Logger("settings")
		log.Warn().Strs("fields", fixed).Msg("invalid settings replaced with defaults")
	}
	return settings, nil
}

// SaveSettings merges patch over the current snapshot and writes the whole object.
func (s *FileSettingsStore) SaveSettings(ctx context.Context, patch SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		// Corrupt file: start over from defaults rather than refusing every save
		log := Logger("settings")
		log.Warn().Err(err).Msg("rewriting unreadable settings file")
		current = DefaultSettings()
	}

	updated := patch.Apply(current)
	updated.Normalize()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(updated); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	return nil
}

// PatchFrom builds a patch that sets every field to the value in s.
func PatchFrom(s Settings) SettingsPatch {
	prompts := s.Prompts
	return SettingsPatch{
		AutoOptimize:         &s.AutoOptimize,
		DisabledWords:        &s.DisabledWords,
		RegexFilters:         &s.RegexFilters,
		RegexTimeoutMS:       &s.RegexTimeoutMS,
		DisableNotifications: &s.DisableNotifications,
		Temperature:          &s.Temperature,
		MaxTokens:            &s.MaxTokens,
		TopP:                 &s.TopP,
		TopK:                 &s.TopK,
		Prompts:              &prompts,
	}
}
