package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ExportSettings writes s to w as "toml", "json" or "yaml".
func ExportSettings(w io.Writer, s Settings, format string) error {
	switch format {
	case "", "toml":
		return toml.NewEncoder(w).Encode(s)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}

// ImportSettings reads a full or partial settings document in the given
// format and returns it merged over the defaults.
func ImportSettings(r io.Reader, format string) (Settings, error) {
	s := DefaultSettings()
	var err error
	switch format {
	case "", "toml":
		_, err = toml.NewDecoder(r).Decode(&s)
	case "json":
		err = json.NewDecoder(r).Decode(&s)
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&s)
	default:
		return s, fmt.Errorf("unknown import format: %s", format)
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Normalize()
	return s, nil
}
