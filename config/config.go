package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderConfig struct {
	ID      string `toml:"id"`
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model"`
}

type ChatConfig struct {
	// Backend is "json" (session files) or "sqlite".
	Backend string `toml:"backend"`
	// Session is the chat session the optimizer works on. Empty = current session.
	Session string `toml:"session,omitempty"`
}

type SecurityConfig struct {
	Method     SecurityMethod `toml:"method"`
	SSHKeyPath string         `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Provider ProviderConfig `toml:"provider"`
	Chat     ChatConfig     `toml:"chat"`
	Security SecurityConfig `toml:"security"`
}

type Config struct {
	DataDirectory   string
	Provider        ProviderConfig
	Chat            ChatConfig
	Security        SecurityConfig
	CredentialStore *CredentialStore
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// APIKey returns the stored credential for the configured provider.
// RPO_API_KEY takes precedence so keys can stay out of the data directory.
func (c *Config) APIKey() string {
	if key := os.Getenv("RPO_API_KEY"); key != "" {
		return key
	}
	if c.CredentialStore == nil {
		return ""
	}
	return c.CredentialStore.Get(c.Provider.ID)
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("RPO_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if p := os.Getenv("RPO_PROVIDER"); p != "" {
		c.Provider.ID = p
	}
	if m := os.Getenv("RPO_MODEL"); m != "" {
		c.Provider.Model = m
	}
	if u := os.Getenv("RPO_BASE_URL"); u != "" {
		c.Provider.BaseURL = u
	}
	if b := os.Getenv("RPO_CHAT_BACKEND"); b != "" {
		c.Chat.Backend = b
	}
}

func CheckDebug() bool {
	debug := os.Getenv("RPO_DEBUG")
	return debug == "true" || debug == "1"
}

// Load reads the system and user config files, applies environment
// overrides and loads credentials. Missing files are created from templates.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	def := DefaultUserConfig()
	cfg := &Config{
		DataDirectory: DefaultSystemConfig().DataDirectory,
		Provider:      def.Provider,
		Chat:          def.Chat,
		Security:      def.Security,
	}

	if os.Getenv("RPO_DATA_DIR") == "" {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	} else {
		cfg.DataDirectory = os.Getenv("RPO_DATA_DIR")
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.Provider = userCfg.Provider
	cfg.Chat = userCfg.Chat
	cfg.Security = userCfg.Security
	cfg.applyEnvOverrides()

	if cfg.Chat.Backend == "" {
		cfg.Chat.Backend = "json"
	}
	if cfg.Security.Method == "" {
		cfg.Security.Method = SecurityPlainText
	}

	store := NewCredentialStore(cfg.Security.Method, ExpandPath(cfg.Security.SSHKeyPath))
	if pass := os.Getenv("RPO_SSH_PASSPHRASE"); pass != "" {
		store.SetPassphrase(pass)
	}
	if err := store.Load(cfg.DataDir()); err != nil {
		// Credentials are optional for local providers
		Log.Warn().Err(err).Str("component", "config").Msg("credentials not loaded")
	} else {
		cfg.CredentialStore = store
	}

	return cfg, nil
}
