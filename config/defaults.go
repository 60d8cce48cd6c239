package config

import "strings"

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/rpoptimizer",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderConfig{
			ID:    "ollama",
			Model: "llama3.1:latest",
		},
		Chat: ChatConfig{
			Backend: "json",
		},
		Security: SecurityConfig{
			Method: SecurityPlainText,
		},
	}
}

// DefaultRegexFilters strips status placeholders, HTML comments, format
// wrappers, reasoning blocks and variable updates.
var DefaultRegexFilters = strings.Join([]string{
	`<StatusPlaceHolderImpl\/>`,
	`\s*<!--[\s\S]*?-->\s*`,
	"(<disclaimer>.*?<\\/disclaimer>)|(<guifan>.*?<\\/guifan>)|```start|<content>|<\\/content>|```end|<done>|`<done>`|(<!--\\s*consider\\s*:\\s*(.*?)\\s*-->)|(.*?<\\/think(ing)?>(\\n)?)|(<think(ing)?>[\\s\\S]*?<\\/think(ing)?>(\\n)?)",
	`/<UpdateVariable>[\s\S]*?<\/UpdateVariable>/gm`,
}, "\n")

const (
	DefaultPromptMain        = "你是一个专业的剧情优化助手。"
	DefaultPromptSystem      = "请根据用户的要求，优化提供的句子，使其更生动、更具描述性。"
	DefaultPromptFinalSystem = "只返回优化后的句子，不要包含任何额外的解释或标签。"
)

// SettingsVersion is bumped whenever a field changes meaning.
const SettingsVersion = 1

// DefaultSettings returns the documented default for every field.
func DefaultSettings() Settings {
	return Settings{
		Version:              SettingsVersion,
		AutoOptimize:         false,
		DisabledWords:        "",
		RegexFilters:         DefaultRegexFilters,
		RegexTimeoutMS:       250,
		DisableNotifications: false,
		Temperature:          0.7,
		MaxTokens:            2000,
		TopP:                 1,
		TopK:                 0,
		Prompts: PromptSettings{
			Main:        DefaultPromptMain,
			System:      DefaultPromptSystem,
			FinalSystem: DefaultPromptFinalSystem,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# rpoptimizer System Configuration
# Location: ~/.config/rpoptimizer/settings.toml
# This file uses TOML format: https://toml.io

# Directory where chats, settings and credentials are stored
data_directory = "~/.local/share/rpoptimizer"
`
}

func GenerateUserConfigTemplate() string {
	return `# rpoptimizer User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# One of: ollama, openai, openrouter, anthropic
id = "ollama"
# Leave empty for the provider default
base_url = ""
model = "llama3.1:latest"

[chat]
# "json" keeps one file per chat session, "sqlite" uses chats.db
backend = "json"
# Session to work on; empty means the current session
session = ""

[security]
# "plaintext" stores API keys in credentials.toml,
# "ssh_key" encrypts them with a key derived from an SSH private key
method = "plaintext"
ssh_key_path = ""
`
}
