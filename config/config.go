package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DefaultModel is the model used when no per-operation or default model is set.
const DefaultModel = "gpt-3.5-turbo"

// ModelSettings holds the per-operation model names.
type ModelSettings struct {
	Default       string `yaml:"default,omitempty"`       // Fallback for every operation
	Continuation  string `yaml:"continuation,omitempty"`  // Text continuation
	Proofread     string `yaml:"proofread,omitempty"`     // Proofreading
	Polish        string `yaml:"polish,omitempty"`        // Polishing
	Summarization string `yaml:"summarization,omitempty"` // Summaries of selections and whole documents
	QA            string `yaml:"qa,omitempty"`            // Document question answering
	Chat          string `yaml:"chat,omitempty"`          // Free-form chat
}

// OptionSettings holds generation options. Zero values mean "use the
// operation default".
type OptionSettings struct {
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

// Settings is the raw user configuration as persisted by the host.
type Settings struct {
	APIURL  string         `yaml:"api_url,omitempty"`
	APIKey  string         `yaml:"api_key,omitempty"`
	Models  ModelSettings  `yaml:"models,omitempty"`
	Options OptionSettings `yaml:"options,omitempty"`
	Timeout int            `yaml:"timeout,omitempty"` // Per-request timeout override in seconds
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		Models: ModelSettings{
			Default: DefaultModel,
		},
	}
}

// GetSettingsPath returns the default settings file path.
// Can be overridden via WPSAI_CONFIG_PATH environment variable.
func GetSettingsPath() string {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.wpsai/settings.yaml"
	}
	return filepath.Join(homeDir, ".wpsai", "settings.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// LoadSettings loads settings from path, layered as defaults, then the file
// (if it exists), then WPSAI_* environment variables.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		data, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %q: %w", expandedPath, err)
		}

		var fileSettings Settings
		if err := yaml.Unmarshal(data, &fileSettings); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %q: %w", expandedPath, err)
		}

		if err := mergo.Merge(&settings, fileSettings, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge settings file: %w", err)
		}
	}

	envSettings, err := settingsFromEnv()
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&settings, envSettings, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge environment settings: %w", err)
	}

	return &settings, nil
}

// SaveSettings writes settings to path as YAML.
func SaveSettings(settings *Settings, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// The file holds the API key.
	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// MergeSettings returns base with every non-zero field of partial applied on
// top, recursing into the nested models and options.
func MergeSettings(base, partial Settings) (Settings, error) {
	merged := base
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		return base, fmt.Errorf("failed to merge settings: %w", err)
	}
	return merged, nil
}
