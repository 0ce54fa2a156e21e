package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by LoadSettings.
const (
	EnvConfigPath = "WPSAI_CONFIG_PATH"
	EnvAPIURL     = "WPSAI_API_URL"
	EnvAPIKey     = "WPSAI_API_KEY"
	EnvModel      = "WPSAI_MODEL"
	EnvTimeout    = "WPSAI_TIMEOUT"
)

// settingsFromEnv builds the environment override layer. Unset variables
// leave the corresponding fields zero so they do not override anything.
func settingsFromEnv() (Settings, error) {
	s := Settings{
		APIURL: getAPIURLFromEnv(),
		APIKey: getAPIKeyFromEnv(),
		Models: ModelSettings{
			Default: getModelFromEnv(),
		},
	}

	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s %q: %w", EnvTimeout, raw, err)
		}
		s.Timeout = seconds
	}

	return s, nil
}

// getAPIURLFromEnv gets the API base URL from environment variable.
func getAPIURLFromEnv() string {
	return os.Getenv(EnvAPIURL)
}

// getAPIKeyFromEnv gets the API key from environment variable.
func getAPIKeyFromEnv() string {
	return os.Getenv(EnvAPIKey)
}

// getModelFromEnv gets the default model from environment variable.
func getModelFromEnv() string {
	return os.Getenv(EnvModel)
}
