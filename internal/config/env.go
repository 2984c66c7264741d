package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"media-scribe/internal/domain"
)

// Environment variables read at startup.
const (
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvScratchDir = "MEDIA_SCRIBE_SCRATCH_DIR"
	EnvEngine     = "MEDIA_SCRIBE_ENGINE"
)

// LoadEnv loads the first existing .env file among paths. Variables already
// set in the process win over file values.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", ".env.local"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		return nil
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func ApplyEnv(settings domain.Settings) domain.Settings {
	if v := strings.TrimSpace(os.Getenv(EnvScratchDir)); v != "" {
		settings.ScratchDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEngine)); v != "" {
		settings.Engine = v
	}
	return settings
}

// OpenAIKey returns the configured API key, if any.
func OpenAIKey() string {
	return strings.TrimSpace(os.Getenv(EnvOpenAIKey))
}

func trimOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
