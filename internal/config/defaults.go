package config

import (
	"os"
	"path/filepath"

	"media-scribe/internal/domain"
)

// AppDirName is the per-user directory holding settings and models.
const AppDirName = ".media-scribe"

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		Engine:     domain.EngineWhisperCPP,
		ModelPath:  filepath.Join(homeDir, AppDirName, "models"),
		Language:   "auto",
		ScratchDir: filepath.Join(os.TempDir(), "media-scribe"),
	}
}

// Normalize trims user input and fills empty fields from defaults.
func Normalize(settings domain.Settings) domain.Settings {
	defaults := DefaultSettings()
	settings.Engine = trimOr(settings.Engine, defaults.Engine)
	settings.ModelPath = trimOr(settings.ModelPath, "")
	settings.Language = trimOr(settings.Language, defaults.Language)
	settings.ScratchDir = trimOr(settings.ScratchDir, defaults.ScratchDir)
	settings.OpenAIModel = trimOr(settings.OpenAIModel, "")
	return settings
}
