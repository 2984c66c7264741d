package bootstrap

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"media-scribe/internal/config"
	"media-scribe/internal/controller"
	"media-scribe/internal/domain"
	"media-scribe/internal/jobs"
	"media-scribe/internal/logging"
	"media-scribe/internal/media"
	"media-scribe/internal/transcribe"
)

// EnvDebug switches logging to development mode when set.
const EnvDebug = "MEDIA_SCRIBE_DEBUG"

// Environment bundles what every entry point loads before building a controller.
type Environment struct {
	Settings domain.Settings
	Store    config.Store
	Logger   *zap.Logger
}

// LoadEnvironment reads .env, persisted settings and environment overrides.
func LoadEnvironment() (*Environment, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Getenv(EnvDebug) != "")
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store := config.NewJSONStore(config.DefaultStorePath(homeDir))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return &Environment{
		Settings: config.ApplyEnv(settings),
		Store:    store,
		Logger:   logger,
	}, nil
}

// NewTranscriber builds the engine for settings. A misconfigured engine
// still yields a transcriber so the screen stays usable; every attempt then
// fails with the configuration error.
func NewTranscriber(settings domain.Settings, logger *zap.Logger) transcribe.Transcriber {
	t, err := transcribe.New(settings, config.OpenAIKey(), logger.Named("transcribe"))
	if err != nil {
		logger.Warn("transcription engine unavailable", zap.String("engine", settings.Engine), zap.Error(err))
		return transcribe.TranscriberFunc(func(ctx context.Context, location string) (string, error) {
			return "", err
		})
	}
	return t
}

// NewController wires chooser, scratch store and engine into a controller.
func NewController(settings domain.Settings, picker media.Picker, logger *zap.Logger, onChange func(domain.AppState)) *controller.Controller {
	selector := media.NewSelector(picker, media.NewScratch(settings.ScratchDir), logger.Named("media"))
	return controller.New(controller.Options{
		Selector:    selector,
		Transcriber: NewTranscriber(settings, logger),
		Events:      jobs.NewEventBus(1000),
		Logger:      logger.Named("controller"),
		OnChange:    onChange,
	})
}
