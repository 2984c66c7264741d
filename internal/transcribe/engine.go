package transcribe

import (
	"fmt"

	"go.uber.org/zap"

	"media-scribe/internal/domain"
)

// New builds the transcriber selected by settings.Engine.
func New(settings domain.Settings, apiKey string, logger *zap.Logger) (Transcriber, error) {
	switch settings.Engine {
	case "", domain.EngineWhisperCPP:
		return NewPipeline(PipelineConfig{
			ModelPath: settings.ModelPath,
			Language:  settings.Language,
		}, logger), nil
	case domain.EngineOpenAI:
		return NewOpenAITranscriber(OpenAIConfig{
			APIKey:   apiKey,
			Model:    settings.OpenAIModel,
			Language: settings.Language,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown transcription engine: %s", settings.Engine)
	}
}
