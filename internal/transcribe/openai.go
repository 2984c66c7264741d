package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig selects the remote Whisper model and endpoint.
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// OpenAITranscriber transcribes through the OpenAI audio API.
type OpenAITranscriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// NewOpenAITranscriber creates a remote transcriber.
func NewOpenAITranscriber(cfg OpenAIConfig, logger *zap.Logger) (*OpenAITranscriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is required: set OPENAI_API_KEY")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAITranscriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: normalizeLanguage(cfg.Language),
		logger:   logger,
	}, nil
}

// Transcribe uploads the file at location and returns the recognized text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, location string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: location,
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}

	t.logger.Debug("remote transcription finished",
		zap.String("model", t.model),
		zap.String("location", location),
		zap.Int("chars", len(resp.Text)),
	)
	return strings.TrimSpace(resp.Text), nil
}
