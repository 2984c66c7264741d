package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"media-scribe/internal/domain"
)

// TestRunMapsOutcomes checks text, blank text, errors and panics fold into outcomes.
func TestRunMapsOutcomes(t *testing.T) {
	ctx := context.Background()

	ok := Run(ctx, TranscriberFunc(func(context.Context, string) (string, error) {
		return "Hello world", nil
	}), "/a.mp3")
	require.True(t, ok.Succeeded())
	assert.Equal(t, "Hello world", ok.Text)

	blank := Run(ctx, TranscriberFunc(func(context.Context, string) (string, error) {
		return "   ", nil
	}), "/a.mp3")
	assert.False(t, blank.Succeeded())
	assert.ErrorIs(t, blank.Err, ErrNoTranscript)

	boom := errors.New("engine down")
	failed := Run(ctx, TranscriberFunc(func(context.Context, string) (string, error) {
		return "partial", boom
	}), "/a.mp3")
	assert.ErrorIs(t, failed.Err, boom)
	assert.Empty(t, failed.Text)

	panicked := Run(ctx, TranscriberFunc(func(context.Context, string) (string, error) {
		panic("bad engine")
	}), "/a.mp3")
	assert.Error(t, panicked.Err)

	assert.Error(t, Run(ctx, nil, "/a.mp3").Err)
}

// TestRunPassesLocation checks the engine receives the scratch location.
func TestRunPassesLocation(t *testing.T) {
	var got string
	Run(context.Background(), TranscriberFunc(func(_ context.Context, location string) (string, error) {
		got = location
		return "x", nil
	}), "/scratch/clip.mp4")
	assert.Equal(t, "/scratch/clip.mp4", got)
}

// TestOpenAITranscriberPostsAudio checks the upload hits the transcription endpoint.
func TestOpenAITranscriberPostsAudio(t *testing.T) {
	var gotModel, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFile = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": " Hello world "})
	}))
	defer srv.Close()

	input := filepath.Join(t.TempDir(), "talk.mp3")
	mustWriteFile(t, input, "audio")

	tr, err := NewOpenAITranscriber(OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/v1",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "talk.mp3", gotFile)
}

// TestOpenAITranscriberRequiresKey checks a missing API key is rejected up front.
func TestOpenAITranscriberRequiresKey(t *testing.T) {
	_, err := NewOpenAITranscriber(OpenAIConfig{}, nil)
	assert.Error(t, err)
}

// TestNewSelectsEngine checks engine names map to implementations.
func TestNewSelectsEngine(t *testing.T) {
	local, err := New(domain.Settings{Engine: domain.EngineWhisperCPP, ModelPath: "/m.bin"}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &Pipeline{}, local)

	remote, err := New(domain.Settings{Engine: domain.EngineOpenAI}, "sk-test", nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAITranscriber{}, remote)

	_, err = New(domain.Settings{Engine: "vosk"}, "", nil)
	assert.Error(t, err)
}
