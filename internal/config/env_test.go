package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-scribe/internal/domain"
)

// TestLoadEnvReadsFirstExistingFile checks missing files are skipped.
func TestLoadEnvReadsFirstExistingFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-from-file\n"), 0o600))

	t.Setenv(EnvOpenAIKey, "")
	require.NoError(t, os.Unsetenv(EnvOpenAIKey))

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "sk-from-file", OpenAIKey())
}

// TestLoadEnvKeepsProcessValues checks exported values win over .env.
func TestLoadEnvKeepsProcessValues(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-from-file\n"), 0o600))
	t.Setenv(EnvOpenAIKey, "sk-process")

	require.NoError(t, LoadEnv(envFile))
	assert.Equal(t, "sk-process", OpenAIKey())
}

// TestApplyEnvOverrides checks environment overrides for scratch dir and engine.
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvScratchDir, "/tmp/elsewhere")
	t.Setenv(EnvEngine, domain.EngineOpenAI)

	got := ApplyEnv(DefaultSettings())
	assert.Equal(t, "/tmp/elsewhere", got.ScratchDir)
	assert.Equal(t, domain.EngineOpenAI, got.Engine)
}
