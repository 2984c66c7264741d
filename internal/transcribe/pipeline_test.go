package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

// fakeRunner simulates command execution order and outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// newTestPipeline builds a pipeline around a fake runner.
func newTestPipeline(t *testing.T, cfg PipelineConfig, runner commandRunner) *Pipeline {
	t.Helper()
	p := NewPipeline(cfg, zaptest.NewLogger(t))
	p.runner = runner
	return p
}

// TestPipelineTranscribeSuccessAutoLanguage checks full happy path with auto lang.
func TestPipelineTranscribeSuccessAutoLanguage(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "meeting.mp4")
	modelPath := filepath.Join(root, "ggml-base.bin")
	mustWriteFile(t, inputPath, "media")
	mustWriteFile(t, modelPath, "model")

	call := 0
	var whisperArgs []string
	var tempDir string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			call++
			switch call {
			case 1:
				if name != "ffmpeg-custom" {
					t.Fatalf("command 1 name = %q, want ffmpeg-custom", name)
				}
				outPath := args[len(args)-1]
				tempDir = filepath.Dir(outPath)
				mustWriteFile(t, outPath, "wav")
				return commandResult{Stdout: "ffmpeg ok"}, nil
			case 2:
				if name != "whisper-custom" {
					t.Fatalf("command 2 name = %q, want whisper-custom", name)
				}
				whisperArgs = append([]string{}, args...)
				mustWriteFile(t, argValue(args, "-of")+".txt", "  hello world\n")
				return commandResult{Stdout: "whisper ok"}, nil
			default:
				t.Fatalf("unexpected command call: %d", call)
				return commandResult{}, nil
			}
		},
	}

	pipeline := newTestPipeline(t, PipelineConfig{
		FFmpegPath:  "ffmpeg-custom",
		WhisperPath: "whisper-custom",
		ModelPath:   modelPath,
		Language:    "auto",
	}, runner)

	text, err := pipeline.Transcribe(context.Background(), inputPath)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if call != 2 {
		t.Fatalf("command calls = %d, want 2", call)
	}
	if text != "hello world" {
		t.Fatalf("transcript = %q", text)
	}
	if hasArg(whisperArgs, "-l") {
		t.Fatalf("auto language should not pass -l, args=%v", whisperArgs)
	}
	if _, err := os.Stat(tempDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp dir cleanup, stat err = %v", err)
	}
}

// TestPipelineTranscribeFFmpegFailure checks conversion error path.
func TestPipelineTranscribeFFmpegFailure(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "clip.mp4")
	modelPath := filepath.Join(root, "model.bin")
	mustWriteFile(t, inputPath, "media")
	mustWriteFile(t, modelPath, "model")

	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stderr: "ffmpeg failed", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	var cleaned string
	pipeline := newTestPipeline(t, PipelineConfig{ModelPath: modelPath}, runner)
	pipeline.removeAll = func(path string) error {
		cleaned = path
		return os.RemoveAll(path)
	}

	_, err := pipeline.Transcribe(context.Background(), inputPath)
	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if pErr.Stage != "preprocessing" {
		t.Fatalf("stage = %s, want preprocessing", pErr.Stage)
	}
	if pErr.CommandLog.Command != "ffmpeg" || pErr.CommandLog.ExitCode != 1 {
		t.Fatalf("command log = %+v", pErr.CommandLog)
	}
	if cleaned == "" {
		t.Fatal("expected temporary directory cleanup")
	}
}

// TestPipelineTranscribeFixedLanguageAndModelDirectory checks model discovery.
func TestPipelineTranscribeFixedLanguageAndModelDirectory(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "clip.mov")
	modelDir := filepath.Join(root, "models")
	mustWriteFile(t, inputPath, "media")
	// lexical sort should pick this first.
	mustWriteFile(t, filepath.Join(modelDir, "a-small.gguf"), "model")
	mustWriteFile(t, filepath.Join(modelDir, "z-large.bin"), "model")
	mustWriteFile(t, filepath.Join(modelDir, "README.md"), "docs")

	var usedModel, usedLanguage string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			if name == "ffmpeg" {
				mustWriteFile(t, args[len(args)-1], "wav")
				return commandResult{}, nil
			}
			usedModel = argValue(args, "-m")
			usedLanguage = argValue(args, "-l")
			mustWriteFile(t, argValue(args, "-of")+".txt", "transcribed")
			return commandResult{}, nil
		},
	}

	pipeline := newTestPipeline(t, PipelineConfig{ModelPath: modelDir, Language: "en"}, runner)
	text, err := pipeline.Transcribe(context.Background(), inputPath)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if want := filepath.Join(modelDir, "a-small.gguf"); usedModel != want {
		t.Fatalf("used model = %q, want %q", usedModel, want)
	}
	if usedLanguage != "en" {
		t.Fatalf("used language = %q, want en", usedLanguage)
	}
	if text != "transcribed" {
		t.Fatalf("transcript = %q", text)
	}
}

// TestPipelineTranscribeWhisperFailureCleansTempDir checks failure cleanup path.
func TestPipelineTranscribeWhisperFailureCleansTempDir(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "clip.mp4")
	modelPath := filepath.Join(root, "model.bin")
	mustWriteFile(t, inputPath, "media")
	mustWriteFile(t, modelPath, "model")

	var tempDir string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			if name == "ffmpeg" {
				outPath := args[len(args)-1]
				tempDir = filepath.Dir(outPath)
				mustWriteFile(t, outPath, "wav")
				return commandResult{}, nil
			}
			return commandResult{Stderr: "whisper failed", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	pipeline := newTestPipeline(t, PipelineConfig{ModelPath: modelPath}, runner)
	_, err := pipeline.Transcribe(context.Background(), inputPath)

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if pErr.Stage != "transcribing" {
		t.Fatalf("stage = %s, want transcribing", pErr.Stage)
	}
	if pErr.CommandLog.Command != "whisper.cpp" {
		t.Fatalf("command = %q, want whisper.cpp", pErr.CommandLog.Command)
	}
	if _, statErr := os.Stat(tempDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("temp dir should be removed on failure, stat err = %v", statErr)
	}
}

// TestPipelineTranscribeRequiresModelPath checks validation for missing model path.
func TestPipelineTranscribeRequiresModelPath(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "clip.mp3")
	mustWriteFile(t, inputPath, "media")

	pipeline := newTestPipeline(t, PipelineConfig{}, &fakeRunner{})
	_, err := pipeline.Transcribe(context.Background(), inputPath)

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if pErr.Stage != "transcribing" {
		t.Fatalf("stage = %s, want transcribing", pErr.Stage)
	}
}

// TestPipelineTranscribeMissingInput checks the input stat guard.
func TestPipelineTranscribeMissingInput(t *testing.T) {
	pipeline := newTestPipeline(t, PipelineConfig{ModelPath: "/m.bin"}, &fakeRunner{})
	_, err := pipeline.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

// TestBuildFFmpegArgs verifies deterministic ffmpeg command arguments.
func TestBuildFFmpegArgs(t *testing.T) {
	args := buildFFmpegArgs("/in.mp4", "/tmp/out.wav")
	want := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", "/in.mp4",
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"/tmp/out.wav",
	}

	if len(args) != len(want) {
		t.Fatalf("args len = %d, want %d", len(args), len(want))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

// TestBuildWhisperArgsLanguage verifies the language flag per mode.
func TestBuildWhisperArgsLanguage(t *testing.T) {
	if args := buildWhisperArgs("/m.bin", "/audio.wav", "/out/base", "auto"); hasArg(args, "-l") {
		t.Fatalf("did not expect -l in args: %v", args)
	}
	args := buildWhisperArgs("/m.bin", "/audio.wav", "/out/base", "ru")
	if got := argValue(args, "-l"); got != "ru" {
		t.Fatalf("language arg = %q, want ru", got)
	}
}

// mustWriteFile creates parent directory and writes file content.
func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// argValue returns value for key-style CLI args.
func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args include the target flag.
func hasArg(args []string, key string) bool {
	for _, arg := range args {
		if arg == key {
			return true
		}
	}
	return false
}
