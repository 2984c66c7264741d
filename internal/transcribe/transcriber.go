package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoTranscript is the failure reported when the engine produced no text.
var ErrNoTranscript = errors.New("no transcript produced")

// Transcriber converts the media file at location into text.
type Transcriber interface {
	Transcribe(ctx context.Context, location string) (string, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, location string) (string, error)

// Transcribe calls f.
func (f TranscriberFunc) Transcribe(ctx context.Context, location string) (string, error) {
	return f(ctx, location)
}

// Outcome is the resolved result of one transcription attempt. Exactly one
// of Text or Err is meaningful.
type Outcome struct {
	Text string
	Err  error
}

// Succeeded reports whether the attempt produced text.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Run invokes t once and folds its result into an Outcome. Blank text
// counts as a failure.
func Run(ctx context.Context, t Transcriber, location string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("transcriber panic: %v", r)}
		}
	}()

	if t == nil {
		return Outcome{Err: errors.New("no transcriber configured")}
	}

	text, err := t.Transcribe(ctx, location)
	if err != nil {
		return Outcome{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{Err: ErrNoTranscript}
	}
	return Outcome{Text: text}
}
