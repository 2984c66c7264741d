package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUserCancelled is returned when the chooser closes without a selection.
var ErrUserCancelled = errors.New("media selection cancelled")

// ErrUnsupportedMedia is returned for files outside the audio/video set.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Extensions lists the audio and video types the chooser offers.
var Extensions = []string{
	"mp4", "mov", "mkv", "avi", "webm", "m4v", "3gp", "3g2", "mpeg", "mpg", "wmv",
	"mp3", "wav", "m4a", "flac", "aac", "ogg", "oga", "opus", "aiff", "aif", "caf", "wma", "amr",
}

// DialogPattern renders Extensions as a semicolon separated glob list.
func DialogPattern() string {
	patterns := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		patterns = append(patterns, "*."+ext)
	}
	return strings.Join(patterns, ";")
}

// Supported reports whether path has an audio or video extension.
func Supported(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Picker presents a file chooser and returns the chosen path, or an empty
// path when the user dismissed it.
type Picker interface {
	PickFile(ctx context.Context) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context) (string, error)

// PickFile calls f.
func (f PickerFunc) PickFile(ctx context.Context) (string, error) {
	return f(ctx)
}

// QueuePicker hands out queued paths in order, one per call, and behaves
// like a dismissed chooser once drained.
type QueuePicker struct {
	mu    sync.Mutex
	paths []string
}

// NewQueuePicker creates a picker preloaded with paths.
func NewQueuePicker(paths ...string) *QueuePicker {
	return &QueuePicker{paths: append([]string(nil), paths...)}
}

// PickFile pops the next queued path.
func (q *QueuePicker) PickFile(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.paths) == 0 {
		return "", nil
	}
	next := q.paths[0]
	q.paths = q.paths[1:]
	return next, nil
}
