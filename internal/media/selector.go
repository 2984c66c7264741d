package media

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"media-scribe/internal/domain"
)

// Selector runs the chooser and turns its result into a scratch reference.
type Selector struct {
	picker  Picker
	scratch *Scratch
	logger  *zap.Logger
}

// NewSelector wires a chooser to a scratch store.
func NewSelector(picker Picker, scratch *Scratch, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{picker: picker, scratch: scratch, logger: logger}
}

// Pick asks the user for a file and copies it into scratch.
func (s *Selector) Pick(ctx context.Context) (domain.MediaReference, error) {
	path, err := s.picker.PickFile(ctx)
	if err != nil {
		return domain.MediaReference{}, fmt.Errorf("open media chooser: %w", err)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		s.logger.Debug("media chooser dismissed")
		return domain.MediaReference{}, ErrUserCancelled
	}
	if !Supported(path) {
		return domain.MediaReference{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, path)
	}

	ref, err := s.scratch.Import(path)
	if err != nil {
		return domain.MediaReference{}, err
	}

	s.logger.Info("media copied to scratch",
		zap.String("source", path),
		zap.String("location", ref.Location),
		zap.String("kind", string(ref.Kind)),
	)
	return ref, nil
}
