// Package controller owns the screen state. Every mutation, including the
// completion of a transcription, is applied by the goroutine running
// Controller.Run; callers only see snapshots.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"media-scribe/internal/domain"
	"media-scribe/internal/jobs"
	"media-scribe/internal/media"
	"media-scribe/internal/transcribe"
)

var (
	// ErrNoSelection is returned when transcription is requested without a selected file.
	ErrNoSelection = errors.New("no media selected")
	// ErrNotInHistory is returned when selecting a location that was never picked.
	ErrNotInHistory = errors.New("media not in history")
	// ErrStopped is returned once the controller loop has exited.
	ErrStopped = errors.New("controller stopped")
)

// mediaSelector runs the chooser and yields a scratch reference.
type mediaSelector interface {
	Pick(ctx context.Context) (domain.MediaReference, error)
}

// Options configures a Controller.
type Options struct {
	Selector    mediaSelector
	Transcriber transcribe.Transcriber
	Events      *jobs.EventBus
	Logger      *zap.Logger
	// OnChange receives every published snapshot on the loop goroutine.
	OnChange func(domain.AppState)
	// NewID generates session identifiers.
	NewID func() string
}

type request struct {
	apply    func() error
	readOnly bool
	reply    chan result
}

type result struct {
	state domain.AppState
	err   error
}

// Controller serializes selection and transcription state changes.
type Controller struct {
	selector mediaSelector
	events   *jobs.EventBus
	logger   *zap.Logger
	onChange func(domain.AppState)
	newID    func() string
	requests chan request
	done     chan struct{}

	// Loop-owned.
	transcriber transcribe.Transcriber
	state       domain.AppState
	history     media.History
	sessions    *jobs.Manager
	runCtx      context.Context
}

// New creates a controller in the launch state. Call Run to start serving.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := opts.Events
	if events == nil {
		events = jobs.NewEventBus(0)
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Controller{
		selector:    opts.Selector,
		transcriber: opts.Transcriber,
		events:      events,
		logger:      logger,
		onChange:    opts.OnChange,
		newID:       newID,
		requests:    make(chan request),
		done:        make(chan struct{}),
		state:       domain.NewAppState(),
		sessions:    jobs.NewManager(),
	}
}

// Events exposes the snapshot stream.
func (c *Controller) Events() *jobs.EventBus {
	return c.events
}

// Run applies requests until ctx is cancelled. Pending transcriptions are
// cancelled with it.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	defer close(c.done)

	c.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-c.requests:
			err := req.apply()
			if err == nil && !req.readOnly {
				c.publish()
			}
			req.reply <- result{state: c.state.Clone(), err: err}
		}
	}
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// State returns the current snapshot.
func (c *Controller) State(ctx context.Context) (domain.AppState, error) {
	return c.send(ctx, request{apply: func() error { return nil }, readOnly: true})
}

// PickMedia shows the chooser and records the picked file. A dismissed
// chooser leaves the state untouched and is not an error; a failed copy
// leaves it untouched too and is returned alongside the snapshot.
func (c *Controller) PickMedia(ctx context.Context) (domain.AppState, error) {
	if c.selector == nil {
		return domain.AppState{}, errors.New("no media selector configured")
	}

	ref, err := c.selector.Pick(ctx)
	if errors.Is(err, media.ErrUserCancelled) {
		return c.State(ctx)
	}
	if err != nil {
		c.logger.Warn("media pick failed", zap.Error(err))
		state, stateErr := c.State(ctx)
		if stateErr != nil {
			return state, stateErr
		}
		return state, err
	}
	return c.RecordSelection(ctx, ref)
}

// RecordSelection makes ref current and appends it to history if new.
func (c *Controller) RecordSelection(ctx context.Context, ref domain.MediaReference) (domain.AppState, error) {
	return c.dispatch(ctx, func() error {
		var added bool
		c.history, added = c.history.Add(ref)
		c.setSelection(ref)
		c.logger.Info("media selected",
			zap.String("location", ref.Location),
			zap.Bool("new", added),
			zap.Int("history", len(c.history)),
		)
		return nil
	})
}

// SelectFromHistory makes an earlier pick current without touching history.
func (c *Controller) SelectFromHistory(ctx context.Context, location string) (domain.AppState, error) {
	return c.dispatch(ctx, func() error {
		ref, ok := c.history.Lookup(location)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotInHistory, location)
		}
		c.setSelection(ref)
		return nil
	})
}

// StartTranscription starts transcribing the current selection. The
// returned snapshot already shows the in-progress text; the result is
// applied later on the loop.
func (c *Controller) StartTranscription(ctx context.Context) (domain.AppState, error) {
	return c.dispatch(ctx, func() error {
		if c.state.Selection == nil {
			return ErrNoSelection
		}
		if c.sessions.IsRunning() {
			return jobs.ErrSessionRunning
		}
		target := *c.state.Selection

		id := c.newID()
		if err := c.sessions.Start(id, target); err != nil {
			return err
		}
		c.state.Session = c.sessions.Current()
		c.state.DisplayText = domain.InProgressText
		c.state.ShowTranscript = true

		c.logger.Info("transcription started",
			zap.String("session", id),
			zap.String("location", target.Location),
		)
		go c.transcribe(id, c.transcriber, target.Location)
		return nil
	})
}

// SetTranscriber swaps the engine used by later sessions.
func (c *Controller) SetTranscriber(ctx context.Context, t transcribe.Transcriber) error {
	_, err := c.dispatch(ctx, func() error {
		c.transcriber = t
		return nil
	})
	return err
}

// transcribe awaits the collaborator and posts its outcome back to the loop.
func (c *Controller) transcribe(id string, t transcribe.Transcriber, location string) {
	outcome := transcribe.Run(c.runCtx, t, location)

	_, err := c.dispatch(context.Background(), func() error {
		return c.resolve(id, outcome)
	})
	if err != nil && !errors.Is(err, ErrStopped) {
		c.logger.Warn("transcription result dropped", zap.String("session", id), zap.Error(err))
	}
}

// resolve applies a finished session to the visible state.
func (c *Controller) resolve(id string, outcome transcribe.Outcome) error {
	if err := c.sessions.Resolve(id, outcome); err != nil {
		return err
	}
	c.state.Session = c.sessions.Current()

	if outcome.Succeeded() {
		c.state.DisplayText = outcome.Text
		c.logger.Info("transcription succeeded", zap.String("session", id), zap.Int("chars", len(outcome.Text)))
		return nil
	}

	c.state.DisplayText = domain.FailureText
	c.logger.Warn("transcription failed", zap.String("session", id), zap.Error(outcome.Err))
	c.events.Publish(jobs.Event{Type: jobs.EventTypeError, Message: outcome.Err.Error()})
	return nil
}

func (c *Controller) setSelection(ref domain.MediaReference) {
	selected := ref
	preview := media.NewPreview(ref)
	c.state.Selection = &selected
	c.state.Preview = &preview
	c.state.History = append([]domain.MediaReference{}, c.history...)
}

// publish records the current snapshot and notifies the host.
func (c *Controller) publish() {
	snapshot := c.state.Clone()
	c.events.Publish(jobs.Event{Type: jobs.EventTypeState, State: &snapshot})
	if c.onChange != nil {
		c.onChange(snapshot.Clone())
	}
}

// dispatch hands apply to the loop and waits for the resulting snapshot.
func (c *Controller) dispatch(ctx context.Context, apply func() error) (domain.AppState, error) {
	return c.send(ctx, request{apply: apply})
}

func (c *Controller) send(ctx context.Context, req request) (domain.AppState, error) {
	req.reply = make(chan result, 1)

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return domain.AppState{}, ctx.Err()
	case <-c.done:
		return domain.AppState{}, ErrStopped
	}

	res := <-req.reply
	return res.state, res.err
}
