package jobs

import (
	"errors"
	"fmt"
	"time"

	"media-scribe/internal/domain"
	"media-scribe/internal/transcribe"
)

// ErrSessionRunning is returned when starting while an attempt is pending.
var ErrSessionRunning = errors.New("transcription already running")

// ErrStaleSession is returned when resolving an attempt that is no longer current.
var ErrStaleSession = errors.New("stale transcription session")

// Manager tracks the single transcription session and its transitions.
// It is owned by the controller loop and is not safe for concurrent use.
type Manager struct {
	current domain.Session
	now     func() time.Time
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Session{Status: domain.SessionStatusIdle},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start begins a new session for target.
func (m *Manager) Start(id string, target domain.MediaReference) error {
	if m.current.Running() {
		return ErrSessionRunning
	}
	if !isValidTransition(m.current.Status, domain.SessionStatusRunning) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, domain.SessionStatusRunning)
	}

	m.current = domain.Session{
		ID:        id,
		Target:    &target,
		Status:    domain.SessionStatusRunning,
		StartedAt: m.now(),
	}
	return nil
}

// Resolve applies the outcome of session id.
func (m *Manager) Resolve(id string, outcome transcribe.Outcome) error {
	if id == "" || id != m.current.ID {
		return ErrStaleSession
	}

	next := domain.SessionStatusSucceeded
	if !outcome.Succeeded() {
		next = domain.SessionStatusFailed
	}
	if !isValidTransition(m.current.Status, next) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, next)
	}

	m.current.Status = next
	m.current.FinishedAt = m.now()
	if outcome.Succeeded() {
		m.current.Text = outcome.Text
	} else {
		m.current.Reason = outcome.Err.Error()
	}
	return nil
}

// Current returns a snapshot of the current session.
func (m *Manager) Current() domain.Session {
	out := m.current
	if out.Target != nil {
		target := *out.Target
		out.Target = &target
	}
	return out
}

// IsRunning reports whether a session waits for its result.
func (m *Manager) IsRunning() bool {
	return m.current.Running()
}

// isValidTransition enforces the allowed session state machine edges.
func isValidTransition(from, to domain.SessionStatus) bool {
	switch from {
	case domain.SessionStatusIdle:
		return to == domain.SessionStatusRunning
	case domain.SessionStatusRunning:
		return to == domain.SessionStatusSucceeded || to == domain.SessionStatusFailed
	case domain.SessionStatusSucceeded, domain.SessionStatusFailed:
		return to == domain.SessionStatusRunning
	default:
		return false
	}
}
