package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Placeholder texts shown in the transcript card.
const (
	SampleText     = "🎤 This is a sample transcription. Tap transcribe to get real results."
	InProgressText = "⏳ Transcribing..."
	FailureText    = "⚠️ Failed to transcribe media."
)

// MediaKind is the coarse content category of a picked file.
type MediaKind string

const (
	MediaKindAudio MediaKind = "audio"
	MediaKindVideo MediaKind = "video"
)

var videoExtensions = map[string]struct{}{
	"mp4":  {},
	"mov":  {},
	"mkv":  {},
	"avi":  {},
	"webm": {},
	"m4v":  {},
	"3gp":  {},
	"3g2":  {},
	"mpeg": {},
	"mpg":  {},
	"wmv":  {},
}

// KindOf infers the media kind from a file extension with or without the dot.
func KindOf(ext string) MediaKind {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if _, ok := videoExtensions[ext]; ok {
		return MediaKindVideo
	}
	return MediaKindAudio
}

// MediaReference locates a scratch copy of a user-picked media file.
type MediaReference struct {
	Location  string    `json:"location"`
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Kind      MediaKind `json:"kind"`
}

// NewMediaReference derives name, extension and kind from location.
func NewMediaReference(location string) MediaReference {
	name := filepath.Base(location)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return MediaReference{
		Location:  location,
		Name:      name,
		Extension: ext,
		Kind:      KindOf(ext),
	}
}

// Label is the short upper-case type tag rendered under the file name.
func (r MediaReference) Label() string {
	return strings.ToUpper(r.Extension)
}

// Preview is a playable handle bound to one media reference.
type Preview struct {
	Location string    `json:"location"`
	URL      string    `json:"url"`
	MIMEType string    `json:"mimeType,omitempty"`
	Kind     MediaKind `json:"kind"`
}

// SessionStatus tracks the lifecycle of one transcription attempt.
type SessionStatus string

const (
	SessionStatusIdle      SessionStatus = "idle"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusSucceeded SessionStatus = "succeeded"
	SessionStatusFailed    SessionStatus = "failed"
)

// Session is the most recently initiated transcription attempt.
type Session struct {
	ID         string          `json:"id,omitempty"`
	Target     *MediaReference `json:"target,omitempty"`
	Status     SessionStatus   `json:"status"`
	Text       string          `json:"text,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	StartedAt  time.Time       `json:"startedAt,omitempty"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
}

// Running reports whether the session still waits for its result.
func (s Session) Running() bool {
	return s.Status == SessionStatusRunning
}

// AppState is everything the screen renders.
type AppState struct {
	Selection      *MediaReference  `json:"selection,omitempty"`
	History        []MediaReference `json:"history"`
	Preview        *Preview         `json:"preview,omitempty"`
	Session        Session          `json:"session"`
	DisplayText    string           `json:"displayText"`
	ShowTranscript bool             `json:"showTranscript"`
}

// NewAppState returns the state shown on launch.
func NewAppState() AppState {
	return AppState{
		History:     []MediaReference{},
		Session:     Session{Status: SessionStatusIdle},
		DisplayText: SampleText,
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s AppState) Clone() AppState {
	out := s
	out.History = append([]MediaReference{}, s.History...)
	if s.Selection != nil {
		sel := *s.Selection
		out.Selection = &sel
	}
	if s.Preview != nil {
		p := *s.Preview
		out.Preview = &p
	}
	if s.Session.Target != nil {
		target := *s.Session.Target
		out.Session.Target = &target
	}
	return out
}

// RecentHistory lists history entries newest first.
func (s AppState) RecentHistory() []MediaReference {
	out := make([]MediaReference, 0, len(s.History))
	for i := len(s.History) - 1; i >= 0; i-- {
		out = append(out, s.History[i])
	}
	return out
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	Engine      string `json:"engine"`
	ModelPath   string `json:"modelPath"`
	Language    string `json:"language"`
	ScratchDir  string `json:"scratchDir"`
	OpenAIModel string `json:"openaiModel,omitempty"`
}

// Transcription engines selectable in settings.
const (
	EngineWhisperCPP = "whisper.cpp"
	EngineOpenAI     = "openai"
)
