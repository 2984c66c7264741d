package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMediaReferenceInfersKind checks name, label and kind derivation.
func TestNewMediaReferenceInfersKind(t *testing.T) {
	tests := []struct {
		location string
		name     string
		label    string
		kind     MediaKind
	}{
		{"/scratch/clip.mp4", "clip.mp4", "MP4", MediaKindVideo},
		{"/scratch/Clip.MOV", "Clip.MOV", "MOV", MediaKindVideo},
		{"/scratch/talk.m4a", "talk.m4a", "M4A", MediaKindAudio},
		{"/scratch/phone.3gp", "phone.3gp", "3GP", MediaKindVideo},
		{"/scratch/tape.mpeg", "tape.mpeg", "MPEG", MediaKindVideo},
		{"/scratch/memo.opus", "memo.opus", "OPUS", MediaKindAudio},
		{"/scratch/take.aiff", "take.aiff", "AIFF", MediaKindAudio},
		{"/scratch/noext", "noext", "", MediaKindAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := NewMediaReference(tt.location)
			assert.Equal(t, tt.location, ref.Location)
			assert.Equal(t, tt.name, ref.Name)
			assert.Equal(t, tt.label, ref.Label())
			assert.Equal(t, tt.kind, ref.Kind)
		})
	}
}

// TestNewAppStateStartsWithSampleText checks the launch state.
func TestNewAppStateStartsWithSampleText(t *testing.T) {
	state := NewAppState()
	assert.Equal(t, SampleText, state.DisplayText)
	assert.Equal(t, SessionStatusIdle, state.Session.Status)
	assert.Nil(t, state.Selection)
	assert.False(t, state.ShowTranscript)
	assert.Empty(t, state.History)
}

// TestAppStateCloneIsDeep checks snapshots share no pointers.
func TestAppStateCloneIsDeep(t *testing.T) {
	a := NewMediaReference("/scratch/a.mp3")
	state := NewAppState()
	state.History = append(state.History, a)
	state.Selection = &a

	clone := state.Clone()
	clone.History[0].Name = "changed"
	clone.Selection.Name = "changed"

	require.Equal(t, "a.mp3", state.History[0].Name)
	require.Equal(t, "a.mp3", state.Selection.Name)
}

// TestRecentHistoryNewestFirst checks display order is reversed.
func TestRecentHistoryNewestFirst(t *testing.T) {
	state := NewAppState()
	state.History = []MediaReference{
		NewMediaReference("/s/a.mp3"),
		NewMediaReference("/s/b.mp3"),
		NewMediaReference("/s/c.mp3"),
	}

	recent := state.RecentHistory()
	require.Len(t, recent, 3)
	assert.Equal(t, "c.mp3", recent[0].Name)
	assert.Equal(t, "a.mp3", recent[2].Name)
	assert.Equal(t, "a.mp3", state.History[0].Name)
}
