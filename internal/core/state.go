package core

import (
	"fmt"
	"time"
)

// Status is the derived transport state of the player.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// RepeatMode controls what happens when a track ends.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatOne  RepeatMode = "one"
	RepeatAll  RepeatMode = "all"
)

// Next returns the following mode in the none → one → all → none cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatNone:
		return RepeatOne
	case RepeatOne:
		return RepeatAll
	default:
		return RepeatNone
	}
}

// ParseRepeatMode parses a repeat mode name.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch RepeatMode(s) {
	case RepeatNone, RepeatOne, RepeatAll:
		return RepeatMode(s), nil
	case "":
		return RepeatNone, nil
	}
	return RepeatNone, fmt.Errorf("invalid repeat mode: %s (must be none, one, or all)", s)
}

// PlaybackState is a snapshot of the player's observable state.
type PlaybackState struct {
	CurrentSong *Track        `json:"current_song"`
	Queue       Queue         `json:"queue"`
	IsPlaying   bool          `json:"is_playing"`
	IsPaused    bool          `json:"is_paused"`
	IsLoading   bool          `json:"is_loading"`
	CurrentTime time.Duration `json:"current_time"`
	Duration    time.Duration `json:"duration"`
	Volume      float64       `json:"volume"`
	RepeatMode  RepeatMode    `json:"repeat_mode"`
	Shuffle     bool          `json:"shuffle"`
	LastError   string        `json:"last_error,omitempty"`

	MiniPlayerVisible bool `json:"mini_player_visible"`
	FullPlayerVisible bool `json:"full_player_visible"`
}

// CurrentIndex returns the queue position of the current track.
func (s PlaybackState) CurrentIndex() int {
	return s.Queue.CurrentIndex
}

// HasTrack returns true if there is a current track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.CurrentSong != nil
}

// Status derives the transport state from the flags.
func (s *PlaybackState) Status() Status {
	switch {
	case s == nil || s.CurrentSong == nil:
		return StatusIdle
	case s.IsLoading:
		return StatusLoading
	case s.IsPlaying:
		return StatusPlaying
	case s.IsPaused:
		return StatusPaused
	default:
		return StatusStopped
	}
}

// EffectiveDuration returns the reported duration, falling back to the
// track's duration hint.
func (s *PlaybackState) EffectiveDuration() time.Duration {
	if s == nil {
		return 0
	}
	if s.Duration > 0 {
		return s.Duration
	}
	if s.CurrentSong != nil {
		return s.CurrentSong.Duration
	}
	return 0
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	total := s.EffectiveDuration()
	if total == 0 {
		return 0
	}
	p := float64(s.CurrentTime) / float64(total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Clone returns a deep copy of the state.
func (s PlaybackState) Clone() PlaybackState {
	out := s
	out.Queue = s.Queue.Clone()
	if s.CurrentSong != nil {
		song := *s.CurrentSong
		out.CurrentSong = &song
	}
	return out
}
