package core

import (
	"testing"
	"time"
)

func TestRepeatModeCycle(t *testing.T) {
	mode := RepeatNone
	want := []RepeatMode{RepeatOne, RepeatAll, RepeatNone}
	for i, w := range want {
		mode = mode.Next()
		if mode != w {
			t.Errorf("step %d: Next() = %q, want %q", i+1, mode, w)
		}
	}
}

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RepeatMode
		wantErr bool
	}{
		{"", RepeatNone, false},
		{"none", RepeatNone, false},
		{"one", RepeatOne, false},
		{"all", RepeatAll, false},
		{"context", RepeatNone, true},
	}

	for _, tt := range tests {
		got, err := ParseRepeatMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepeatMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRepeatMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaybackStateStatus(t *testing.T) {
	song := &Track{ID: "1"}
	tests := []struct {
		name  string
		state PlaybackState
		want  Status
	}{
		{"no song", PlaybackState{IsPlaying: true}, StatusIdle},
		{"loading", PlaybackState{CurrentSong: song, IsLoading: true}, StatusLoading},
		{"playing", PlaybackState{CurrentSong: song, IsPlaying: true}, StatusPlaying},
		{"paused", PlaybackState{CurrentSong: song, IsPaused: true}, StatusPaused},
		{"stopped", PlaybackState{CurrentSong: song}, StatusStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	s := PlaybackState{
		CurrentSong: &Track{Duration: 100 * time.Second},
		CurrentTime: 25 * time.Second,
	}
	if got := s.ProgressPercent(); got != 25 {
		t.Errorf("ProgressPercent() with hint = %v, want 25", got)
	}

	s.Duration = 50 * time.Second
	if got := s.ProgressPercent(); got != 50 {
		t.Errorf("ProgressPercent() with reported duration = %v, want 50", got)
	}

	s.CurrentTime = time.Minute
	if got := s.ProgressPercent(); got != 100 {
		t.Errorf("ProgressPercent() past the end = %v, want 100", got)
	}
}

func TestPlaybackStateClone(t *testing.T) {
	s := PlaybackState{
		CurrentSong: &Track{ID: "1"},
		Queue:       Queue{Tracks: []Track{{ID: "1"}}},
	}
	c := s.Clone()
	c.CurrentSong.ID = "2"
	c.Queue.Tracks[0].ID = "2"
	if s.CurrentSong.ID != "1" || s.Queue.Tracks[0].ID != "1" {
		t.Error("Clone() aliases the original state")
	}
}
