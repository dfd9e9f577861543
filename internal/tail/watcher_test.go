package tail

import (
	"context"
	"testing"
	"time"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/audio/audiotest"
	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/engine"
)

func song(id string) *core.Track {
	return &core.Track{ID: id, Name: "Song " + id, Artist: "Hari Om Sharan", Duration: 100 * time.Second}
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestDiffStates(t *testing.T) {
	tracks := []core.Track{*song("a"), *song("b")}

	tests := []struct {
		name string
		prev *core.PlaybackState
		curr *core.PlaybackState
		want []EventType
	}{
		{
			name: "first snapshot with track",
			prev: nil,
			curr: &core.PlaybackState{CurrentSong: song("a")},
			want: []EventType{EventTrackChange},
		},
		{
			name: "first snapshot empty",
			prev: nil,
			curr: &core.PlaybackState{},
			want: nil,
		},
		{
			name: "skip before the end",
			prev: &core.PlaybackState{CurrentSong: song("a"), CurrentTime: 10 * time.Second},
			curr: &core.PlaybackState{CurrentSong: song("b")},
			want: []EventType{EventTrackSkip},
		},
		{
			name: "finished track",
			prev: &core.PlaybackState{CurrentSong: song("a"), CurrentTime: 99 * time.Second},
			curr: &core.PlaybackState{CurrentSong: song("b")},
			want: []EventType{EventTrackComplete},
		},
		{
			name: "pause",
			prev: &core.PlaybackState{CurrentSong: song("a"), IsPlaying: true},
			curr: &core.PlaybackState{CurrentSong: song("a"), IsPaused: true},
			want: []EventType{EventPause},
		},
		{
			name: "stop",
			prev: &core.PlaybackState{CurrentSong: song("a"), IsPlaying: true},
			curr: &core.PlaybackState{CurrentSong: song("a")},
			want: []EventType{EventStop},
		},
		{
			name: "resume",
			prev: &core.PlaybackState{CurrentSong: song("a"), IsPaused: true},
			curr: &core.PlaybackState{CurrentSong: song("a"), IsPlaying: true},
			want: []EventType{EventResume},
		},
		{
			name: "modes and volume",
			prev: &core.PlaybackState{Volume: 0.5},
			curr: &core.PlaybackState{Volume: 0.6, RepeatMode: core.RepeatAll, Shuffle: true},
			want: []EventType{EventVolumeChange, EventRepeatChange, EventShuffleChange},
		},
		{
			name: "queue contents",
			prev: &core.PlaybackState{Queue: core.Queue{Tracks: tracks[:1]}},
			curr: &core.PlaybackState{Queue: core.Queue{Tracks: tracks}},
			want: []EventType{EventQueueChange},
		},
		{
			name: "index move is not a queue change",
			prev: &core.PlaybackState{Queue: core.Queue{Tracks: tracks}},
			curr: &core.PlaybackState{Queue: core.Queue{Tracks: tracks, CurrentIndex: 1}},
			want: nil,
		},
		{
			name: "load error",
			prev: &core.PlaybackState{CurrentSong: song("a"), IsLoading: true},
			curr: &core.PlaybackState{CurrentSong: song("a"), LastError: "load failed"},
			want: []EventType{EventLoadError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(diffStates(tt.prev, tt.curr))
			if len(got) != len(tt.want) {
				t.Fatalf("diffStates() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("diffStates()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWatcherFollowsEngine(t *testing.T) {
	svc := audio.New(audiotest.NewBackend())
	defer svc.Destroy()
	e := engine.New(svc)
	defer e.Close()

	w := NewWatcher(e)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Toggle shuffle until the watcher reports it, so the subscription
	// is known to be in place.
	deadline := time.Now().Add(2 * time.Second)
	for subscribed := false; !subscribed; {
		if time.Now().After(deadline) {
			t.Fatal("watcher never subscribed")
		}
		e.ToggleShuffle()
		select {
		case ev := <-w.Events():
			subscribed = ev.Type == EventShuffleChange
		case <-time.After(10 * time.Millisecond):
		}
	}

	tracks := []core.Track{*song("a"), *song("b")}
	for i := range tracks {
		tracks[i].URL = "https://cdn.example.com/" + tracks[i].ID + ".mp3"
	}
	if err := e.LoadPlaylist(ctx, tracks, 0); err != nil {
		t.Fatalf("LoadPlaylist() error = %v", err)
	}
	e.Play()

	seen := make(map[EventType]bool)
	timeout := time.After(2 * time.Second)
	for !seen[EventTrackChange] || !seen[EventQueueChange] || !seen[EventResume] {
		select {
		case ev := <-w.Events():
			seen[ev.Type] = true
		case <-timeout:
			t.Fatalf("missing events, saw %v", seen)
		}
	}

	cancel()
	<-done
	for range w.Events() {
	}
}

// latePlayer keeps delivering to a subscriber after unsubscribe, the way a
// publisher does when it copied its subscriber list before the call.
type latePlayer struct {
	core.Player
	fn func(core.PlaybackState)
}

func (p *latePlayer) State() core.PlaybackState { return core.PlaybackState{} }

func (p *latePlayer) Subscribe(fn func(core.PlaybackState)) func() {
	p.fn = fn
	return func() {}
}

func TestWatcherIgnoresSnapshotsAfterStop(t *testing.T) {
	player := &latePlayer{}
	w := NewWatcher(player)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Start(ctx); err != context.Canceled {
		t.Fatalf("Start() error = %v, want context.Canceled", err)
	}

	player.fn(core.PlaybackState{CurrentSong: song("a"), IsPlaying: true})

	if _, ok := <-w.Events(); ok {
		t.Error("event delivered after Start returned")
	}
}
