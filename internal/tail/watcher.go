// Package tail follows a player and turns state snapshots into a stream of
// playback events.
package tail

import (
	"context"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/bhajan/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventStop
	EventVolumeChange
	EventRepeatChange
	EventShuffleChange
	EventQueueChange
	EventLoadError
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// Watcher subscribes to a player and emits events for each change.
type Watcher struct {
	player core.Player
	events chan Event

	mu     sync.Mutex
	prev   *core.PlaybackState
	closed bool
}

// NewWatcher creates a new state watcher.
func NewWatcher(player core.Player) *Watcher {
	return &Watcher{
		player: player,
		events: make(chan Event, 64),
	}
}

// Events returns the channel of playback events. It is closed when Start
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start follows the player until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.close()

	initial := w.player.State()
	w.observe(&initial)

	unsubscribe := w.player.Subscribe(func(s core.PlaybackState) {
		w.observe(&s)
	})
	defer unsubscribe()

	<-ctx.Done()
	return ctx.Err()
}

// close ends the stream. A player may still deliver a snapshot it
// dispatched before unsubscribe returned; observe drops those.
func (w *Watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	close(w.events)
}

func (w *Watcher) observe(curr *core.PlaybackState) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	for _, e := range diffStates(w.prev, curr) {
		select {
		case w.events <- e:
		default:
			// Drop event if channel is full
		}
	}
	w.prev = curr
}

// diffStates compares two states and returns detected events.
func diffStates(prev, curr *core.PlaybackState) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{
			Type:      t,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// First snapshot - no previous state
	if prev == nil {
		if curr.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	if trackChanged(prev, curr) {
		eventType := EventTrackChange

		// Check if it was a completion vs skip
		if prev.HasTrack() && curr.HasTrack() {
			if wasCompleted(prev) {
				eventType = EventTrackComplete
			} else {
				eventType = EventTrackSkip
			}
		}
		add(eventType)
	}

	switch {
	case prev.IsPlaying && !curr.IsPlaying && curr.IsPaused:
		add(EventPause)
	case prev.IsPlaying && !curr.IsPlaying && !curr.IsLoading && curr.HasTrack():
		add(EventStop)
	case !prev.IsPlaying && curr.IsPlaying:
		add(EventResume)
	}

	if prev.Volume != curr.Volume {
		add(EventVolumeChange)
	}
	if prev.RepeatMode != curr.RepeatMode {
		add(EventRepeatChange)
	}
	if prev.Shuffle != curr.Shuffle {
		add(EventShuffleChange)
	}
	if queueHash(prev) != queueHash(curr) {
		add(EventQueueChange)
	}
	if curr.LastError != "" && curr.LastError != prev.LastError {
		add(EventLoadError)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.CurrentSong == nil && curr.CurrentSong == nil {
		return false
	}
	if prev.CurrentSong == nil || curr.CurrentSong == nil {
		return true
	}
	return prev.CurrentSong.ID != curr.CurrentSong.ID ||
		prev.CurrentSong.URL != curr.CurrentSong.URL
}

// wasCompleted returns true if the track likely completed naturally.
func wasCompleted(state *core.PlaybackState) bool {
	dur := state.EffectiveDuration()
	if dur == 0 {
		return false
	}
	// Consider completed if progress is >= 95% of duration
	threshold := float64(dur) * 0.95
	return float64(state.CurrentTime) >= threshold
}

// queueHash fingerprints the queue contents, ignoring the current index.
func queueHash(state *core.PlaybackState) uint64 {
	h, err := hashstructure.Hash(state.Queue.Tracks, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}
