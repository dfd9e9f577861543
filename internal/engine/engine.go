// Package engine holds the play queue and observable playback state, and
// translates user intents into calls on an audio adapter.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/errors"
)

const (
	// DefaultPollInterval is how often the position is sampled while playing.
	DefaultPollInterval = time.Second

	// DefaultVolume is the initial volume.
	DefaultVolume = 0.8
)

// Adapter is the audio surface the engine drives. *audio.Service
// implements it.
type Adapter interface {
	LoadTrack(ctx context.Context, track core.Track) error
	Play()
	Pause()
	Stop()
	Seek(position time.Duration)
	SetVolume(v float64)
	CurrentTime() time.Duration
	Duration() time.Duration
	Volume() float64
	IsPlaying() bool
	Subscribe(l audio.Listener) func()
}

// Engine is the single source of truth for the queue and playback state.
// It is safe for concurrent use.
type Engine struct {
	adapter      Adapter
	logger       *zap.Logger
	pollInterval time.Duration
	unsubscribe  func()

	// loadGate admits one load into the adapter at a time.
	loadGate chan struct{}

	mu           sync.Mutex
	state        core.PlaybackState
	loadToken    uint64
	adapterToken uint64
	loadCancel   context.CancelFunc
	pollCancel   context.CancelFunc
	subs       map[uint64]func(core.PlaybackState)
	subOrder   []uint64
	nextSub    uint64
	closed     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPollInterval sets the position sampling interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithVolume sets the initial volume, clamped to [0,1].
func WithVolume(v float64) Option {
	return func(e *Engine) {
		e.state.Volume = clampVolume(v)
	}
}

// New creates an engine and subscribes it to adapter events.
func New(adapter Adapter, opts ...Option) *Engine {
	e := &Engine{
		adapter:      adapter,
		logger:       zap.NewNop(),
		pollInterval: DefaultPollInterval,
		state: core.PlaybackState{
			Volume:     DefaultVolume,
			RepeatMode: core.RepeatNone,
		},
		subs:     make(map[uint64]func(core.PlaybackState)),
		loadGate: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.unsubscribe = adapter.Subscribe(e.handleEvent)
	return e
}

// Close detaches from the adapter and stops position polling.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopPollLocked()
	e.subs = make(map[uint64]func(core.PlaybackState))
	e.subOrder = nil
	e.mu.Unlock()

	e.unsubscribe()
}

// State returns a snapshot of the playback state.
func (e *Engine) State() core.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Subscribe registers fn for state changes. The returned function removes it.
func (e *Engine) Subscribe(fn func(core.PlaybackState)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSub++
	id := e.nextSub
	e.subs[id] = fn
	e.subOrder = append(e.subOrder, id)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[id]; !ok {
			return
		}
		delete(e.subs, id)
		for i, v := range e.subOrder {
			if v == id {
				e.subOrder = append(e.subOrder[:i], e.subOrder[i+1:]...)
				break
			}
		}
	}
}

// update applies fn to the state under the lock and notifies subscribers.
func (e *Engine) update(fn func(s *core.PlaybackState)) {
	e.mu.Lock()
	fn(&e.state)
	e.syncPollLocked()
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()

	notify(snap, subs)
}

func (e *Engine) snapshotLocked() (core.PlaybackState, []func(core.PlaybackState)) {
	subs := make([]func(core.PlaybackState), 0, len(e.subOrder))
	for _, id := range e.subOrder {
		subs = append(subs, e.subs[id])
	}
	return e.state.Clone(), subs
}

func notify(snap core.PlaybackState, subs []func(core.PlaybackState)) {
	for _, fn := range subs {
		fn(snap)
	}
}

func (e *Engine) currentSong() *core.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentSong
}

// Play asks the adapter to start playback. State changes when the adapter
// confirms with a play event.
func (e *Engine) Play() {
	if e.currentSong() == nil {
		e.logger.Debug("play ignored: no current song")
		return
	}
	e.adapter.Play()
}

// Pause asks the adapter to pause.
func (e *Engine) Pause() {
	if e.currentSong() == nil {
		e.logger.Debug("pause ignored: no current song")
		return
	}
	e.adapter.Pause()
}

// Stop asks the adapter to stop.
func (e *Engine) Stop() {
	if e.currentSong() == nil {
		return
	}
	e.adapter.Stop()
}

// TogglePlay pauses when playing and plays otherwise.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	playing := e.state.IsPlaying
	e.mu.Unlock()

	if playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// Seek moves to position. Negative positions seek to the start.
func (e *Engine) Seek(position time.Duration) {
	if e.currentSong() == nil {
		return
	}
	e.adapter.Seek(max(0, position))
}

// SetVolume clamps v to [0,1], stores it, and forwards it to the adapter.
func (e *Engine) SetVolume(v float64) {
	v = clampVolume(v)
	e.update(func(s *core.PlaybackState) {
		s.Volume = v
	})
	e.adapter.SetVolume(v)
}

func clampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}

// SetRepeatMode sets the repeat mode.
func (e *Engine) SetRepeatMode(mode core.RepeatMode) {
	e.update(func(s *core.PlaybackState) {
		s.RepeatMode = mode
	})
}

// CycleRepeatMode advances none → one → all → none and returns the new mode.
func (e *Engine) CycleRepeatMode() core.RepeatMode {
	var mode core.RepeatMode
	e.update(func(s *core.PlaybackState) {
		s.RepeatMode = s.RepeatMode.Next()
		mode = s.RepeatMode
	})
	return mode
}

// SetShuffleMode sets the shuffle flag. The engine never reorders the
// queue; whoever builds the queue consults the flag.
func (e *Engine) SetShuffleMode(on bool) {
	e.update(func(s *core.PlaybackState) {
		s.Shuffle = on
	})
}

// ToggleShuffle flips the shuffle flag and returns the new value.
func (e *Engine) ToggleShuffle() bool {
	var on bool
	e.update(func(s *core.PlaybackState) {
		s.Shuffle = !s.Shuffle
		on = s.Shuffle
	})
	return on
}

// LoadTrack makes track current and waits for the adapter to load it.
// It does not start playback. If another load starts before this one
// finishes, this one returns ErrLoadSuperseded and leaves state alone.
func (e *Engine) LoadTrack(ctx context.Context, track core.Track) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	token := e.supersedeLocked()
	e.loadCancel = cancel
	t := track
	e.state.CurrentSong = &t
	e.state.IsLoading = true
	e.state.IsPlaying = false
	e.state.IsPaused = false
	e.state.CurrentTime = 0
	e.state.Duration = 0
	e.state.LastError = ""
	e.state.MiniPlayerVisible = true
	e.syncPollLocked()
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()
	notify(snap, subs)

	e.logger.Debug("loading track",
		zap.String("id", track.ID),
		zap.String("name", track.Name))

	dur, err := e.loadInOrder(ctx, token, track)

	e.mu.Lock()
	if token != e.loadToken {
		e.mu.Unlock()
		return errors.ErrLoadSuperseded
	}
	e.loadCancel = nil
	e.state.IsLoading = false
	// A load the adapter dropped on teardown still ends loading.
	dropped := errors.Is(err, errors.ErrLoadSuperseded)
	switch {
	case err == nil:
		e.state.Duration = dur
	case !dropped:
		e.state.LastError = err.Error()
	}
	volume := e.state.Volume
	snap, subs = e.snapshotLocked()
	e.mu.Unlock()
	notify(snap, subs)

	if dropped {
		return err
	}
	if err != nil {
		e.logger.Warn("track failed to load",
			zap.String("name", track.Name),
			zap.Error(err))
		return err
	}

	// New resources start at full volume.
	e.adapter.SetVolume(volume)
	return nil
}

// loadInOrder hands track to the adapter once every earlier load has left
// it, so the adapter sees loads in the order their tokens were issued.
func (e *Engine) loadInOrder(ctx context.Context, token uint64, track core.Track) (time.Duration, error) {
	select {
	case e.loadGate <- struct{}{}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	defer func() { <-e.loadGate }()

	e.mu.Lock()
	if token != e.loadToken {
		e.mu.Unlock()
		return 0, errors.ErrLoadSuperseded
	}
	e.adapterToken = token
	e.mu.Unlock()

	if err := e.adapter.LoadTrack(ctx, track); err != nil {
		return 0, err
	}
	return e.adapter.Duration(), nil
}

// supersedeLocked invalidates and cancels any in-flight load and returns
// the new token.
func (e *Engine) supersedeLocked() uint64 {
	e.loadToken++
	if e.loadCancel != nil {
		e.loadCancel()
		e.loadCancel = nil
	}
	return e.loadToken
}

// loadStaleLocked reports whether the load inside the adapter has been
// superseded, in which case its load events describe the wrong track.
func (e *Engine) loadStaleLocked() bool {
	return e.adapterToken != e.loadToken
}

// LoadPlaylist replaces the queue and loads the track at startIndex
// without playing it. An empty list clears the queue and current song.
func (e *Engine) LoadPlaylist(ctx context.Context, tracks []core.Track, startIndex int) error {
	if len(tracks) == 0 {
		e.mu.Lock()
		e.supersedeLocked()
		hadSong := e.state.CurrentSong != nil
		e.state.Queue = core.Queue{}
		e.state.CurrentSong = nil
		e.state.IsLoading = false
		e.state.CurrentTime = 0
		e.state.Duration = 0
		e.state.MiniPlayerVisible = false
		e.syncPollLocked()
		snap, subs := e.snapshotLocked()
		e.mu.Unlock()
		notify(snap, subs)

		if hadSong {
			e.adapter.Stop()
		}
		return nil
	}

	if startIndex < 0 || startIndex >= len(tracks) {
		return fmt.Errorf("%w: start index %d for %d tracks", errors.ErrIndexOutOfRange, startIndex, len(tracks))
	}

	queue := core.Queue{Tracks: tracks, CurrentIndex: startIndex}.Clone()

	e.mu.Lock()
	e.state.Queue = queue
	e.mu.Unlock()

	return e.LoadTrack(ctx, queue.Tracks[startIndex])
}

// SkipToNext advances to the next track, wrapping past the end, and loads
// it. It never starts playback by itself.
func (e *Engine) SkipToNext(ctx context.Context) error {
	return e.skip(ctx, (*core.Queue).NextIndex)
}

// SkipToPrevious steps back one track, wrapping before the start, and
// loads it.
func (e *Engine) SkipToPrevious(ctx context.Context) error {
	return e.skip(ctx, (*core.Queue).PrevIndex)
}

func (e *Engine) skip(ctx context.Context, step func(*core.Queue) int) error {
	e.mu.Lock()
	idx := step(&e.state.Queue)
	if idx < 0 {
		e.mu.Unlock()
		return nil
	}
	e.state.Queue.CurrentIndex = idx
	track := e.state.Queue.Tracks[idx]
	e.mu.Unlock()

	return e.LoadTrack(ctx, track)
}

// AddToQueue appends track without changing the current track.
func (e *Engine) AddToQueue(track core.Track) {
	e.update(func(s *core.PlaybackState) {
		s.Queue.Append(track)
	})
}

// RemoveFromQueue removes the track at index. Removing the current track
// makes the track now at the clamped index current without loading it;
// removing the last track stops playback.
func (e *Engine) RemoveFromQueue(index int) error {
	e.mu.Lock()
	if !e.state.Queue.InRange(index) {
		n := e.state.Queue.Len()
		e.mu.Unlock()
		return fmt.Errorf("%w: %d for queue of %d", errors.ErrIndexOutOfRange, index, n)
	}

	wasCurrent := index == e.state.Queue.CurrentIndex
	e.state.Queue.Remove(index)

	stop := false
	if wasCurrent {
		if cur := e.state.Queue.Current(); cur != nil {
			t := *cur
			e.state.CurrentSong = &t
		} else {
			stop = e.state.CurrentSong != nil
			e.supersedeLocked()
			e.state.CurrentSong = nil
			e.state.IsLoading = false
			e.state.MiniPlayerVisible = false
		}
	}
	e.syncPollLocked()
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()
	notify(snap, subs)

	if stop {
		e.adapter.Stop()
	}
	return nil
}

// SetCurrentIndex points the queue at index and makes that track current
// without loading it.
func (e *Engine) SetCurrentIndex(index int) error {
	e.mu.Lock()
	if !e.state.Queue.InRange(index) {
		n := e.state.Queue.Len()
		e.mu.Unlock()
		return fmt.Errorf("%w: %d for queue of %d", errors.ErrIndexOutOfRange, index, n)
	}
	e.state.Queue.CurrentIndex = index
	t := e.state.Queue.Tracks[index]
	e.state.CurrentSong = &t
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()

	notify(snap, subs)
	return nil
}

// SetQueue replaces the queue contents, clamping the current index into
// range. The current song is left alone.
func (e *Engine) SetQueue(tracks []core.Track) {
	e.update(func(s *core.PlaybackState) {
		idx := s.Queue.CurrentIndex
		s.Queue = core.Queue{Tracks: tracks}.Clone()
		if len(tracks) > 0 {
			s.Queue.CurrentIndex = max(0, min(idx, len(tracks)-1))
		}
	})
}

// SetCurrentSong replaces the current song reference without loading it.
func (e *Engine) SetCurrentSong(track core.Track) {
	e.update(func(s *core.PlaybackState) {
		s.CurrentSong = &track
		s.MiniPlayerVisible = true
	})
}

// ShowMiniPlayer shows the compact player.
func (e *Engine) ShowMiniPlayer() {
	e.update(func(s *core.PlaybackState) { s.MiniPlayerVisible = true })
}

// HideMiniPlayer hides the compact player.
func (e *Engine) HideMiniPlayer() {
	e.update(func(s *core.PlaybackState) { s.MiniPlayerVisible = false })
}

// ShowFullPlayer shows the expanded player.
func (e *Engine) ShowFullPlayer() {
	e.update(func(s *core.PlaybackState) { s.FullPlayerVisible = true })
}

// HideFullPlayer hides the expanded player.
func (e *Engine) HideFullPlayer() {
	e.update(func(s *core.PlaybackState) { s.FullPlayerVisible = false })
}

// Ensure Engine implements core.Player
var _ core.Player = (*Engine)(nil)
