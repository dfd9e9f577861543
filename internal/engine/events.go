package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/core"
)

// handleEvent folds adapter events into state. Play and pause flags only
// ever change here.
func (e *Engine) handleEvent(ev audio.Event) {
	switch ev.Type {
	case audio.EventLoaded:
		e.update(func(s *core.PlaybackState) {
			if e.loadStaleLocked() {
				return
			}
			s.IsLoading = false
		})

	case audio.EventLoadError:
		e.update(func(s *core.PlaybackState) {
			if e.loadStaleLocked() {
				return
			}
			s.IsLoading = false
			if ev.Err != nil {
				s.LastError = ev.Err.Error()
			}
		})

	case audio.EventPlay:
		e.update(func(s *core.PlaybackState) {
			s.IsPlaying = true
			s.IsPaused = false
		})

	case audio.EventPause:
		pos := e.adapter.CurrentTime()
		e.update(func(s *core.PlaybackState) {
			s.IsPlaying = false
			s.IsPaused = true
			s.CurrentTime = pos
		})

	case audio.EventStop:
		e.update(func(s *core.PlaybackState) {
			s.IsPlaying = false
			s.IsPaused = false
			s.CurrentTime = 0
		})

	case audio.EventSeek:
		pos := e.adapter.CurrentTime()
		e.update(func(s *core.PlaybackState) {
			s.CurrentTime = pos
		})

	case audio.EventVolume:
		v := clampVolume(e.adapter.Volume())
		e.update(func(s *core.PlaybackState) {
			s.Volume = v
		})

	case audio.EventEnd:
		e.handleEnd()
	}
}

// handleEnd applies the repeat mode when a track plays to completion.
func (e *Engine) handleEnd() {
	e.mu.Lock()
	mode := e.state.RepeatMode
	e.mu.Unlock()

	switch mode {
	case core.RepeatOne:
		e.adapter.Seek(0)
		e.adapter.Play()

	case core.RepeatAll:
		if err := e.SkipToNext(context.Background()); err != nil {
			e.logger.Warn("auto-advance failed", zap.Error(err))
			return
		}
		e.adapter.Play()

	default:
		e.update(func(s *core.PlaybackState) {
			s.IsPlaying = false
			s.IsPaused = false
		})
	}
}

// syncPollLocked runs the position poller exactly while playing.
func (e *Engine) syncPollLocked() {
	if e.state.IsPlaying && !e.closed {
		e.startPollLocked()
	} else {
		e.stopPollLocked()
	}
}

func (e *Engine) startPollLocked() {
	if e.pollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.pollCancel = cancel
	go e.poll(ctx)
}

func (e *Engine) stopPollLocked() {
	if e.pollCancel != nil {
		e.pollCancel()
		e.pollCancel = nil
	}
}

func (e *Engine) polling() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pollCancel != nil
}

func (e *Engine) poll(ctx context.Context) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sample(ctx)
		}
	}
}

// sample copies the adapter position into state when it moved.
func (e *Engine) sample(ctx context.Context) {
	if !e.adapter.IsPlaying() {
		return
	}
	pos := e.adapter.CurrentTime()

	e.mu.Lock()
	if ctx.Err() != nil || !e.state.IsPlaying || e.state.CurrentTime == pos {
		e.mu.Unlock()
		return
	}
	e.state.CurrentTime = pos
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()

	notify(snap, subs)
}
