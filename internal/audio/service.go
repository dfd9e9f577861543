// Package audio owns the single active audio resource and reports its
// lifecycle as events.
package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/errors"
)

const (
	// DefaultLoadTimeout bounds a whole LoadTrack call, fallbacks included.
	DefaultLoadTimeout = 30 * time.Second

	// DefaultVolume is reported by Volume before anything was loaded.
	DefaultVolume = 0.8
)

// Service wraps a Backend and keeps at most one Resource alive.
type Service struct {
	backend     Backend
	logger      *zap.Logger
	fallback    FallbackPolicy
	loadTimeout time.Duration
	bus         *bus

	mu       sync.Mutex
	resource Resource
	track    *core.Track
	volume   float64
	token    uint64
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithFallback sets the fallback policy.
func WithFallback(p FallbackPolicy) Option {
	return func(s *Service) {
		s.fallback = p
	}
}

// WithLoadTimeout sets the load timeout. Non-positive values keep the default.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithDefaultVolume sets the volume reported while no resource is loaded.
func WithDefaultVolume(v float64) Option {
	return func(s *Service) {
		s.volume = v
	}
}

// New creates a Service on top of backend.
func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend:     backend,
		logger:      zap.NewNop(),
		loadTimeout: DefaultLoadTimeout,
		bus:         newBus(),
		volume:      DefaultVolume,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l for every event. The returned function removes it.
func (s *Service) Subscribe(l Listener) func() {
	return s.bus.subscribe(l)
}

// LoadTrack releases the current resource and opens track's source. It
// blocks until the new resource is ready or every attempt has failed. A
// load overtaken by a newer LoadTrack or Destroy returns ErrLoadSuperseded
// and emits nothing.
func (s *Service) LoadTrack(ctx context.Context, track core.Track) error {
	if track.URL == "" {
		return errors.ErrNoSource
	}

	s.mu.Lock()
	s.token++
	token := s.token
	prev := s.resource
	s.resource = nil
	s.track = &track
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			s.logger.Warn("failed to release audio resource", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	url := NormalizeURL(track.URL)
	hooks := Hooks{OnEnd: func() { s.handleEnd(token) }}

	res, err := s.open(ctx, url, hooks)
	if err != nil {
		if s.stale(token) {
			return errors.ErrLoadSuperseded
		}
		s.logger.Warn("audio load failed",
			zap.String("track", track.Name),
			zap.String("url", url),
			zap.Error(err))

		for _, fb := range s.fallback.candidates(url) {
			if ctx.Err() != nil {
				break
			}
			var fbErr error
			res, fbErr = s.open(ctx, fb, hooks)
			if fbErr == nil {
				s.logger.Info("loaded fallback source",
					zap.String("track", track.Name),
					zap.String("fallback", fb))
				break
			}
			s.logger.Warn("fallback source failed",
				zap.String("fallback", fb),
				zap.Error(fbErr))
		}
	}

	if res == nil {
		if s.stale(token) {
			return errors.ErrLoadSuperseded
		}
		loadErr := fmt.Errorf("%w: %s: %w", errors.ErrLoadFailed, url, err)
		s.bus.emit(Event{Type: EventLoadError, Err: loadErr})
		return loadErr
	}

	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		_ = res.Close()
		return errors.ErrLoadSuperseded
	}
	s.resource = res
	s.mu.Unlock()

	s.logger.Debug("audio loaded",
		zap.String("track", track.Name),
		zap.Duration("duration", res.Duration()))
	s.bus.emit(Event{Type: EventLoaded})
	return nil
}

// open runs Backend.Open but returns as soon as ctx is done. A resource
// that arrives after that is closed.
func (s *Service) open(ctx context.Context, url string, hooks Hooks) (Resource, error) {
	type result struct {
		res Resource
		err error
	}

	src := Source{URL: url, Format: DetectFormat(url), Volume: 1.0}
	ch := make(chan result, 1)
	go func() {
		res, err := s.backend.Open(ctx, src, hooks)
		ch <- result{res: res, err: err}
	}()

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		go func() {
			if late := <-ch; late.res != nil {
				_ = late.res.Close()
			}
		}()
		r.err = ctx.Err()
	}

	if r.err == nil {
		return r.res, nil
	}
	if r.res != nil {
		_ = r.res.Close()
	}
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w after %s", errors.ErrLoadTimeout, s.loadTimeout)
	}
	return nil, r.err
}

func (s *Service) stale(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token != s.token
}

func (s *Service) handleEnd(token uint64) {
	s.mu.Lock()
	live := token == s.token && s.resource != nil
	s.mu.Unlock()

	if live {
		s.bus.emit(Event{Type: EventEnd})
	}
}

func (s *Service) current() Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resource
}

// loaded returns the current resource, logging op as ignored when there
// is none.
func (s *Service) loaded(op string, fields ...zap.Field) Resource {
	res := s.current()
	if res == nil {
		fields = append(fields, zap.String("op", op), zap.Error(errors.ErrNoResource))
		s.logger.Warn("transport ignored", fields...)
	}
	return res
}

// Play starts or resumes playback.
func (s *Service) Play() {
	res := s.loaded("play")
	if res == nil {
		return
	}
	res.Play()
	s.bus.emit(Event{Type: EventPlay})
}

// Pause pauses playback.
func (s *Service) Pause() {
	res := s.loaded("pause")
	if res == nil {
		return
	}
	res.Pause()
	s.bus.emit(Event{Type: EventPause})
}

// Stop halts playback and rewinds.
func (s *Service) Stop() {
	res := s.loaded("stop")
	if res == nil {
		return
	}
	res.Stop()
	s.bus.emit(Event{Type: EventStop})
}

// Seek moves the playback position.
func (s *Service) Seek(position time.Duration) {
	res := s.loaded("seek", zap.Duration("position", position))
	if res == nil {
		return
	}
	res.Seek(position)
	s.bus.emit(Event{Type: EventSeek})
}

// SetVolume forwards v to the resource unchanged. Callers clamp.
func (s *Service) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	res := s.resource
	s.mu.Unlock()

	if res != nil {
		res.SetVolume(v)
	}
	s.bus.emit(Event{Type: EventVolume})
}

// CurrentTime returns the playback position, or 0 with nothing loaded.
func (s *Service) CurrentTime() time.Duration {
	if res := s.current(); res != nil {
		return res.Position()
	}
	return 0
}

// Duration returns the resource length, or 0 with nothing loaded.
func (s *Service) Duration() time.Duration {
	if res := s.current(); res != nil {
		return res.Duration()
	}
	return 0
}

// Volume returns the resource volume, or the last-known volume with
// nothing loaded.
func (s *Service) Volume() float64 {
	s.mu.Lock()
	res, v := s.resource, s.volume
	s.mu.Unlock()

	if res != nil {
		return res.Volume()
	}
	return v
}

// IsPlaying reports the live transport state of the resource.
func (s *Service) IsPlaying() bool {
	res := s.current()
	return res != nil && res.Playing()
}

// IsPaused is true when a loaded resource is not playing.
func (s *Service) IsPaused() bool {
	res := s.current()
	return res != nil && res.Loaded() && !res.Playing()
}

// CurrentTrack returns the track of the most recent LoadTrack.
func (s *Service) CurrentTrack() *core.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.track == nil {
		return nil
	}
	t := *s.track
	return &t
}

// Destroy releases the resource, forgets the current track, and drops all
// subscribers. Pending loads complete as superseded.
func (s *Service) Destroy() {
	s.mu.Lock()
	s.token++
	res := s.resource
	s.resource = nil
	s.track = nil
	s.mu.Unlock()

	if res != nil {
		if err := res.Close(); err != nil {
			s.logger.Warn("failed to release audio resource", zap.Error(err))
		}
	}
	s.bus.clear()
}
