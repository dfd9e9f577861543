// Package local plays audio on this machine through the beep speaker.
package local

import (
	"time"

	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/media"
)

// Backend fetches media with an Opener, decodes it in memory and plays it
// through the system speaker.
type Backend struct {
	opener     media.Opener
	sampleRate int
	buffer     time.Duration
	logger     *zap.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithSampleRate sets the speaker sample rate.
func WithSampleRate(hz int) Option {
	return func(b *Backend) {
		if hz > 0 {
			b.sampleRate = hz
		}
	}
}

// WithBuffer sets the speaker buffer length.
func WithBuffer(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.buffer = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// New creates a Backend reading media through opener.
func New(opener media.Opener, opts ...Option) *Backend {
	b := &Backend{
		opener:     opener,
		sampleRate: 44100,
		buffer:     100 * time.Millisecond,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ensure Backend implements audio.Backend
var _ audio.Backend = (*Backend)(nil)
