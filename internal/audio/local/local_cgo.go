//go:build (linux && cgo) || windows || darwin

package local

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/errors"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// The speaker is process-wide and can only be initialized once.
var (
	speakerOnce sync.Once
	speakerErr  error
	speakerRate beep.SampleRate
)

func (b *Backend) initSpeaker() (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = beep.SampleRate(b.sampleRate)
		speakerErr = speaker.Init(speakerRate, speakerRate.N(b.buffer))
	})
	return speakerRate, speakerErr
}

// Open implements audio.Backend. The whole file is buffered in memory so
// the stream can seek regardless of where it came from.
func (b *Backend) Open(ctx context.Context, src audio.Source, hooks audio.Hooks) (audio.Resource, error) {
	rc, size, err := b.opener.Open(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.URL, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := src.Format
	if format == audio.FormatUnknown {
		format = Sniff(data)
	}

	b.logger.Debug("media buffered",
		zap.String("url", src.URL),
		zap.String("format", format.String()),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
		zap.Int64("reported_size", size))

	streamer, sf, err := decode(format, data)
	if err != nil {
		return nil, err
	}

	rate, err := b.initSpeaker()
	if err != nil {
		_ = streamer.Close()
		return nil, fmt.Errorf("%w: %w", errors.ErrAudioUnavailable, err)
	}

	r := &resource{
		streamer: streamer,
		format:   sf,
		onEnd:    hooks.OnEnd,
	}
	r.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(4, sf.SampleRate, rate, streamer),
		Paused:   true,
	}
	r.vol = &effects.Volume{Streamer: r.ctrl, Base: 2}
	r.setVolumeLocked(src.Volume)
	r.enqueue()

	return r, nil
}

func decode(format audio.Format, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	reader := bytes.NewReader(data)

	switch format {
	case audio.FormatMP3:
		return mp3.Decode(io.NopCloser(reader))
	case audio.FormatWAV:
		return wav.Decode(reader)
	case audio.FormatFLAC:
		return flac.Decode(reader)
	case audio.FormatOGG:
		return vorbis.Decode(io.NopCloser(reader))
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, format)
	}
}

// resource is one decoded track attached to the speaker mixer.
type resource struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	volume   float64
	onEnd    func()
	finished bool
	closed   bool
}

// enqueue hands the stream to the speaker. The callback runs on the
// speaker goroutine with its lock held, so the end handling is deferred.
func (r *resource) enqueue() {
	speaker.Play(beep.Seq(r.vol, beep.Callback(func() {
		go r.finish()
	})))
}

func (r *resource) finish() {
	r.mu.Lock()
	if r.closed || r.finished {
		r.mu.Unlock()
		return
	}
	r.finished = true
	onEnd := r.onEnd
	r.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
}

func (r *resource) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if r.finished {
		speaker.Lock()
		if r.streamer.Position() >= r.streamer.Len() {
			_ = r.streamer.Seek(0)
		}
		r.ctrl.Paused = false
		speaker.Unlock()
		r.finished = false
		r.enqueue()
		return
	}

	speaker.Lock()
	r.ctrl.Paused = false
	speaker.Unlock()
}

func (r *resource) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	r.ctrl.Paused = true
	speaker.Unlock()
}

func (r *resource) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	r.ctrl.Paused = true
	_ = r.streamer.Seek(0)
	speaker.Unlock()
}

func (r *resource) Seek(position time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()

	n := r.format.SampleRate.N(position)
	n = max(0, min(n, r.streamer.Len()-1))
	_ = r.streamer.Seek(n)
}

func (r *resource) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	r.setVolumeLocked(v)
	speaker.Unlock()
}

// setVolumeLocked maps a linear 0..1 level onto the base-2 volume effect.
func (r *resource) setVolumeLocked(v float64) {
	r.volume = v
	r.vol.Silent = v <= 0
	if v > 0 {
		r.vol.Volume = math.Log2(v)
	}
}

func (r *resource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	speaker.Lock()
	pos := r.streamer.Position()
	speaker.Unlock()
	return r.format.SampleRate.D(pos)
}

func (r *resource) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	return r.format.SampleRate.D(r.streamer.Len())
}

func (r *resource) Volume() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

func (r *resource) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.finished {
		return false
	}
	speaker.Lock()
	playing := !r.ctrl.Paused
	speaker.Unlock()
	return playing
}

func (r *resource) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Close detaches the stream from the mixer and releases the decoder.
func (r *resource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	speaker.Lock()
	r.ctrl.Paused = true
	r.ctrl.Streamer = nil
	speaker.Unlock()

	return r.streamer.Close()
}
