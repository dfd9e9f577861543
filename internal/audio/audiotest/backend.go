// Package audiotest provides an in-memory audio.Backend for tests.
package audiotest

import (
	"context"
	"sync"
	"time"

	"github.com/tessro/bhajan/internal/audio"
)

// DefaultDuration is the length of every fake resource unless overridden.
const DefaultDuration = 3 * time.Minute

// Backend is a scriptable audio.Backend. URLs can be set to fail or to
// block until released; everything else opens instantly.
type Backend struct {
	mu        sync.Mutex
	failures  map[string]error
	gates     map[string]chan struct{}
	opened    []audio.Source
	resources []*Resource
	duration  time.Duration
}

// NewBackend creates an empty fake backend.
func NewBackend() *Backend {
	return &Backend{
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
		duration: DefaultDuration,
	}
}

// SetDuration changes the length of resources opened afterwards.
func (b *Backend) SetDuration(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duration = d
}

// Fail makes every Open of url return err.
func (b *Backend) Fail(url string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[url] = err
}

// Block makes the next Open of url wait until release is called or the
// context ends.
func (b *Backend) Block(url string) (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gates[url] = gate
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Opened returns every URL passed to Open, in order.
func (b *Backend) Opened() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	urls := make([]string, len(b.opened))
	for i, src := range b.opened {
		urls[i] = src.URL
	}
	return urls
}

// Sources returns every Source passed to Open, in order.
func (b *Backend) Sources() []audio.Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]audio.Source, len(b.opened))
	copy(out, b.opened)
	return out
}

// Resources returns every resource created so far.
func (b *Backend) Resources() []*Resource {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Resource, len(b.resources))
	copy(out, b.resources)
	return out
}

// Last returns the most recently created resource, or nil.
func (b *Backend) Last() *Resource {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.resources) == 0 {
		return nil
	}
	return b.resources[len(b.resources)-1]
}

// Live counts resources that have not been closed.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.resources {
		if !r.Closed() {
			n++
		}
	}
	return n
}

// Open implements audio.Backend.
func (b *Backend) Open(ctx context.Context, src audio.Source, hooks audio.Hooks) (audio.Resource, error) {
	b.mu.Lock()
	b.opened = append(b.opened, src)
	gate := b.gates[src.URL]
	delete(b.gates, src.URL)
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.failures[src.URL]; err != nil {
		return nil, err
	}

	r := &Resource{
		src:      src,
		hooks:    hooks,
		volume:   src.Volume,
		duration: b.duration,
	}
	b.resources = append(b.resources, r)
	return r, nil
}

// Resource is a fake audio.Resource with a manually driven clock.
type Resource struct {
	mu       sync.Mutex
	src      audio.Source
	hooks    audio.Hooks
	playing  bool
	closed   bool
	position time.Duration
	duration time.Duration
	volume   float64
}

// URL returns the source URL the resource was opened with.
func (r *Resource) URL() string {
	return r.src.URL
}

// Format returns the format hint the resource was opened with.
func (r *Resource) Format() audio.Format {
	return r.src.Format
}

// Advance moves the position forward by d, capped at the duration.
func (r *Resource) Advance(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = min(r.position+d, r.duration)
}

// Finish plays the resource to its end and fires the end hook.
func (r *Resource) Finish() {
	r.mu.Lock()
	r.playing = false
	r.position = r.duration
	onEnd := r.hooks.OnEnd
	r.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
}

// Closed reports whether Close was called.
func (r *Resource) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Resource) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.position >= r.duration {
		r.position = 0
	}
	r.playing = true
}

func (r *Resource) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
}

func (r *Resource) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
	r.position = 0
}

func (r *Resource) Seek(position time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = max(0, min(position, r.duration))
}

func (r *Resource) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volume = v
}

func (r *Resource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

func (r *Resource) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

func (r *Resource) Volume() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

func (r *Resource) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

func (r *Resource) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *Resource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
	r.closed = true
	return nil
}

// Ensure the fakes implement the audio interfaces
var (
	_ audio.Backend  = (*Backend)(nil)
	_ audio.Resource = (*Resource)(nil)
)
