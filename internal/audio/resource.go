package audio

import (
	"context"
	"time"
)

// Resource is one decodable audio handle bound to a single source.
type Resource interface {
	Play()
	Pause()
	Stop()
	Seek(position time.Duration)
	SetVolume(v float64)
	Position() time.Duration
	Duration() time.Duration
	Volume() float64
	Playing() bool
	Loaded() bool
	Close() error
}

// Source describes what a Backend should open.
type Source struct {
	URL    string
	Format Format
	Volume float64
}

// Hooks are callbacks a Backend invokes on its own goroutines.
type Hooks struct {
	// OnEnd fires when the resource reaches the end of its content.
	OnEnd func()
}

// Backend creates resources. Open blocks until the resource is ready to
// play or has failed.
type Backend interface {
	Open(ctx context.Context, src Source, hooks Hooks) (Resource, error)
}
