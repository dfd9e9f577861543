package core

import (
	"context"
	"time"
)

// Player defines the transport and queue surface the presentation layer
// drives. The engine is the only implementation; the TUI and CLI depend on
// this interface.
type Player interface {
	// Playback control
	Play()
	Pause()
	Stop()
	TogglePlay()
	Seek(position time.Duration)
	SkipToNext(ctx context.Context) error
	SkipToPrevious(ctx context.Context) error

	// Volume and modes
	SetVolume(v float64)
	CycleRepeatMode() RepeatMode
	ToggleShuffle() bool

	// Queue manipulation
	LoadPlaylist(ctx context.Context, tracks []Track, startIndex int) error
	AddToQueue(track Track)
	RemoveFromQueue(index int) error

	// State queries
	State() PlaybackState
	Subscribe(fn func(PlaybackState)) (unsubscribe func())
}
