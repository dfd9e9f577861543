//go:build !((linux && cgo) || windows || darwin)

package local

import (
	"context"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/errors"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = false

// Open always fails: this build has no speaker support.
func (b *Backend) Open(ctx context.Context, src audio.Source, hooks audio.Hooks) (audio.Resource, error) {
	return nil, errors.ErrAudioUnavailable
}
