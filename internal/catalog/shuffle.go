package catalog

import (
	"github.com/samber/lo/mutable"

	"github.com/tessro/bhajan/internal/core"
)

// Shuffled returns a shuffled copy of tracks. The input is not modified.
func Shuffled(tracks []core.Track) []core.Track {
	out := append([]core.Track(nil), tracks...)
	mutable.Shuffle(out)
	return out
}

// ShuffledFrom returns a shuffled copy with tracks[start] moved to the
// front, so a chosen track still plays first.
func ShuffledFrom(tracks []core.Track, start int) []core.Track {
	if start < 0 || start >= len(tracks) {
		return Shuffled(tracks)
	}
	rest := make([]core.Track, 0, len(tracks)-1)
	rest = append(rest, tracks[:start]...)
	rest = append(rest, tracks[start+1:]...)
	return append([]core.Track{tracks[start]}, Shuffled(rest)...)
}
