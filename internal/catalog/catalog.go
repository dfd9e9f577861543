// Package catalog supplies tracks and playlists to the player. The core
// only ever sees typed core.Track values; the loosely typed records of the
// library file are mapped and validated here.
package catalog

import (
	"context"

	"github.com/tessro/bhajan/internal/core"
)

// Playlist is a named, ordered list of track IDs.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TrackIDs    []string `json:"track_ids"`
}

// Artist is a performer that tracks can be grouped by.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Source is the read side of a music library.
type Source interface {
	// PlaylistTracks returns the tracks of a playlist in order.
	PlaylistTracks(ctx context.Context, id string) ([]core.Track, error)

	// ArtistTracks returns every track credited to the artist.
	ArtistTracks(ctx context.Context, id string) ([]core.Track, error)

	// Search matches query against track names, artists and albums.
	Search(ctx context.Context, query string) ([]core.Track, error)

	// Playlists lists all playlists.
	Playlists(ctx context.Context) ([]Playlist, error)
}
