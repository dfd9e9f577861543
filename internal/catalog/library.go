package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/errors"
)

// Library is a Source backed by a TOML file.
type Library struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	tracks    []core.Track
	byID      map[string]core.Track
	playlists []Playlist
	artists   []Artist
	problems  []error
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithLibraryLogger sets the logger.
func WithLibraryLogger(l *zap.Logger) LibraryOption {
	return func(lib *Library) {
		lib.logger = l
	}
}

// OpenLibrary reads the library at path. Invalid records are skipped and
// reported by Problems; only an unreadable or unparsable file is an error.
func OpenLibrary(path string, opts ...LibraryOption) (*Library, error) {
	lib := &Library{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(lib)
	}
	if err := lib.Reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Path returns the library file path.
func (l *Library) Path() string {
	return l.path
}

// Reload rereads the file. On error the previous contents are kept.
func (l *Library) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read library: %w", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	if parsed.HasErrors() {
		l.logger.Warn("library has invalid records",
			zap.String("path", l.path),
			zap.Int("count", len(parsed.Errors)),
			zap.Error(parsed.Err()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracks = parsed.Data.Tracks
	l.byID = lo.KeyBy(parsed.Data.Tracks, func(t core.Track) string { return t.ID })
	l.playlists = parsed.Data.Playlists
	l.artists = parsed.Data.Artists
	l.problems = parsed.Errors

	l.logger.Debug("library loaded",
		zap.String("path", l.path),
		zap.Int("tracks", len(l.tracks)),
		zap.Int("playlists", len(l.playlists)))
	return nil
}

// Contents is a parsed library.
type Contents struct {
	Tracks    []core.Track
	Playlists []Playlist
	Artists   []Artist
}

// Parse decodes library TOML. Records that fail validation are left out
// and collected in the result's errors.
func Parse(data []byte) (*errors.PartialResult[Contents], error) {
	var file libraryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}

	result := &errors.PartialResult[Contents]{}
	seen := make(map[string]bool)

	for i, rec := range file.Songs {
		track, err := mapSong(i, rec)
		if err != nil {
			result.AddError(err)
			continue
		}
		if seen[track.ID] {
			result.AddError(&RecordError{Kind: "song", Index: i, Field: "id", Msg: fmt.Sprintf("duplicate %q", track.ID)})
			continue
		}
		seen[track.ID] = true
		result.Data.Tracks = append(result.Data.Tracks, track)
	}

	for i, rec := range file.Playlists {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			result.AddError(&RecordError{Kind: "playlist", Index: i, Field: "name", Msg: "missing"})
			continue
		}
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			id = stableID(name, "")
		}

		ids := make([]string, 0, len(rec.Songs))
		for _, ref := range rec.Songs {
			if !seen[ref] {
				result.AddError(&RecordError{Kind: "playlist", Index: i, Field: "songs", Msg: fmt.Sprintf("unknown song %q", ref)})
				continue
			}
			ids = append(ids, ref)
		}

		result.Data.Playlists = append(result.Data.Playlists, Playlist{
			ID:          id,
			Name:        name,
			Description: strings.TrimSpace(rec.Description),
			TrackIDs:    ids,
		})
	}

	for i, rec := range file.Artists {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			result.AddError(&RecordError{Kind: "artist", Index: i, Field: "name", Msg: "missing"})
			continue
		}
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			id = stableID(name, "")
		}
		result.Data.Artists = append(result.Data.Artists, Artist{ID: id, Name: name})
	}

	return result, nil
}

// Problems returns the records skipped at the last successful load.
func (l *Library) Problems() []error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]error(nil), l.problems...)
}

// Tracks returns every valid track.
func (l *Library) Tracks() []core.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Track(nil), l.tracks...)
}

// Track returns a track by ID.
func (l *Library) Track(id string) (core.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.byID[id]
	if !ok {
		return core.Track{}, fmt.Errorf("%w: %s", errors.ErrTrackNotFound, id)
	}
	return t, nil
}

// Artists returns every artist record.
func (l *Library) Artists() []Artist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Artist(nil), l.artists...)
}

// Playlists implements Source.
func (l *Library) Playlists(ctx context.Context) ([]Playlist, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Playlist(nil), l.playlists...), nil
}

// PlaylistTracks implements Source. The id may also be a playlist name.
func (l *Library) PlaylistTracks(ctx context.Context, id string) ([]core.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := lo.Find(l.playlists, func(p Playlist) bool {
		return p.ID == id || strings.EqualFold(p.Name, id)
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrPlaylistNotFound, id)
	}

	return lo.FilterMap(p.TrackIDs, func(tid string, _ int) (core.Track, bool) {
		t, ok := l.byID[tid]
		return t, ok
	}), nil
}

// ArtistTracks implements Source. The id may be an artist ID or a name.
func (l *Library) ArtistTracks(ctx context.Context, id string) ([]core.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	name := id
	if a, ok := lo.Find(l.artists, func(a Artist) bool { return a.ID == id }); ok {
		name = a.Name
	}

	return lo.Filter(l.tracks, func(t core.Track, _ int) bool {
		return lo.ContainsBy(splitArtists(t.Artist), func(a string) bool {
			return strings.EqualFold(a, name)
		})
	}), nil
}

// Search implements Source. Every whitespace separated term must match the
// name, artist or album, case-insensitively.
func (l *Library) Search(ctx context.Context, query string) ([]core.Track, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Filter(l.tracks, func(t core.Track, _ int) bool {
		haystack := strings.ToLower(t.Name + " " + t.Artist + " " + t.Album)
		return lo.EveryBy(terms, func(term string) bool {
			return strings.Contains(haystack, term)
		})
	}), nil
}

// Ensure Library implements Source
var _ Source = (*Library)(nil)
