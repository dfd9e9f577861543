package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tessro/bhajan/internal/core"
)

// libraryFile is the on-disk layout. Records are checked by the mappers
// below before anything reaches the player.
type libraryFile struct {
	Songs     []songRecord     `toml:"songs"`
	Playlists []playlistRecord `toml:"playlists"`
	Artists   []artistRecord   `toml:"artists"`
}

type songRecord struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Title    string `toml:"title"`
	Artist   string `toml:"artist"`
	Album    string `toml:"album"`
	URL      string `toml:"url"`
	Artwork  string `toml:"artwork"`
	Duration any    `toml:"duration"`
}

type playlistRecord struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Songs       []string `toml:"songs"`
}

type artistRecord struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// RecordError describes a library record that could not be used.
type RecordError struct {
	Kind  string
	Index int
	Field string
	Msg   string
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s #%d: %s", e.Kind, e.Index+1, e.Msg)
	}
	return fmt.Sprintf("%s #%d: %s: %s", e.Kind, e.Index+1, e.Field, e.Msg)
}

// mapSong validates a song record and converts it to a Track.
func mapSong(i int, rec songRecord) (core.Track, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = strings.TrimSpace(rec.Title)
	}
	if name == "" {
		return core.Track{}, &RecordError{Kind: "song", Index: i, Field: "name", Msg: "missing"}
	}

	rawURL := strings.TrimSpace(rec.URL)
	if rawURL != "" {
		if _, err := url.Parse(rawURL); err != nil {
			return core.Track{}, &RecordError{Kind: "song", Index: i, Field: "url", Msg: err.Error()}
		}
	}

	dur, err := parseDuration(rec.Duration)
	if err != nil {
		return core.Track{}, &RecordError{Kind: "song", Index: i, Field: "duration", Msg: err.Error()}
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = stableID(name, rawURL)
	}

	return core.Track{
		ID:         id,
		Name:       name,
		Artist:     strings.Join(splitArtists(rec.Artist), ", "),
		Album:      strings.TrimSpace(rec.Album),
		URL:        rawURL,
		ArtworkURL: strings.TrimSpace(rec.Artwork),
		Duration:   dur,
	}, nil
}

// stableID derives an ID that survives reloads of an unchanged record.
func stableID(name, rawURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name+"\x00"+rawURL)).String()
}

// splitArtists splits a comma separated credit line.
func splitArtists(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Uniq(lo.Compact(parts))
}

// parseDuration accepts "m:ss", "h:mm:ss", Go duration strings, or a
// number of seconds.
func parseDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case int64:
		if d < 0 {
			return 0, fmt.Errorf("negative: %d", d)
		}
		return time.Duration(d) * time.Second, nil
	case float64:
		if d < 0 {
			return 0, fmt.Errorf("negative: %v", d)
		}
		return time.Duration(d * float64(time.Second)), nil
	case string:
		return parseClock(strings.TrimSpace(d))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func parseClock(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ":") {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + time.Duration(n)
	}
	return total * time.Second, nil
}
