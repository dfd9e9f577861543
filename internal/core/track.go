package core

import (
	"fmt"
	"time"
)

// Track represents a playable audio item.
type Track struct {
	ID         string        `json:"id" toml:"id"`
	Name       string        `json:"name" toml:"name"`
	Artist     string        `json:"artist" toml:"artist"`
	Album      string        `json:"album,omitempty" toml:"album"`
	URL        string        `json:"url" toml:"url"`
	ArtworkURL string        `json:"artwork_url,omitempty" toml:"artwork_url"`
	Duration   time.Duration `json:"duration" toml:"duration"`
}

// HasSource returns true if the track has a URL to load from.
func (t *Track) HasSource() bool {
	return t != nil && t.URL != ""
}

// String returns "Name — Artist", or just the name when the artist is unknown.
func (t Track) String() string {
	if t.Artist == "" {
		return t.Name
	}
	return fmt.Sprintf("%s — %s", t.Name, t.Artist)
}
