package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tessro/bhajan/internal/errors"
)

const sampleLibrary = `
[[songs]]
id = "s1"
name = "Achyutam Keshavam"
artist = "Vikram Hazra, Art of Living"
album = "Bhajans Vol. 1"
url = "https://cdn.example.com/Achyutam+Keshavam.mp3"
duration = "5:12"

[[songs]]
id = "s2"
title = "Om Jai Jagdish Hare"
artist = "Anuradha Paudwal"
url = "s3://media/aarti/om-jai-jagdish.mp3"
duration = 421

[[songs]]
name = "Raghupati Raghav"
artist = "Anup Jalota,  Anup Jalota"
url = "/music/raghupati.flac"
duration = "1:02:03"

[[songs]]
id = "bad-duration"
name = "Broken"
duration = "five minutes"

[[songs]]
artist = "Nobody"

[[playlists]]
id = "morning"
name = "Morning Aarti"
songs = ["s2", "s1", "missing"]

[[playlists]]
description = "no name"

[[artists]]
id = "anup"
name = "Anup Jalota"
`

func writeLibrary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	result, err := Parse([]byte(sampleLibrary))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := len(result.Data.Tracks); got != 3 {
		t.Fatalf("tracks = %d, want 3", got)
	}
	// broken duration, missing name, missing playlist song, unnamed playlist
	if got := len(result.Errors); got != 4 {
		t.Errorf("errors = %d, want 4: %v", got, result.Err())
	}

	first := result.Data.Tracks[0]
	if first.Duration != 5*time.Minute+12*time.Second {
		t.Errorf("duration = %v, want 5m12s", first.Duration)
	}
	if first.Artist != "Vikram Hazra, Art of Living" {
		t.Errorf("artist = %q", first.Artist)
	}
	if first.URL != "https://cdn.example.com/Achyutam+Keshavam.mp3" {
		t.Errorf("url = %q, want it unchanged", first.URL)
	}

	second := result.Data.Tracks[1]
	if second.Name != "Om Jai Jagdish Hare" {
		t.Errorf("title fallback: name = %q", second.Name)
	}
	if second.Duration != 421*time.Second {
		t.Errorf("duration = %v, want 421s", second.Duration)
	}

	third := result.Data.Tracks[2]
	if third.ID == "" {
		t.Error("missing ID not generated")
	}
	if third.Artist != "Anup Jalota" {
		t.Errorf("artist = %q, want duplicates removed", third.Artist)
	}
	if third.Duration != time.Hour+2*time.Minute+3*time.Second {
		t.Errorf("duration = %v, want 1h2m3s", third.Duration)
	}

	again, _ := Parse([]byte(sampleLibrary))
	if again.Data.Tracks[2].ID != third.ID {
		t.Error("generated ID is not stable across parses")
	}

	if len(result.Data.Playlists) != 1 {
		t.Fatalf("playlists = %d, want 1", len(result.Data.Playlists))
	}
	if got := result.Data.Playlists[0].TrackIDs; len(got) != 2 || got[0] != "s2" {
		t.Errorf("playlist tracks = %v, want [s2 s1]", got)
	}
}

func TestParseInvalidTOML(t *testing.T) {
	if _, err := Parse([]byte("[[songs]\nname=")); err == nil {
		t.Error("Parse() error = nil, want syntax error")
	}
}

func TestParseDuplicateID(t *testing.T) {
	result, err := Parse([]byte(`
[[songs]]
id = "x"
name = "One"
[[songs]]
id = "x"
name = "Two"
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(result.Data.Tracks) != 1 || len(result.Errors) != 1 {
		t.Errorf("tracks=%d errors=%d, want 1 and 1", len(result.Data.Tracks), len(result.Errors))
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      any
		want    time.Duration
		wantErr bool
	}{
		{nil, 0, false},
		{"", 0, false},
		{"3:45", 3*time.Minute + 45*time.Second, false},
		{"0:07", 7 * time.Second, false},
		{"1:00:00", time.Hour, false},
		{"90", 90 * time.Second, false},
		{"4m30s", 4*time.Minute + 30*time.Second, false},
		{int64(60), time.Minute, false},
		{2.5, 2500 * time.Millisecond, false},
		{"3:75", 0, true},
		{"1:2:3:4", 0, true},
		{"abc", 0, true},
		{int64(-1), 0, true},
		{true, 0, true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLibrarySource(t *testing.T) {
	lib, err := OpenLibrary(writeLibrary(t, sampleLibrary))
	if err != nil {
		t.Fatalf("OpenLibrary() error = %v", err)
	}
	ctx := context.Background()

	if got := len(lib.Problems()); got != 4 {
		t.Errorf("Problems() = %d, want 4", got)
	}

	tracks, err := lib.PlaylistTracks(ctx, "morning")
	if err != nil {
		t.Fatalf("PlaylistTracks() error = %v", err)
	}
	if len(tracks) != 2 || tracks[0].ID != "s2" || tracks[1].ID != "s1" {
		t.Errorf("PlaylistTracks() = %v, want s2, s1", tracks)
	}

	byName, err := lib.PlaylistTracks(ctx, "morning aarti")
	if err != nil || len(byName) != 2 {
		t.Errorf("PlaylistTracks(by name) = %v, %v", byName, err)
	}

	if _, err := lib.PlaylistTracks(ctx, "evening"); !errors.Is(err, errors.ErrPlaylistNotFound) {
		t.Errorf("PlaylistTracks(unknown) error = %v, want ErrPlaylistNotFound", err)
	}

	artist, _ := lib.ArtistTracks(ctx, "anup")
	if len(artist) != 1 || artist[0].Name != "Raghupati Raghav" {
		t.Errorf("ArtistTracks(anup) = %v", artist)
	}
	byArtistName, _ := lib.ArtistTracks(ctx, "vikram hazra")
	if len(byArtistName) != 1 {
		t.Errorf("ArtistTracks(name) = %v, want 1 track", byArtistName)
	}

	playlists, _ := lib.Playlists(ctx)
	if len(playlists) != 1 || playlists[0].Name != "Morning Aarti" {
		t.Errorf("Playlists() = %v", playlists)
	}

	if _, err := lib.Track("s1"); err != nil {
		t.Errorf("Track(s1) error = %v", err)
	}
	if _, err := lib.Track("nope"); !errors.Is(err, errors.ErrTrackNotFound) {
		t.Errorf("Track(nope) error = %v, want ErrTrackNotFound", err)
	}
}

func TestLibrarySearch(t *testing.T) {
	lib, err := OpenLibrary(writeLibrary(t, sampleLibrary))
	if err != nil {
		t.Fatalf("OpenLibrary() error = %v", err)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"achyutam", 1},
		{"ANUP", 1},
		{"bhajans vol", 1},
		{"jai hare", 1},
		{"jai keshavam", 0},
		{"  ", 0},
		{"a", 3},
	}

	for _, tt := range tests {
		got, err := lib.Search(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q) = %d results, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestLibraryReloadKeepsContentsOnError(t *testing.T) {
	path := writeLibrary(t, sampleLibrary)
	lib, err := OpenLibrary(path)
	if err != nil {
		t.Fatalf("OpenLibrary() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("not = [valid"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := lib.Reload(); err == nil {
		t.Error("Reload() error = nil, want parse error")
	}
	if got := len(lib.Tracks()); got != 3 {
		t.Errorf("tracks after failed reload = %d, want 3", got)
	}
}

func TestOpenLibraryMissingFile(t *testing.T) {
	if _, err := OpenLibrary(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Error("OpenLibrary() error = nil, want error")
	}
}
