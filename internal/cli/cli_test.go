package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tessro/bhajan/internal/catalog"
	"github.com/tessro/bhajan/internal/config"
)

const testLibrary = `
[[songs]]
id = "s1"
name = "Achyutam Keshavam"
artist = "Vikram Hazra"
url = "https://cdn.example.com/achyutam.mp3"

[[songs]]
id = "s2"
name = "Om Jai Jagdish Hare"
artist = "Anuradha Paudwal"
url = "https://cdn.example.com/om-jai.mp3"

[[songs]]
id = "s3"
name = "Hare Krishna"
artist = "Vikram Hazra"
url = "https://cdn.example.com/hare-krishna.mp3"

[[playlists]]
id = "evening"
name = "Evening"
songs = ["s3", "s1"]
`

func useLibrary(t *testing.T) *catalog.Library {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.toml")
	if err := os.WriteFile(path, []byte(testLibrary), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg = config.Default()
	cfg.Library.Path = path
	t.Cleanup(func() { cfg = nil })

	lib, source, closeSource, err := openLibrary(context.Background(), logger)
	if err != nil {
		t.Fatalf("openLibrary() error = %v", err)
	}
	t.Cleanup(closeSource)
	if lib != source {
		t.Fatal("openLibrary() wrapped the library without a cache configured")
	}
	return lib
}

func TestSelectTracks(t *testing.T) {
	lib := useLibrary(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		playlist string
		artist   string
		query    string
		want     []string
	}{
		{"whole library", "", "", "", []string{"s1", "s2", "s3"}},
		{"playlist by name", "Evening", "", "", []string{"s3", "s1"}},
		{"artist", "", "Vikram Hazra", "", []string{"s1", "s3"}},
		{"search", "", "", "jagdish", []string{"s2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, _, err := selectTracks(ctx, lib, lib, tt.playlist, tt.artist, tt.query)
			if err != nil {
				t.Fatalf("selectTracks() error = %v", err)
			}
			if len(tracks) != len(tt.want) {
				t.Fatalf("got %d tracks, want %d", len(tracks), len(tt.want))
			}
			for i, id := range tt.want {
				if tracks[i].ID != id {
					t.Errorf("tracks[%d] = %s, want %s", i, tracks[i].ID, id)
				}
			}
		})
	}
}

func TestSelectTracksUnknownPlaylist(t *testing.T) {
	lib := useLibrary(t)
	if _, _, err := selectTracks(context.Background(), lib, lib, "nope", "", ""); err == nil {
		t.Error("selectTracks() with unknown playlist returned no error")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    any
		wantErr bool
	}{
		{"defaults.volume", "50", 50, false},
		{"defaults.volume", "loud", nil, true},
		{"library.watch", "yes", true, false},
		{"defaults.shuffle", "no", false, false},
		{"library.path", "/music/lib.toml", "/music/lib.toml", false},
	}

	for _, tt := range tests {
		got, err := parseValue(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseValue(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseValue(%q, %q) = %v, want %v", tt.key, tt.value, got, tt.want)
		}
	}
}
