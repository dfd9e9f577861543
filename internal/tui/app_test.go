package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/audio/audiotest"
	"github.com/tessro/bhajan/internal/catalog"
	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/engine"
)

type stubSource struct {
	tracks []core.Track
}

func (s stubSource) PlaylistTracks(ctx context.Context, id string) ([]core.Track, error) {
	return s.tracks, nil
}

func (s stubSource) ArtistTracks(ctx context.Context, id string) ([]core.Track, error) {
	return s.tracks, nil
}

func (s stubSource) Search(ctx context.Context, query string) ([]core.Track, error) {
	return s.tracks, nil
}

func (s stubSource) Playlists(ctx context.Context) ([]catalog.Playlist, error) {
	return []catalog.Playlist{{ID: "p1", Name: "Evening Aarti"}}, nil
}

func testTracks(n int) []core.Track {
	tracks := make([]core.Track, n)
	for i := range tracks {
		tracks[i] = core.Track{
			ID:       fmt.Sprintf("t%d", i),
			Name:     fmt.Sprintf("Bhajan %d", i),
			Artist:   "Hari Om Sharan",
			URL:      fmt.Sprintf("https://cdn.example.com/%d.mp3", i),
			Duration: 3 * time.Minute,
		}
	}
	return tracks
}

func newTestModel(t *testing.T) (Model, *engine.Engine) {
	t.Helper()
	svc := audio.New(audiotest.NewBackend())
	e := engine.New(svc)
	t.Cleanup(func() {
		e.Close()
		svc.Destroy()
	})
	return NewModel(NewApp(e, stubSource{tracks: testTracks(3)}, time.Second)), e
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	return next.(Model), cmd
}

func TestModeKeys(t *testing.T) {
	m, e := newTestModel(t)

	m, _ = press(t, m, "s")
	if !e.State().Shuffle {
		t.Error("s did not enable shuffle")
	}

	m, _ = press(t, m, "r")
	if got := e.State().RepeatMode; got != core.RepeatOne {
		t.Errorf("RepeatMode after r = %s, want one", got)
	}

	m.state = e.State()
	_, _ = press(t, m, "-")
	if got, want := e.State().Volume, engine.DefaultVolume-volumeStep; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Volume after - = %v, want %v", got, want)
	}
}

func TestTabCyclesPanels(t *testing.T) {
	m, _ := newTestModel(t)

	want := []Panel{PanelQueue, PanelPlaylists, PanelHistory, PanelNowPlaying}
	for _, p := range want {
		m, _ = press(t, m, "tab")
		if m.focusedPanel != p {
			t.Fatalf("focusedPanel = %d, want %d", m.focusedPanel, p)
		}
	}
}

func TestPlaylistEnterLoadsAndPlays(t *testing.T) {
	m, e := newTestModel(t)

	next, _ := m.Update(playlistsMsg{{ID: "p1", Name: "Evening Aarti"}})
	m = next.(Model)
	m.focusedPanel = PanelPlaylists

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter on playlist returned no command")
	}
	msg := cmd()
	if got, ok := msg.(playlistLoadedMsg); !ok || string(got) != "p1" {
		t.Fatalf("command returned %#v, want playlistLoadedMsg(p1)", msg)
	}

	state := e.State()
	if state.Queue.Len() != 3 {
		t.Errorf("queue length = %d, want 3", state.Queue.Len())
	}
	if !state.IsPlaying {
		t.Error("playlist did not start playing")
	}
}

func TestApplyStateRecordsHistory(t *testing.T) {
	m, _ := newTestModel(t)
	tracks := testTracks(2)

	first := core.PlaybackState{CurrentSong: &tracks[0], CurrentTime: 10 * time.Second}
	m.applyState(first)
	m.applyState(first)

	second := core.PlaybackState{CurrentSong: &tracks[1]}
	m.applyState(second)

	entries := m.historyView.Entries()
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
	if entries[0].Track.ID != "t1" {
		t.Errorf("newest entry = %s, want t1", entries[0].Track.ID)
	}
	if !entries[1].Skipped {
		t.Error("track left at 10s of 3m should be marked skipped")
	}
}

func TestQueueRemoveKey(t *testing.T) {
	m, e := newTestModel(t)
	if err := e.LoadPlaylist(context.Background(), testTracks(3), 0); err != nil {
		t.Fatal(err)
	}
	m.state = e.State()
	m.focusedPanel = PanelQueue

	m, _ = press(t, m, "j")
	_, _ = press(t, m, "d")

	if got := e.State().Queue.Len(); got != 2 {
		t.Errorf("queue length after d = %d, want 2", got)
	}
}

func TestViewRendersPanels(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	if view := m.View(); view == "" || view == "Loading..." {
		t.Errorf("View() = %q, want rendered panels", view)
	}
}
