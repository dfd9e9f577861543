package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/tui/styles"
)

// NowPlaying displays the current track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel. The full view adds the album and
// a larger transport line.
func (n *NowPlaying) Render(state *core.PlaybackState, width, height int, focused, full bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		content = styles.Muted.Render("Nothing loaded. Press / to search or pick a playlist")
	} else {
		content = n.renderTrack(state, width-4, full)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(state *core.PlaybackState, width int, full bool) string {
	track := state.CurrentSong

	icon := styles.StatusIcon(string(state.Status()))
	title := styles.Title.Width(max(width-4, 1)).Render(track.Name)
	artist := styles.Subtitle.Render(track.Artist)

	progressWidth := max(width-14, 10) // Account for times on either side
	progressBar := styles.ProgressBar(state.ProgressPercent(), progressWidth)
	progress := fmt.Sprintf("%s %s %s",
		FormatDuration(state.CurrentTime),
		progressBar,
		FormatDuration(state.EffectiveDuration()))

	lines := []string{icon + " " + title, "  " + artist}
	if full && track.Album != "" {
		lines = append(lines, "  "+styles.Dim.Render(track.Album))
	}
	lines = append(lines, "", progress, "", n.renderControls(state))

	if state.LastError != "" {
		lines = append(lines, "", styles.ErrorText.Render(state.LastError))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (n *NowPlaying) renderControls(state *core.PlaybackState) string {
	controls := styles.Dim.Render("⏮ ")

	if state.IsPlaying {
		controls += styles.Playing.Render("⏸")
	} else {
		controls += styles.Paused.Render("▶")
	}

	controls += styles.Dim.Render(" ⏭")
	controls += "   " + styles.RepeatIcon(string(state.RepeatMode))
	controls += " " + styles.ShuffleIcon(state.Shuffle)
	controls += styles.Muted.Render(fmt.Sprintf("  🔊 %d%%", int(state.Volume*100+0.5)))

	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(controls)
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
