package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/tui/styles"
)

// HistoryEntry is a track that was current during this session
type HistoryEntry struct {
	Track    core.Track
	PlayedAt time.Time
	Skipped  bool
}

// maxHistory bounds the session history
const maxHistory = 50

// History displays tracks from this session, newest first
type History struct {
	entries []HistoryEntry
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Record adds track to the front of the history. The previous entry is
// marked skipped when it was left before finishing.
func (h *History) Record(track core.Track, previousSkipped bool) {
	if len(h.entries) > 0 {
		h.entries[0].Skipped = previousSkipped
	}
	h.entries = append([]HistoryEntry{{Track: track, PlayedAt: time.Now()}}, h.entries...)
	if len(h.entries) > maxHistory {
		h.entries = h.entries[:maxHistory]
	}
}

// Entries returns the recorded entries, newest first
func (h *History) Entries() []HistoryEntry {
	return h.entries
}

// Render renders the history panel
func (h *History) Render(width, height int, focused bool) string {
	entries := h.entries
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
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

func (h *History) renderHistory(entries []HistoryEntry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	// Fixed overhead: icon (2) + " " (1) + " — " (3) + padding for time (8)
	const overhead = 14

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		track := entry.Track

		// Time ago (right-aligned)
		timeAgo := formatTimeAgo(entry.PlayedAt)
		timeWidth := len(timeAgo)

		// Status icon
		icon := "♪"
		if entry.Skipped {
			icon = "⏭"
		}

		title, artist := fitTitleArtist(track.Name, track.Artist, width-overhead-timeWidth, 8)

		// Build track info
		trackInfo := fmt.Sprintf("%s — %s", title, artist)
		trackInfoLen := len(title) + 3 + len(artist) // " — " is 3 chars

		// Calculate padding for right-alignment
		padding := width - 2 - trackInfoLen - timeWidth // 2 for icon + space
		if padding < 1 {
			padding = 1
		}

		line := fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render(icon),
			trackInfo,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
