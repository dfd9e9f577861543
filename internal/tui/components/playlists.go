package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bhajan/internal/catalog"
	"github.com/tessro/bhajan/internal/tui/styles"
)

// Playlists lists library playlists for selection
type Playlists struct {
	selected int
}

// NewPlaylists creates a new Playlists component
func NewPlaylists() *Playlists {
	return &Playlists{}
}

// SelectNext selects the next playlist
func (p *Playlists) SelectNext(n int) {
	if p.selected < n-1 {
		p.selected++
	}
}

// SelectPrev selects the previous playlist
func (p *Playlists) SelectPrev() {
	if p.selected > 0 {
		p.selected--
	}
}

// Selected returns the selected playlist index
func (p *Playlists) Selected() int {
	return p.selected
}

// Render renders the playlists panel. active is the ID of the playlist
// that built the current queue, if any.
func (p *Playlists) Render(playlists []catalog.Playlist, active string, width, height int, focused bool) string {
	title := styles.PanelTitle("Playlists", focused)

	var content string
	if len(playlists) == 0 {
		content = styles.Muted.Render("No playlists in library")
	} else {
		content = p.renderPlaylists(playlists, active, height-4, focused)
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

func (p *Playlists) renderPlaylists(playlists []catalog.Playlist, active string, maxLines int, focused bool) string {
	p.selected = max(0, min(p.selected, len(playlists)-1))

	lines := make([]string, 0, len(playlists))

	for i, pl := range playlists {
		selector := "  "
		if focused && i == p.selected {
			selector = "▸ "
		}

		marker := ""
		if pl.ID == active {
			marker = styles.Playing.Render(" ●")
		}

		name := pl.Name
		if focused && i == p.selected {
			name = styles.Highlight.Render(name)
		}

		count := styles.Dim.Render(fmt.Sprintf(" (%d)", len(pl.TrackIDs)))
		lines = append(lines, fmt.Sprintf("%s%s%s%s", selector, name, count, marker))

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
