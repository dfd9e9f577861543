package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/tui/styles"
)

// Queue displays the play queue with a selection cursor
type Queue struct {
	offset   int
	selected int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// SelectNext moves the cursor down
func (q *Queue) SelectNext(n int) {
	if q.selected < n-1 {
		q.selected++
	}
}

// SelectPrev moves the cursor up
func (q *Queue) SelectPrev() {
	if q.selected > 0 {
		q.selected--
	}
}

// Selected returns the selected index
func (q *Queue) Selected() int {
	return q.selected
}

// Clamp keeps the cursor inside a queue of n tracks
func (q *Queue) Clamp(n int) {
	q.selected = max(0, min(q.selected, n-1))
}

// Render renders the queue panel
func (q *Queue) Render(queue *core.Queue, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Queue (%d)", queue.Len()), focused)

	var content string
	if queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(queue, width-4, height-4, focused)
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

func (q *Queue) renderQueue(queue *core.Queue, width, maxLines int, focused bool) string {
	tracks := queue.Tracks
	q.Clamp(len(tracks))

	visibleCount := max(maxLines-1, 1) // Leave room for "more" indicator

	// Keep the cursor on screen
	if q.selected < q.offset {
		q.offset = q.selected
	}
	if q.selected >= q.offset+visibleCount {
		q.offset = q.selected - visibleCount + 1
	}

	start := q.offset
	end := min(start+visibleCount, len(tracks))

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " (4) + "▶ " or "  " (2) + " — " (3) = 9 chars
	const overhead = 9

	for i := start; i < end; i++ {
		track := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)
		title, artist := fitTitleArtist(track.Name, track.Artist, width-overhead, 10)

		var line string
		switch {
		case i == queue.CurrentIndex:
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist))
		default:
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}
		if focused && i == q.selected {
			line = styles.Highlight.Render("▸") + line
		} else {
			line = " " + line
		}

		lines = append(lines, line)
	}

	if end < len(tracks) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fitTitleArtist truncates title and artist to share available columns,
// giving the artist at least a third (and minArtist columns).
func fitTitleArtist(title, artist string, available, minArtist int) (string, string) {
	if len(title)+len(artist) <= available {
		return title, artist
	}

	artistSpace := max(available/3, minArtist)
	artistSpace = min(artistSpace, available-minArtist, len(artist))
	titleSpace := available - artistSpace

	return truncate(title, titleSpace), truncate(artist, artistSpace)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
