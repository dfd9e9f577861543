package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tessro/bhajan/internal/core"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// TruncateString truncates a string to maxLen, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatDuration formats a duration as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	seconds := max(int(d.Seconds()), 0)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// printTracks writes tracks as a numbered table, or as JSON.
func printTracks(out io.Writer, tracks []core.Track, limit int) error {
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	if JSONOutput() {
		return json.NewEncoder(out).Encode(map[string]any{
			"tracks": tracks,
			"count":  len(tracks),
		})
	}

	if len(tracks) == 0 {
		_, _ = fmt.Fprintln(out, "No tracks")
		return nil
	}

	t := NewTableWriter(out, "#", "NAME", "ARTIST", "ALBUM", "LENGTH")
	for i, track := range tracks {
		length := "-"
		if track.Duration > 0 {
			length = FormatDuration(track.Duration)
		}
		t.Row(
			fmt.Sprintf("%d", i+1),
			TruncateString(track.Name, 40),
			TruncateString(track.Artist, 30),
			TruncateString(track.Album, 30),
			length,
		)
	}
	t.Flush()
	return nil
}
