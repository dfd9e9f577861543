package tail

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/bhajan/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		if song := e.Current.CurrentSong; song != nil {
			data.Title = song.Name
			data.Artist = song.Artist
			data.Album = song.Album
			data.URL = song.URL
		}
		data.Volume = volumePercent(e.Current.Volume)
		data.Index = e.Current.CurrentIndex() + 1
		data.QueueLength = e.Current.Queue.Len()
		data.Repeat = string(e.Current.RepeatMode)
		data.Shuffle = e.Current.Shuffle
		data.Error = e.Current.LastError
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type        string
	Emoji       string
	Timestamp   time.Time
	Time        string
	Title       string
	Artist      string
	Album       string
	URL         string
	Volume      int
	Index       int
	QueueLength int
	Repeat      string
	Shuffle     bool
	Error       string
}

func volumePercent(v float64) int {
	return int(math.Round(v * 100))
}

func describe(t *core.Track) string {
	if t.Artist == "" {
		return t.Name
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Name)
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Current != nil && e.Current.CurrentSong != nil {
			return "Now playing: " + describe(e.Current.CurrentSong)
		}
		return "Track cleared"

	case EventTrackComplete:
		if e.Previous != nil && e.Previous.CurrentSong != nil {
			return "Finished: " + describe(e.Previous.CurrentSong)
		}
		return "Track completed"

	case EventTrackSkip:
		if e.Previous != nil && e.Previous.CurrentSong != nil {
			return "Skipped: " + describe(e.Previous.CurrentSong)
		}
		return "Track skipped"

	case EventPause:
		if e.Current != nil {
			return fmt.Sprintf("Paused at %s", formatPosition(e.Current.CurrentTime))
		}
		return "Paused"

	case EventResume:
		return "Playing"

	case EventStop:
		return "Stopped"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", volumePercent(e.Current.Volume))
		}
		return "Volume changed"

	case EventRepeatChange:
		if e.Current != nil {
			return fmt.Sprintf("Repeat: %s", e.Current.RepeatMode)
		}
		return "Repeat changed"

	case EventShuffleChange:
		if e.Current != nil && e.Current.Shuffle {
			return "Shuffle: on"
		}
		return "Shuffle: off"

	case EventQueueChange:
		if e.Current != nil {
			return fmt.Sprintf("Queue: %d tracks", e.Current.Queue.Len())
		}
		return "Queue changed"

	case EventLoadError:
		if e.Current != nil {
			return "Load failed: " + e.Current.LastError
		}
		return "Load failed"

	default:
		return "Unknown event"
	}
}

// formatPosition renders a playback position as m:ss.
func formatPosition(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventStop:
		return "⏹️"
	case EventVolumeChange:
		return "🔊"
	case EventRepeatChange:
		return "🔁"
	case EventShuffleChange:
		return "🔀"
	case EventQueueChange:
		return "📜"
	case EventLoadError:
		return "⚠️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventStop:
		return "stop"
	case EventVolumeChange:
		return "volume_change"
	case EventRepeatChange:
		return "repeat_change"
	case EventShuffleChange:
		return "shuffle_change"
	case EventQueueChange:
		return "queue_change"
	case EventLoadError:
		return "load_error"
	default:
		return "unknown"
	}
}

// String returns the event type name, e.g. "track_change".
func (t EventType) String() string {
	return eventTypeName(t)
}

// Record is the JSON form of an event.
type Record struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Track     *core.Track `json:"track,omitempty"`
	Position  string      `json:"position,omitempty"`
	Volume    int         `json:"volume"`
	Error     string      `json:"error,omitempty"`
}

// NewRecord converts an event for JSON output.
func NewRecord(e Event) Record {
	r := Record{
		Type:      e.Type.String(),
		Timestamp: e.Timestamp,
	}
	if e.Current != nil {
		r.Track = e.Current.CurrentSong
		r.Volume = volumePercent(e.Current.Volume)
		r.Error = e.Current.LastError
		if e.Current.HasTrack() {
			r.Position = formatPosition(e.Current.CurrentTime)
		}
	}
	return r
}
