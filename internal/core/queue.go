package core

// Queue represents a playback queue.
type Queue struct {
	Tracks       []Track `json:"tracks"`
	CurrentIndex int     `json:"current_index"`
}

// Current returns the current track, or nil if the queue is empty. The
// pointer aliases the queue's track slice.
func (q Queue) Current() *Track {
	if len(q.Tracks) == 0 || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Tracks) {
		return nil
	}
	return &q.Tracks[q.CurrentIndex]
}

// Upcoming returns tracks after the current position.
func (q Queue) Upcoming() []Track {
	if len(q.Tracks) == 0 || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Tracks)-1 {
		return nil
	}
	return q.Tracks[q.CurrentIndex+1:]
}

// Len returns the total number of tracks in the queue.
func (q Queue) Len() int {
	return len(q.Tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q Queue) IsEmpty() bool {
	return q.Len() == 0
}

// InRange reports whether index addresses a track in the queue.
func (q Queue) InRange(index int) bool {
	return index >= 0 && index < q.Len()
}

// NextIndex returns the index after the current one, wrapping to 0 past the end.
// Returns -1 for an empty queue.
func (q Queue) NextIndex() int {
	n := q.Len()
	if n == 0 {
		return -1
	}
	return (q.CurrentIndex + 1) % n
}

// PrevIndex returns the index before the current one, wrapping to the last
// track before 0. Returns -1 for an empty queue.
func (q Queue) PrevIndex() int {
	n := q.Len()
	if n == 0 {
		return -1
	}
	if q.CurrentIndex-1 < 0 {
		return n - 1
	}
	return q.CurrentIndex - 1
}

// Append adds tracks to the end of the queue without moving the current index.
func (q *Queue) Append(tracks ...Track) {
	q.Tracks = append(q.Tracks, tracks...)
}

// Remove deletes the track at index and keeps CurrentIndex pointing at the
// same logical track. When the current track itself is removed, the index is
// clamped to the new last position. It reports false if index is out of range.
func (q *Queue) Remove(index int) bool {
	if !q.InRange(index) {
		return false
	}

	tracks := make([]Track, 0, len(q.Tracks)-1)
	tracks = append(tracks, q.Tracks[:index]...)
	tracks = append(tracks, q.Tracks[index+1:]...)
	q.Tracks = tracks

	switch {
	case index < q.CurrentIndex:
		q.CurrentIndex--
	case index == q.CurrentIndex && len(q.Tracks) > 0:
		q.CurrentIndex = min(q.CurrentIndex, len(q.Tracks)-1)
	case len(q.Tracks) == 0:
		q.CurrentIndex = 0
	}
	return true
}

// Clone returns a copy that does not share the track slice.
func (q Queue) Clone() Queue {
	tracks := make([]Track, len(q.Tracks))
	copy(tracks, q.Tracks)
	return Queue{Tracks: tracks, CurrentIndex: q.CurrentIndex}
}
