package audio

import "sync"

// EventType identifies a notification emitted by the Service.
type EventType string

// Event types
const (
	EventLoaded    EventType = "loaded"
	EventLoadError EventType = "loaderror"
	EventPlay      EventType = "play"
	EventPause     EventType = "pause"
	EventStop      EventType = "stop"
	EventEnd       EventType = "end"
	EventSeek      EventType = "seek"
	EventVolume    EventType = "volume"
)

// Event is a single notification. Err is set for EventLoadError.
type Event struct {
	Type EventType
	Err  error
}

// Listener receives events. Listeners may call back into the Service;
// events emitted from inside a listener are delivered after the current
// event has reached every subscriber.
type Listener func(Event)

// bus fans events out to subscribers in emission order. Whichever goroutine
// finds the bus idle drains the pending queue; nested emits only enqueue.
type bus struct {
	mu        sync.Mutex
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64
	pending   []Event
	draining  bool
}

func newBus() *bus {
	return &bus{listeners: make(map[uint64]Listener)}
}

func (b *bus) subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[id] = l
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *bus) emit(e Event) {
	b.mu.Lock()
	b.pending = append(b.pending, e)
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for len(b.pending) > 0 {
		next := b.pending[0]
		b.pending = b.pending[1:]

		targets := make([]Listener, 0, len(b.order))
		for _, id := range b.order {
			targets = append(targets, b.listeners[id])
		}
		b.mu.Unlock()

		for _, l := range targets {
			l(next)
		}

		b.mu.Lock()
	}

	b.draining = false
	b.mu.Unlock()
}

func (b *bus) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[uint64]Listener)
	b.order = nil
}
