package audio

import (
	"reflect"
	"testing"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := newBus()

	var a, c []EventType
	b.subscribe(func(e Event) { a = append(a, e.Type) })
	unsub := b.subscribe(func(e Event) { c = append(c, e.Type) })

	b.emit(Event{Type: EventPlay})
	unsub()
	b.emit(Event{Type: EventPause})

	if want := []EventType{EventPlay, EventPause}; !reflect.DeepEqual(a, want) {
		t.Errorf("first subscriber got %v, want %v", a, want)
	}
	if want := []EventType{EventPlay}; !reflect.DeepEqual(c, want) {
		t.Errorf("unsubscribed subscriber got %v, want %v", c, want)
	}

	// Unsubscribing twice is harmless.
	unsub()
}

func TestBusNestedEmitIsQueued(t *testing.T) {
	b := newBus()

	var first, second []EventType
	b.subscribe(func(e Event) {
		first = append(first, e.Type)
		if e.Type == EventLoaded {
			b.emit(Event{Type: EventPlay})
		}
	})
	b.subscribe(func(e Event) { second = append(second, e.Type) })

	b.emit(Event{Type: EventLoaded})

	want := []EventType{EventLoaded, EventPlay}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("first subscriber got %v, want %v", first, want)
	}
	if !reflect.DeepEqual(second, want) {
		t.Errorf("second subscriber got %v, want %v", second, want)
	}
}

func TestBusClear(t *testing.T) {
	b := newBus()
	called := false
	b.subscribe(func(Event) { called = true })
	b.clear()
	b.emit(Event{Type: EventStop})
	if called {
		t.Error("listener called after clear")
	}
}
