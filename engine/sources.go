package engine

import (
	"github.com/agnivade/stt_translation/event"
)

// Sources is the set of dispatch points an engine exposes, one channel per
// EventKind. Engine implementations embed it and call Emit from their
// receive goroutines.
type Sources struct {
	channels map[EventKind]*event.Channel[*NativeEvent]
}

// NewSources creates one channel per kind. Listener panics are passed to
// report, which may be nil.
func NewSources(report func(error)) *Sources {
	s := &Sources{
		channels: make(map[EventKind]*event.Channel[*NativeEvent], len(EventKinds)),
	}
	for _, kind := range EventKinds {
		s.channels[kind] = event.New[*NativeEvent](kind.String(), event.WithErrorReporter(report))
	}
	return s
}

// EventSource returns the dispatch point for kind, or nil for an unknown kind.
func (s *Sources) EventSource(kind EventKind) EventSource {
	ch, ok := s.channels[kind]
	if !ok {
		return nil
	}
	return ch
}

// Emit fires ev on the channel for ev.Kind with sender as the announced source.
func (s *Sources) Emit(sender any, ev *NativeEvent) {
	if ch, ok := s.channels[ev.Kind]; ok {
		ch.Fire(sender, ev)
	}
}

// Listeners returns how many listeners are registered for kind.
func (s *Sources) Listeners(kind EventKind) int {
	if ch, ok := s.channels[kind]; ok {
		return ch.Len()
	}
	return 0
}
