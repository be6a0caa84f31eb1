package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so that they can be
// dumped after a failed run.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	start  int // oldest event
	count  int
	level  Level
}

// NewRingTracer returns a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	stored.Seq = NextSeq()
	if t.count < len(t.events) {
		t.events[(t.start+t.count)%len(t.events)] = stored
		t.count++
		return
	}
	t.events[t.start] = stored
	t.start = (t.start + 1) % len(t.events)
}

// Len returns the number of stored events.
func (t *RingTracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, t.count)
	for i := range out {
		out[i] = t.events[(t.start+i)%len(t.events)]
	}
	return out
}

// Dump writes the stored events to w, oldest first.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

// FindRing returns the RingTracer behind t, looking through multi tracers.
func FindRing(t Tracer) (*RingTracer, bool) {
	switch t := t.(type) {
	case *RingTracer:
		return t, true
	case *MultiTracer:
		for _, child := range t.tracers {
			if r, ok := FindRing(child); ok {
				return r, true
			}
		}
	}
	return nil, false
}
