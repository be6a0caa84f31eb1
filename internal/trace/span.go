package trace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// getGoroutineID parses the id out of "goroutine 123 [running]:".
func getGoroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b, ok := bytes.CutPrefix(b, []byte("goroutine "))
	if !ok {
		return 0
	}
	if end := bytes.IndexByte(b, ' '); end >= 0 {
		b = b[:end]
	}
	gid, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open begin event waiting for its end. A span of a disabled
// tracer only remembers its parent.
type Span struct {
	tracer Tracer
	begin  Event
	extra  map[string]string
}

// Begin starts a span named name below parent (0 for a root span) and
// emits its begin event. The returned span is never nil.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !accepts(t, scope) {
		return &Span{begin: Event{ParentID: parent}}
	}
	s := &Span{
		tracer: t,
		begin: Event{
			Time:     time.Now(),
			Kind:     KindSpanBegin,
			Scope:    scope,
			SpanID:   NextSpanID(),
			ParentID: parent,
			GID:      getGoroutineID(),
			Name:     name,
		},
	}
	ev := s.begin
	t.Emit(&ev)
	return s
}

// End emits the end event with detail and the extras set so far, and
// returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if !s.enabled() {
		return 0
	}
	end := s.begin
	end.Time = time.Now()
	end.Kind = KindSpanEnd
	end.Detail = detail
	end.Extra = s.extra
	s.tracer.Emit(&end)
	return end.Time.Sub(s.begin.Time)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID. A disabled span reports its parent so that
// children still attach to the closest enabled ancestor.
func (s *Span) ID() uint64 {
	switch {
	case s == nil:
		return 0
	case s.begin.SpanID == 0:
		return s.begin.ParentID
	default:
		return s.begin.SpanID
	}
}

func (s *Span) enabled() bool {
	return s != nil && s.tracer != nil && s.tracer.Enabled()
}

func accepts(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}
