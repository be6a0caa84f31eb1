package trace

import "errors"

// MultiTracer fans out events to several tracers. Its level is the most
// verbose level among them.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer returns a tracer emitting to every one of tracers.
func NewMultiTracer(tracers ...Tracer) *MultiTracer {
	m := &MultiTracer{tracers: tracers}
	for _, t := range tracers {
		m.level = max(m.level, t.Level())
	}
	return m
}

// Emit hands every tracer its own copy since tracers stamp sequence
// numbers.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
