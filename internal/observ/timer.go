// Package observ measures how long the steps of laying out a file take.
package observ

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer records consecutive phases of one file. It is not safe for
// concurrent use.
type Timer struct {
	phases []phase
	now    func() time.Time
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Phase starts a phase named name. Calling the returned func ends it with
// an optional note; later calls are ignored.
func (t *Timer) Phase(name string) (end func(note string)) {
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, start: t.now()})
	done := false
	return func(note string) {
		if done {
			return
		}
		done = true
		p := &t.phases[idx]
		p.dur = t.now().Sub(p.start)
		p.note = note
	}
}

// Total sums the ended phases.
func (t *Timer) Total() time.Duration {
	var sum time.Duration
	for _, p := range t.phases {
		sum += p.dur
	}
	return sum
}

// PhaseReport is one phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the exported form of one Timer, or the sum of several.
type Report struct {
	Files   int           `json:"files,omitempty"`
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	r := Report{Files: 1, TotalMS: millis(t.Total())}
	for _, p := range t.phases {
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	return r
}

// Add accumulates other into r. Phases with the same name are summed and
// keep the position of their first appearance. Notes are dropped.
func (r *Report) Add(other Report) {
	r.Files += other.Files
	r.TotalMS += other.TotalMS
	for _, p := range other.Phases {
		i := slices.IndexFunc(r.Phases, func(q PhaseReport) bool { return q.Name == p.Name })
		if i < 0 {
			r.Phases = append(r.Phases, PhaseReport{Name: p.Name})
			i = len(r.Phases) - 1
		}
		r.Phases[i].DurationMS += p.DurationMS
	}
}

// Summary renders r as an aligned block, one phase per line with its
// share of the total.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "timings (%d files):\n", r.Files)
	for _, p := range r.Phases {
		share := 0.0
		if r.TotalMS > 0 {
			share = 100 * p.DurationMS / r.TotalMS
		}
		fmt.Fprintf(&b, "  %-12s %9.2f ms %5.1f%%", p.Name, p.DurationMS, share)
		if p.Note != "" {
			b.WriteString("  " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %9.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}
