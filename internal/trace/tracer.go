package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Tracer receives trace events. Implementations are safe for concurrent
// use.
type Tracer interface {
	Emit(ev *Event)
	// Flush writes buffered events.
	Flush() error
	// Close flushes and releases the output.
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory for a post-mortem dump
	ModeBoth
)

var storageModeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if s, ok := storageModeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode converts a string to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	for m, name := range storageModeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level Level
	Mode  StorageMode
	// Format of streamed events. FormatAuto picks NDJSON for .ndjson and
	// .jsonl output files and text otherwise.
	Format Format
	// Output receives streamed events. If nil, OutputPath is created, with
	// "" and "-" meaning stderr.
	Output     io.Writer
	OutputPath string
	// RingSize defaults to 4096.
	RingSize int
}

func (c Config) format() Format {
	if c.Format != FormatAuto {
		return c.Format
	}
	switch filepath.Ext(c.OutputPath) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	default:
		return FormatText
	}
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }

func (c Config) output() (io.Writer, error) {
	switch {
	case c.Output != nil:
		return c.Output, nil
	case c.OutputPath == "" || c.OutputPath == "-":
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(c.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// New creates the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	var ring, stream Tracer
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		ring = NewRingTracer(cfg.RingSize, cfg.Level)
	}
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		w, err := cfg.output()
		if err != nil {
			return nil, err
		}
		stream = NewStreamTracer(w, cfg.Level, cfg.format())
	}

	switch {
	case ring != nil && stream != nil:
		return NewMultiTracer(stream, ring), nil
	case ring != nil:
		return ring, nil
	case stream != nil:
		return stream, nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

// Point emits an instant event below parent if t accepts the scope.
func Point(t Tracer, scope Scope, name, detail string, parent uint64, extra map[string]string) {
	if !accepts(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
		Extra:    extra,
	})
}
