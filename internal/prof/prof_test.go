package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPUProfile:   filepath.Join(dir, "cpu.pprof"),
		MemProfile:   filepath.Join(dir, "mem.pprof"),
		RuntimeTrace: filepath.Join(dir, "trace.out"),
	}
	if !opts.Enabled() {
		t.Fatalf("options with paths should be enabled")
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, path := range []string{opts.CPUProfile, opts.MemProfile, opts.RuntimeTrace} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}

func TestStartFailureLeavesNothingRunning(t *testing.T) {
	dir := t.TempDir()
	_, err := Start(Options{
		CPUProfile:   filepath.Join(dir, "cpu.pprof"),
		RuntimeTrace: filepath.Join(dir, "missing", "trace.out"),
	})
	if err == nil {
		t.Fatalf("expected an error for an unwritable trace path")
	}
	// the CPU profiler must have been stopped again
	s, err := Start(Options{CPUProfile: filepath.Join(dir, "cpu2.pprof")})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestDisabled(t *testing.T) {
	if (Options{}).Enabled() {
		t.Fatalf("empty options should be disabled")
	}
	s, err := Start(Options{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
