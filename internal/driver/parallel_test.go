package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"ccabi/internal/arch"
	"ccabi/internal/diag"
	"ccabi/internal/driver"
)

const goodDecls = `
[[struct]]
name = "pair"
members = [{ name = "a", type = "char" }, { name = "b", type = "long" }]
`

const badDecls = `
[[struct]]
name = "bad"
members = [{ name = "x", type = "int", bits = 40 }]
`

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(ev driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) final(file string) driver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st driver.Status
	for _, ev := range s.events {
		if ev.File == file {
			st = ev.Status
		}
	}
	return st
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListDeclFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.abi.toml":     goodDecls,
		"sub/a.abi.toml": goodDecls,
		"notes.txt":      "x",
		"sub/other.toml": "",
		"explicit.toml":  goodDecls,
	})
	got, err := driver.ListDeclFiles([]string{dir, filepath.Join(dir, "explicit.toml"), filepath.Join(dir, "b.abi.toml")})
	if err != nil {
		t.Fatalf("ListDeclFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "b.abi.toml"),
		filepath.Join(dir, "explicit.toml"),
		filepath.Join(dir, "sub", "a.abi.toml"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := driver.ListDeclFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestLayoutFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"good.abi.toml": goodDecls, "bad.abi.toml": badDecls})
	good := filepath.Join(dir, "good.abi.toml")
	bad := filepath.Join(dir, "bad.abi.toml")
	missing := filepath.Join(dir, "missing.abi.toml")

	sink := &recordingSink{}
	opts := driver.Options{
		Arch:     arch.NewX86_64GCC48(arch.Config{}),
		Jobs:     2,
		Progress: sink,
		Timings:  true,
	}
	_, results, err := driver.LayoutFiles(context.Background(), []string{good, bad, missing}, opts)
	if err != nil {
		t.Fatalf("LayoutFiles: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	g := results[0]
	if g.Report == nil || g.Bag.HasErrors() || len(g.Report.Records) != 1 {
		t.Fatalf("good: %+v %+v", g.Report, g.Bag.Items())
	}
	if rec := g.Report.Records[0]; rec.Size != 16 || rec.Align != 8 {
		t.Fatalf("pair = %+v", rec)
	}
	if !hasCode(g.Bag, diag.ObsTimings) || g.Timing == nil {
		t.Fatalf("good: missing timings")
	}

	b := results[1]
	if b.Report == nil || !b.Report.Records[0].Failed || !hasCode(b.Bag, diag.DeclBitfieldWidth) {
		t.Fatalf("bad: %+v %+v", b.Report, b.Bag.Items())
	}

	m := results[2]
	if m.Report != nil || !hasCode(m.Bag, diag.IOLoadFileError) {
		t.Fatalf("missing: %+v", m.Bag.Items())
	}

	for file, want := range map[string]driver.Status{good: driver.StatusDone, bad: driver.StatusError, missing: driver.StatusError} {
		if got := sink.final(file); got != want {
			t.Errorf("final status of %s = %s, want %s", filepath.Base(file), got, want)
		}
	}
	if reps := driver.Reports(results); len(reps) != 2 {
		t.Fatalf("Reports returned %d reports", len(reps))
	}
}

func TestLayoutFilesUsesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.abi.toml": badDecls})
	path := filepath.Join(dir, "bad.abi.toml")
	cache, err := driver.OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	opts := driver.Options{Arch: arch.NewX86_64GCC48(arch.Config{}), Cache: cache}

	_, first, err := driver.LayoutFiles(context.Background(), []string{path}, opts)
	if err != nil || first[0].Cached {
		t.Fatalf("first run: cached=%v err=%v", first[0].Cached, err)
	}

	sink := &recordingSink{}
	opts.Progress = sink
	_, second, err := driver.LayoutFiles(context.Background(), []string{path}, opts)
	if err != nil || !second[0].Cached {
		t.Fatalf("second run: cached=%v err=%v", second[0].Cached, err)
	}
	if !hasCode(second[0].Bag, diag.DeclBitfieldWidth) {
		t.Fatalf("cached diagnostics were not restored: %+v", second[0].Bag.Items())
	}
	d := second[0].Bag.Items()[0]
	if d.Primary.File != second[0].FileID || d.Primary.Start == d.Primary.End {
		t.Fatalf("restored span %v does not point into the file", d.Primary)
	}
	if got := sink.final(path); got != driver.StatusError {
		t.Fatalf("final status = %s, want error", got)
	}

	// another target configuration is a different entry
	packed, err := arch.Lookup("", arch.Config{PackStruct: arch.MaxPackStruct})
	if err != nil {
		t.Fatal(err)
	}
	opts.Arch, opts.PackStruct = packed, 16
	_, third, err := driver.LayoutFiles(context.Background(), []string{path}, opts)
	if err != nil || third[0].Cached {
		t.Fatalf("pack_struct run should miss the cache: cached=%v err=%v", third[0].Cached, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	opts.Arch, opts.PackStruct = arch.NewX86_64GCC48(arch.Config{}), 0
	_, fourth, err := driver.LayoutFiles(context.Background(), []string{path}, opts)
	if err != nil || fourth[0].Cached {
		t.Fatalf("run after DropAll should miss: cached=%v err=%v", fourth[0].Cached, err)
	}
}

func TestLayoutFilesCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"good.abi.toml": goodDecls})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := driver.LayoutFiles(ctx, []string{filepath.Join(dir, "good.abi.toml")}, driver.Options{Arch: arch.NewX86_64GCC48(arch.Config{})})
	if err == nil {
		t.Fatalf("expected a cancellation error")
	}
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
