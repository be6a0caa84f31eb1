package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"ccabi/internal/diag"
	"ccabi/internal/source"
)

const declText = "[[struct]]\nname = \"s\"\nmembers = [{ name = \"ключ\", type = \"char\", bits = 9 }]\n"

func sampleBag(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/work/decls/s.abi.toml", []byte(declText))
	start := uint32(strings.Index(declText, `"ключ"`))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.DeclBitfieldWidth, source.Span{File: id, Start: start, End: start + uint32(len(`"ключ"`))}, "width of ключ exceeds its type").
		WithNote(source.Span{File: id, Start: 18, End: 21}, "in struct s"))
	return fs, bag
}

func TestPretty(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"/work/decls/s.abi.toml:3:21: ERROR DCL1011: width of ключ exceeds its type",
		" 2 | name = \"s\"",
		" 3 | members = [",
		"note: /work/decls/s.abi.toml:2:8: in struct s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	// the caret line underlines the six display cells of "ключ" with quotes
	if !strings.Contains(out, "   | "+strings.Repeat(" ", 20)+"^~~~~~\n") {
		t.Errorf("caret line is misplaced:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color codes without Color:\n%q", out)
	}
}

func TestPrettyColorAndPaths(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true, PathMode: PathModeBasename})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected color codes:\n%q", out)
	}
	if strings.Contains(out, "/work/decls") || !strings.Contains(out, "s.abi.toml") {
		t.Errorf("basename mode should strip directories:\n%s", out)
	}
	if strings.Contains(out, "note:") {
		t.Errorf("notes shown without ShowNotes:\n%s", out)
	}
}

func TestPrettySkipsEmptyFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("missing.abi.toml", nil, source.FileVirtual)
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: id}, "failed to load file"))
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if got, want := buf.String(), "missing.abi.toml:1:1: ERROR IO3001: failed to load file\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
