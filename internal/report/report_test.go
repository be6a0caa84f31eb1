package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"ccabi/internal/arch"
	"ccabi/internal/decl"
	"ccabi/internal/report"
	"ccabi/internal/source"
)

const src = `
[[struct]]
name = "hdr"
members = [
  { name = "kind", type = "unsigned char" },
  { name = "flags", type = "unsigned", bits = 4 },
  { type = "union val" },
  { name = "data", type = "char[]" },
]

[[union]]
name = "val"
members = [
  { name = "i", type = "int" },
  { name = "p", type = "void *" },
]

[[enum]]
name = "mode"
values = [{ name = "OFF", value = "-1" }, { name = "ON" }]

[[struct]]
name = "broken"
members = [{ name = "x", type = "struct nowhere" }]
`

func loadReport(t *testing.T) report.File {
	t.Helper()
	a := arch.NewX86_64GCC48(arch.Config{})
	fs := source.NewFileSet()
	id := fs.AddVirtual("hdr.abi.toml", []byte(src))
	f, err := decl.Load(context.Background(), fs, id, a, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return report.FromFile(a, f)
}

func TestFromFile(t *testing.T) {
	rep := loadReport(t)
	if rep.Target != "x86_64-linux-gnu" || len(rep.Records) != 4 {
		t.Fatalf("unexpected report %+v", rep)
	}

	hdr := rep.Records[0]
	if hdr.Kind != "struct" || hdr.Size != 16 || hdr.Align != 8 {
		t.Fatalf("hdr = %+v", hdr)
	}
	flags := hdr.Fields[1]
	if flags.Offset != 1 || flags.BitPos != 0 || flags.Bits != 4 || flags.Size != 4 {
		t.Fatalf("flags = %+v", flags)
	}
	anon := hdr.Fields[2]
	if anon.Name != "" || anon.Offset != 8 || len(anon.Fields) != 2 || anon.Fields[1].Name != "p" {
		t.Fatalf("anonymous union = %+v", anon)
	}
	if data := hdr.Fields[3]; data.Offset != 16 || data.Size != 0 || data.Bits != -1 {
		t.Fatalf("data = %+v", data)
	}

	mode := rep.Records[2]
	if mode.Underlying != "int" || mode.Size != 4 || len(mode.Enumerators) != 2 {
		t.Fatalf("mode = %+v", mode)
	}
	if on := mode.Enumerators[1]; on.Value != "0" || on.Type != "int" {
		t.Fatalf("ON = %+v", on)
	}

	if !rep.Records[3].Failed {
		t.Fatalf("broken should be marked failed")
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := report.RenderTable(&buf, []report.File{loadReport(t)}, report.TableOptions{}); err != nil {
		t.Fatalf("RenderTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# hdr.abi.toml (x86_64-linux-gnu)",
		"struct hdr  size 16  align 8",
		"enum mode  int  size 4  align 4",
		"struct broken  failed",
		"<anonymous>",
		"1:4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	// anonymous members are indented under their parent
	if !strings.Contains(out, "    p\n") {
		t.Errorf("member p of the anonymous union is not indented:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, []report.File{loadReport(t)}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["path"] != "hdr.abi.toml" {
		t.Fatalf("decoded = %v", decoded)
	}
	if _, ok := decoded[0]["schema"]; ok {
		t.Fatalf("schema should not be part of the JSON output")
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	want := []report.File{loadReport(t)}
	var buf bytes.Buffer
	if err := report.WriteMsgpack(&buf, want); err != nil {
		t.Fatalf("WriteMsgpack: %v", err)
	}
	got, err := report.ReadMsgpack(&buf)
	if err != nil {
		t.Fatalf("ReadMsgpack: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip changed the report:\n got %+v\nwant %+v", got, want)
	}
}

func TestFromFileOmitsOversizedRecords(t *testing.T) {
	a := arch.NewX86_64GCC48(arch.Config{})
	fs := source.NewFileSet()
	id := fs.AddVirtual("big.abi.toml", []byte(`
[[struct]]
name = "big"
members = [
  { name = "a", type = "long[0x4000000000000000]" },
  { name = "b", type = "char" },
]
`))
	f, err := decl.Load(context.Background(), fs, id, a, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rep := report.FromFile(a, f)
	if len(rep.Records) != 1 {
		t.Fatalf("records = %+v", rep.Records)
	}
	if r := rep.Records[0]; !r.Failed || r.Size != 0 || len(r.Fields) != 0 {
		t.Fatalf("oversized struct reported as %+v", r)
	}
}
