package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
)

// TableOptions configures RenderTable.
type TableOptions struct {
	Color bool
}

type tableStyles struct {
	title, header, dim, failed, name lipgloss.Style
}

func newTableStyles(color bool) tableStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return tableStyles{plain, plain, plain, plain, plain}
	}
	return tableStyles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		failed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		name:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// RenderTable writes the reports as aligned text tables.
func RenderTable(w io.Writer, files []File, opts TableOptions) error {
	st := newTableStyles(opts.Color)
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.dim.Render(fmt.Sprintf("# %s (%s)", f.Path, f.Target)))
		b.WriteString("\n")
		for _, r := range f.Records {
			b.WriteString("\n")
			writeRecord(&b, st, r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRecord(b *strings.Builder, st tableStyles, r Record) {
	title := r.Kind + " " + r.Name
	if r.Failed {
		b.WriteString(st.title.Render(title) + "  " + st.failed.Render("failed") + "\n")
		return
	}
	if r.Kind == "enum" {
		b.WriteString(fmt.Sprintf("%s  %s  size %d  align %d\n", st.title.Render(title), r.Underlying, r.Size, r.Align))
		rows := [][]string{{"NAME", "VALUE", "TYPE"}}
		for _, e := range r.Enumerators {
			rows = append(rows, []string{e.Name, e.Value, e.Type})
		}
		writeRows(b, st, rows, []bool{false, true, false})
		return
	}

	b.WriteString(fmt.Sprintf("%s  size %d  align %d\n", st.title.Render(title), r.Size, r.Align))
	rows := [][]string{{"OFFSET", "BITS", "SIZE", "TYPE", "NAME"}}
	rows = appendFieldRows(rows, r.Fields, 0, "")
	writeRows(b, st, rows, []bool{true, true, true, false, false})
}

func appendFieldRows(rows [][]string, fields []Field, base uint64, indent string) [][]string {
	for _, f := range fields {
		bits := ""
		if f.Bits >= 0 {
			bits = fmt.Sprintf("%d:%d", f.BitPos, f.Bits)
		}
		name := f.Name
		if name == "" {
			name = "<anonymous>"
		}
		rows = append(rows, []string{
			strconv.FormatUint(base+f.Offset, 10),
			bits,
			strconv.FormatUint(f.Size, 10),
			f.Type,
			indent + name,
		})
		if len(f.Fields) > 0 {
			rows = appendFieldRows(rows, f.Fields, base+f.Offset, indent+"  ")
		}
	}
	return rows
}

// writeRows pads the columns to their widest cell. Numeric columns are
// right aligned.
func writeRows(b *strings.Builder, st tableStyles, rows [][]string, right []bool) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			pad := strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			if right[i] {
				cell = pad + cell
			} else if i < len(row)-1 {
				cell += pad
			}
			switch {
			case n == 0:
				cell = st.header.Render(cell)
			case i == len(row)-1:
				cell = st.name.Render(cell)
			}
			cells[i] = cell
		}
		b.WriteString("  " + strings.Join(cells, "  ") + "\n")
	}
}

// WriteJSON writes the reports as an indented JSON array.
func WriteJSON(w io.Writer, files []File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}

// WriteMsgpack writes the reports as one msgpack array.
func WriteMsgpack(w io.Writer, files []File) error {
	return msgpack.NewEncoder(w).Encode(files)
}

// ReadMsgpack reads reports written by WriteMsgpack.
func ReadMsgpack(r io.Reader) ([]File, error) {
	var files []File
	if err := msgpack.NewDecoder(r).Decode(&files); err != nil {
		return nil, err
	}
	return files, nil
}
