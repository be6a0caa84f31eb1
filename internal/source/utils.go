package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

// normalizeCRLF replaces every "\r\n" by "\n" and leaves lone '\r' alone.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, []byte("\r\n")) {
		return content, false
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), true
}

func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, mustU32(i))
		}
	}
	return out
}

// toLineCol maps a byte offset to a 1-based line and column.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// number of newlines strictly before off
	line, _ := slices.BinarySearch(lineIdx, off)
	var start uint32
	if line > 0 {
		start = lineIdx[line-1] + 1
	}
	return LineCol{Line: mustU32(line + 1), Col: off - start + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// mustU32 converts offsets and counts that are bounded by the 4 GiB file
// size limit of Span.
func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source: %w", err))
	}
	return v
}
