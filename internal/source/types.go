// Package source keeps the declaration files read by ccabi and maps byte
// spans back to lines and columns for diagnostics.
package source

// FileID names a file inside one FileSet, in the order files were added.
type FileID uint32

// FileFlags record how a file entered the set and what Add normalized.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // added from memory
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // CRLF line ends became LF
)

// File is one loaded declaration file. LineIdx holds the byte offset of
// every '\n' in Content, in order.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position. Col counts bytes, not runes.
type LineCol struct {
	Line, Col uint32
}
