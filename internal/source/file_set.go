package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// FileSet owns the files of one ccabi run. Files are added before any
// concurrent processing starts; lookups afterwards are read-only and safe
// from several goroutines.
type FileSet struct {
	files   []File
	index   map[string]FileID
	baseDir string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase creates a FileSet whose paths are shown relative to
// baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{
		index:   make(map[string]FileID),
		baseDir: baseDir,
	}
}

// BaseDir returns the directory paths are shown relative to, defaulting to
// the working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Add stores content under path and returns its new FileID. Adding a path
// twice creates a second file; GetByPath returns the latest.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	id := FileID(mustU32(len(fs.files)))
	normalized := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, strips a UTF-8 BOM, normalizes CRLF and
// adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return 0, err
	}

	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Len returns the number of files.
func (fs *FileSet) Len() int { return len(fs.files) }

// Get returns the file with the given ID. It panics on an unknown ID.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		panic(fmt.Errorf("source: unknown file id %d", id))
	}
	return &fs.files[id]
}

// GetByPath returns the latest file added under path.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fs.index[normalizePath(path)]; ok {
		return &fs.files[id], true
	}
	return nil, false
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// DisplayPath returns the file's path relative to the base directory when
// possible.
func (fs *FileSet) DisplayPath(id FileID) string {
	f := fs.Get(id)
	if f.Flags&FileVirtual != 0 || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	if rel, err := filepath.Rel(fs.BaseDir(), f.Path); err == nil && !filepath.IsAbs(rel) && rel != ".." && !hasDotDotPrefix(rel) {
		return filepath.ToSlash(rel)
	}
	return f.Path
}

func hasDotDotPrefix(p string) bool {
	return len(p) >= 3 && p[:3] == ".."+string(filepath.Separator)
}

// GetLine returns line lineNum (1-based) without its newline, or "" if the
// line does not exist.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	n := mustU32(len(f.LineIdx))
	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < n:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	end := mustU32(len(f.Content))
	if lineNum-1 < n {
		end = f.LineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
