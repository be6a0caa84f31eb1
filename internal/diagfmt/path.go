package diagfmt

import (
	"path/filepath"

	"ccabi/internal/source"
)

func displayPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	switch mode {
	case PathModeAbsolute:
		if f.Flags&source.FileVirtual != 0 {
			return f.Path
		}
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		return fs.DisplayPath(id)
	}
}
