package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ccabi/internal/diag"
	"ccabi/internal/project"
	"ccabi/internal/report"
	"ccabi/internal/source"
)

// diskCacheSchemaVersion changes whenever DiskPayload or report.File does.
const diskCacheSchemaVersion = 1<<8 | report.SchemaVersion

// DiskCache stores layout reports on disk, keyed by the hash of the
// declaration file and the target. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached file: its report and the diagnostics that
// loading it produced.
type DiskPayload struct {
	Schema      uint16
	ContentHash project.Digest
	Report      report.File
	Diags       []CachedDiag
}

// CachedDiag is a diagnostic without its file, restored against the
// file's ID of the current run.
type CachedDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// OpenDiskCache creates dir if needed and returns a cache in it.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// CacheKey is the key of a declaration file laid out for a target.
func CacheKey(content project.Digest, triple string, packStruct int) project.Digest {
	return project.Combine(content, project.TargetDigest(triple, packStruct))
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "layouts", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload, replacing any previous one
// atomically.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one of another schema is a
// miss, not an error.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func cacheDiags(items []diag.Diagnostic) []CachedDiag {
	out := make([]CachedDiag, 0, len(items))
	for _, d := range items {
		if d.Code == diag.ObsTimings {
			continue
		}
		cd := CachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		out = append(out, cd)
	}
	return out
}

func restoreDiags(bag *diag.Bag, file source.FileID, cached []CachedDiag) {
	for _, cd := range cached {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: file, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: source.Span{File: file, Start: n.Start, End: n.End}, Msg: n.Msg})
		}
		bag.Add(d)
	}
}
