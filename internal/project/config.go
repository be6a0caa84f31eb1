package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ccabi/internal/arch"
	"ccabi/internal/diag"
	"ccabi/internal/source"
	"ccabi/internal/types"
)

// ConfigFileName is the name of the project configuration file.
const ConfigFileName = "ccabi.toml"

// Output formats of the layout command.
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Config is the content of ccabi.toml.
type Config struct {
	Target TargetConfig `toml:"target"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
}

type TargetConfig struct {
	Triple string `toml:"triple"`
	// PackStruct is the -fpack-struct value in bytes, 0 if not set.
	PackStruct int64 `toml:"pack_struct"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

type CacheConfig struct {
	// Dir is relative to the directory of ccabi.toml.
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Manifest is a located and loaded ccabi.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used without a ccabi.toml.
func Default() Config {
	return Config{
		Target: TargetConfig{Triple: arch.DefaultTriple},
		Output: OutputConfig{Format: FormatTable},
	}
}

// ErrInvalidConfig is returned when ccabi.toml has problems. They are
// reported in detail through the diag.Reporter.
var ErrInvalidConfig = errors.New("invalid project configuration")

// LoadManifest finds ccabi.toml starting at startDir and loads it. ok is
// false if there is none, in which case the default configuration is
// returned.
func LoadManifest(fs *source.FileSet, startDir string, r diag.Reporter) (m *Manifest, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return &Manifest{Config: Default()}, false, err
	}
	cfg, err := LoadConfig(fs, path, r)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig reads and validates the configuration file at path. Missing
// settings take their default value.
func LoadConfig(fs *source.FileSet, path string, r diag.Reporter) (Config, error) {
	if r == nil {
		r = diag.NopReporter{}
	}
	id, err := fs.Load(path)
	if err != nil {
		diag.ReportError(r, diag.IOLoadFileError, source.Span{}, fmt.Sprintf("failed to load %s: %v", path, err)).Emit()
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	f := fs.Get(id)

	cfg := Default()
	meta, err := toml.Decode(string(f.Content), &cfg)
	if err != nil {
		sp := source.Span{File: id}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			sp = lineSpan(f, perr.Position.Line)
		}
		diag.ReportError(r, diag.ConfigInvalid, sp, "failed to parse TOML: "+err.Error()).Emit()
		return Config{}, fmt.Errorf("%s: %w", path, ErrInvalidConfig)
	}

	v := validator{file: f, r: r}
	for _, key := range meta.Undecoded() {
		v.report(diag.ConfigUnknownKey, key[len(key)-1], fmt.Sprintf("unknown key %q", key.String()))
	}
	v.check(&cfg)
	if v.failed {
		return Config{}, fmt.Errorf("%s: %w", path, ErrInvalidConfig)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// Arch returns the architecture selected by the configuration.
func (c Config) Arch() (arch.Architecture, error) {
	pack, err := packAlignment(c.Target.PackStruct)
	if err != nil {
		return nil, err
	}
	return arch.Lookup(c.Target.Triple, arch.Config{PackStruct: pack})
}

// CacheDir returns the layout cache directory: the configured one or
// ccabi under the user cache directory.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "ccabi"), nil
}

func packAlignment(bytes int64) (types.Alignment, error) {
	if bytes == 0 {
		return types.NoAlignment, nil
	}
	if bytes < 0 {
		return types.NoAlignment, fmt.Errorf("pack_struct %d is negative", bytes)
	}
	return types.AlignBytes(uint64(bytes)) //nolint:gosec // G115: bytes is positive.
}

type validator struct {
	file   *source.File
	r      diag.Reporter
	failed bool
}

func (v *validator) report(code diag.Code, key, msg string) {
	diag.ReportError(v.r, code, keySpan(v.file, key), msg).Emit()
	v.failed = true
}

func (v *validator) check(cfg *Config) {
	cfg.Target.Triple = strings.TrimSpace(cfg.Target.Triple)
	pack, err := packAlignment(cfg.Target.PackStruct)
	if err != nil {
		v.report(diag.ConfigInvalid, "pack_struct", err.Error())
	} else if _, err := arch.Lookup(cfg.Target.Triple, arch.Config{PackStruct: pack}); err != nil {
		key := "triple"
		if pack.IsSet() {
			key = "pack_struct"
		}
		v.report(diag.ConfigInvalid, key, err.Error())
	}

	switch cfg.Output.Format {
	case FormatTable, FormatJSON, FormatMsgpack:
	default:
		v.report(diag.ConfigInvalid, "format", fmt.Sprintf("unknown output format %q (want %s, %s or %s)",
			cfg.Output.Format, FormatTable, FormatJSON, FormatMsgpack))
	}
}

// keySpan returns the span of the first "key =" in f.
func keySpan(f *source.File, key string) source.Span {
	content := string(f.Content)
	for off := 0; ; {
		i := strings.Index(content[off:], key)
		if i < 0 {
			return source.Span{File: f.ID}
		}
		start := off + i
		rest := strings.TrimLeft(content[start+len(key):], " \t")
		if strings.HasPrefix(rest, "=") && (start == 0 || strings.ContainsRune(" \t\n", rune(content[start-1]))) {
			return spanOf(f, start, start+len(key))
		}
		off = start + len(key)
	}
}

// lineSpan returns the span of the 1-based line.
func lineSpan(f *source.File, line int) source.Span {
	start := 0
	if line > 1 && line-2 < len(f.LineIdx) {
		start = int(f.LineIdx[line-2]) + 1
	}
	end := len(f.Content)
	if line >= 1 && line-1 < len(f.LineIdx) {
		end = int(f.LineIdx[line-1])
	}
	return spanOf(f, start, max(start, end))
}

func spanOf(f *source.File, start, end int) source.Span {
	return source.Span{File: f.ID, Start: uint32(start), End: uint32(end)} //nolint:gosec // G115: offsets within a loaded file.
}
