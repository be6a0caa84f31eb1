package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ccabi/internal/arch"
	"ccabi/internal/decl"
	"ccabi/internal/diag"
	"ccabi/internal/observ"
	"ccabi/internal/report"
	"ccabi/internal/source"
	"ccabi/internal/trace"
)

// DeclFileSuffix is the suffix of declaration files found in directories.
const DeclFileSuffix = ".abi.toml"

// Options configures LayoutFiles.
type Options struct {
	Arch arch.Architecture
	// PackStruct is the -fpack-struct value Arch was built with, in bytes.
	PackStruct     int
	Jobs           int
	MaxDiagnostics int
	// Cache may be nil.
	Cache    *DiskCache
	Progress ProgressSink
	Timings  bool
}

// FileResult is the outcome of laying out one declaration file.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Report is nil if the file could not be read or decoded.
	Report *report.File
	Bag    *diag.Bag
	Cached bool
	Timing *observ.Report
}

// ListDeclFiles expands args: directories are searched recursively for
// declaration files, files are taken as given. The result is sorted and
// free of duplicates.
func ListDeclFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, DeclFileSuffix) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// LayoutFiles loads and lays out every file in parallel, at most
// opts.Jobs at a time. Problems with a file end up in its Bag; the
// returned error is only for cancellation.
func LayoutFiles(ctx context.Context, files []string, opts Options) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// The file set is filled before the workers start and only read by
	// them.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			// an empty stand-in gives the load diagnostic a file to point at
			loadErrors[path] = err
			id = fileSet.Add(path, nil, source.FileVirtual)
		}
		fileIDs[path] = id
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 100
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "layout files", trace.CurrentSpan(ctx))
	defer span.End(fmt.Sprintf("%d files", len(files)))
	ctx = trace.WithSpan(ctx, span)

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(maxDiags)
			results[i] = FileResult{Path: path, FileID: fileIDs[path], Bag: bag}
			if loadErr, failed := loadErrors[path]; failed {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
					Primary:  source.Span{File: fileIDs[path]},
				})
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}
			layoutFile(gctx, fileSet, &results[i], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func layoutFile(ctx context.Context, fileSet *source.FileSet, res *FileResult, opts Options) {
	file := fileSet.Get(res.FileID)
	timer := observ.NewTimer()
	key := CacheKey(file.Hash, opts.Arch.Triple(), opts.PackStruct)

	if opts.Cache != nil {
		endCache := timer.Phase("cache")
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		endCache("")
		if err != nil {
			res.Bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.IOCacheError,
				Message:  "ignoring unreadable cache entry: " + err.Error(),
				Primary:  source.Span{File: res.FileID},
			})
		}
		if hit && payload.ContentHash == file.Hash {
			rep := payload.Report
			rep.Path = fileSet.DisplayPath(res.FileID)
			res.Report = &rep
			res.Cached = true
			restoreDiags(res.Bag, res.FileID, payload.Diags)
			finishFile(res, timer, opts, StatusCached)
			return
		}
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, res.Path, trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	emit(opts.Progress, Event{File: res.Path, Stage: StageLayout, Status: StatusWorking})
	endLayout := timer.Phase("layout")
	f, err := decl.Load(ctx, fileSet, res.FileID, opts.Arch, diag.NewBagReporter(res.Bag))
	endLayout(fmt.Sprintf("%d diagnostics", res.Bag.Len()))

	if err == nil {
		emit(opts.Progress, Event{File: res.Path, Stage: StageReport, Status: StatusWorking})
		endReport := timer.Phase("report")
		rep := report.FromFile(opts.Arch, f)
		res.Report = &rep
		if opts.Cache != nil {
			payload := &DiskPayload{ContentHash: file.Hash, Report: rep, Diags: cacheDiags(res.Bag.Items())}
			if err := opts.Cache.Put(key, payload); err != nil {
				res.Bag.Add(diag.Diagnostic{
					Severity: diag.SevWarning,
					Code:     diag.IOCacheError,
					Message:  "failed to write cache entry: " + err.Error(),
					Primary:  source.Span{File: res.FileID},
				})
			}
		}
		endReport("")
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	span.End(string(status))
	finishFile(res, timer, opts, status)
}

func finishFile(res *FileResult, timer *observ.Timer, opts Options, status Status) {
	rep := timer.Report()
	res.Timing = &rep
	if opts.Timings {
		addTimingDiagnostic(res.Bag, res.FileID, timingNote{Path: res.Path, Cached: res.Cached, TotalMS: rep.TotalMS, Phases: rep.Phases})
	}
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: res.Path, Stage: StageReport, Status: status, Elapsed: timer.Total()})
}

// Reports returns the reports of the results that have one, in order.
func Reports(results []FileResult) []report.File {
	var out []report.File
	for _, r := range results {
		if r.Report != nil {
			out = append(out, *r.Report)
		}
	}
	return out
}
