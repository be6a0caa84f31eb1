package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ccabi/internal/diag"
	"ccabi/internal/diagfmt"
	"ccabi/internal/driver"
	"ccabi/internal/observ"
	"ccabi/internal/project"
	"ccabi/internal/report"
	"ccabi/internal/source"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [files or directories...]",
	Short: "Lay out the declarations of *.abi.toml files",
	Long: `Lay out every struct, union and enum of the given declaration files and
print sizes, alignments, member offsets and enum types. Directories are
searched recursively for *.abi.toml files; without arguments the project root
(or the working directory) is searched.`,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringP("format", "f", "", "report format (table|json|msgpack), default from ccabi.toml")
	layoutCmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")
	layoutCmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	layoutCmd.Flags().IntP("jobs", "j", 0, "maximum number of files laid out in parallel (0 = GOMAXPROCS)")
	layoutCmd.Flags().String("ui", "auto", "show progress (auto|on|off)")
	layoutCmd.Flags().Bool("no-cache", false, "neither read nor write the layout cache")
	layoutCmd.Flags().Bool("clear-cache", false, "drop all cached layouts before running")
}

// errLayoutFailed is returned when some file had errors; they have been
// printed already.
var errLayoutFailed = errors.New("layout failed")

type layoutFlags struct {
	format     string
	output     string
	diagFormat string
	jobs       int
	ui         uiMode
	noCache    bool
	clearCache bool
	target     string
	config     string
	timings    bool
	maxDiags   int
}

func readLayoutFlags(cmd *cobra.Command) (layoutFlags, error) {
	var (
		lf  layoutFlags
		err error
	)
	local := cmd.Flags()
	persistent := cmd.Root().PersistentFlags()
	if lf.format, err = local.GetString("format"); err != nil {
		return lf, err
	}
	if lf.output, err = local.GetString("output"); err != nil {
		return lf, err
	}
	if lf.diagFormat, err = local.GetString("diag-format"); err != nil {
		return lf, err
	}
	if lf.jobs, err = local.GetInt("jobs"); err != nil {
		return lf, err
	}
	uiValue, err := local.GetString("ui")
	if err != nil {
		return lf, err
	}
	if lf.ui, err = readUIMode(uiValue); err != nil {
		return lf, err
	}
	if lf.noCache, err = local.GetBool("no-cache"); err != nil {
		return lf, err
	}
	if lf.clearCache, err = local.GetBool("clear-cache"); err != nil {
		return lf, err
	}
	if lf.target, err = persistent.GetString("target"); err != nil {
		return lf, err
	}
	if lf.config, err = persistent.GetString("config"); err != nil {
		return lf, err
	}
	if lf.timings, err = persistent.GetBool("timings"); err != nil {
		return lf, err
	}
	if lf.maxDiags, err = persistent.GetInt("max-diagnostics"); err != nil {
		return lf, err
	}

	lf.diagFormat = strings.ToLower(strings.TrimSpace(lf.diagFormat))
	switch lf.diagFormat {
	case "pretty", "short", "json":
	default:
		return lf, fmt.Errorf("invalid --diag-format value %q (expected pretty|short|json)", lf.diagFormat)
	}
	return lf, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	err = layout(cmd, args)
	cleanup(err != nil)
	return err
}

func layout(cmd *cobra.Command, args []string) error {
	lf, err := readLayoutFlags(cmd)
	if err != nil {
		return err
	}
	stderrColor, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	prettyOpts := diagfmt.PrettyOpts{Color: stderrColor, Context: 1, ShowNotes: true}

	manifest, err := loadManifest(lf, func(bag *diag.Bag, fs *source.FileSet) {
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, prettyOpts)
	})
	if err != nil {
		return err
	}
	cfg := manifest.Config
	if lf.target != "" {
		cfg.Target.Triple = lf.target
	}
	if lf.format != "" {
		cfg.Output.Format = strings.ToLower(lf.format)
	}
	switch cfg.Output.Format {
	case project.FormatTable, project.FormatJSON, project.FormatMsgpack:
	default:
		return fmt.Errorf("invalid report format %q (expected table|json|msgpack)", cfg.Output.Format)
	}
	abi, err := cfg.Arch()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		root := manifest.Root
		if root == "" {
			root = "."
		}
		args = []string{root}
	}
	files, err := driver.ListDeclFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", driver.DeclFileSuffix)
	}

	opts := driver.Options{
		Arch:           abi,
		PackStruct:     int(cfg.Target.PackStruct),
		Jobs:           lf.jobs,
		MaxDiagnostics: lf.maxDiags,
		// timing diagnostics only make sense in machine readable output
		Timings: lf.timings && lf.diagFormat == "json",
	}
	if !lf.noCache && !cfg.Cache.Disabled {
		opts.Cache = openCache(cmd.ErrOrStderr(), cfg, lf.clearCache)
	}

	var (
		fileSet *source.FileSet
		results []driver.FileResult
	)
	if shouldUseTUI(lf.ui, len(files)) {
		title := fmt.Sprintf("ccabi layout (%s)", abi.Triple())
		fileSet, results, err = runLayoutWithUI(cmd.Context(), title, files, opts)
	} else {
		fileSet, results, err = driver.LayoutFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}

	bag := diag.NewBag(lf.maxDiags)
	failed := 0
	var timing observ.Report
	for _, res := range results {
		bag.Merge(res.Bag)
		if res.Bag.HasErrors() {
			failed++
		}
		if res.Timing != nil {
			timing.Add(*res.Timing)
		}
	}
	bag.Sort()
	bag.Dedup()
	if err := writeDiagnostics(cmd.ErrOrStderr(), bag, fileSet, lf.diagFormat, prettyOpts); err != nil {
		return err
	}

	if err := writeReport(cmd, lf.output, cfg.Output.Format, driver.Reports(results)); err != nil {
		return err
	}

	if lf.diagFormat != "json" {
		writeSummary(cmd.ErrOrStderr(), bag)
		if lf.timings {
			fmt.Fprint(cmd.ErrOrStderr(), timing.Summary())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files had errors", errLayoutFailed, failed, len(files))
	}
	return nil
}

// loadManifest loads --config if given, otherwise searches for ccabi.toml
// from the working directory. Configuration diagnostics go to show.
func loadManifest(lf layoutFlags, show func(*diag.Bag, *source.FileSet)) (*project.Manifest, error) {
	fs := source.NewFileSet()
	bag := diag.NewBag(lf.maxDiags)
	r := diag.NewBagReporter(bag)

	var (
		manifest *project.Manifest
		err      error
	)
	if lf.config != "" {
		var cfg project.Config
		cfg, err = project.LoadConfig(fs, lf.config, r)
		if err == nil {
			manifest = &project.Manifest{Path: lf.config, Root: filepath.Dir(lf.config), Config: cfg}
		}
	} else {
		var wd string
		wd, err = os.Getwd()
		if err == nil {
			manifest, _, err = project.LoadManifest(fs, wd, r)
		}
	}
	if bag.Len() > 0 {
		bag.Sort()
		show(bag, fs)
	}
	return manifest, err
}

// openCache opens the layout cache. A cache that cannot be opened only
// costs speed, so problems are printed and nil is returned.
func openCache(w io.Writer, cfg project.Config, clear bool) *driver.DiskCache {
	dir, err := cfg.CacheDir()
	if err != nil {
		fmt.Fprintf(w, "cache disabled: %v\n", err)
		return nil
	}
	cache, err := driver.OpenDiskCache(dir)
	if err != nil {
		fmt.Fprintf(w, "cache disabled: %v\n", err)
		return nil
	}
	if clear {
		if err := cache.DropAll(); err != nil {
			fmt.Fprintf(w, "failed to clear cache: %v\n", err)
		}
	}
	return cache
}

func writeDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, format string, opts diagfmt.PrettyOpts) error {
	switch format {
	case "json":
		if bag.Len() == 0 {
			return nil
		}
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	case "short":
		if bag.Len() == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, diag.FormatShort(bag.Items(), fs, opts.ShowNotes))
		return err
	default:
		diagfmt.Pretty(w, bag, fs, opts)
		return nil
	}
}

// writeSummary prints "N errors, M warnings" when there were any.
func writeSummary(w io.Writer, bag *diag.Bag) {
	errs, warns := bag.Counts()
	if errs == 0 && warns == 0 {
		return
	}
	fmt.Fprintf(w, "%s, %s", plural(errs, "error"), plural(warns, "warning"))
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, " (%s not shown)", plural(n, "diagnostic"))
	}
	fmt.Fprintln(w)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func writeReport(cmd *cobra.Command, output, format string, files []report.File) (err error) {
	out := cmd.OutOrStdout()
	color := false
	if output != "" {
		f, cerr := os.Create(output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	} else if format == project.FormatTable {
		if color, err = useColor(cmd, os.Stdout); err != nil {
			return err
		}
	}

	switch format {
	case project.FormatJSON:
		return report.WriteJSON(out, files)
	case project.FormatMsgpack:
		return report.WriteMsgpack(out, files)
	default:
		return report.RenderTable(out, files, report.TableOptions{Color: color})
	}
}
