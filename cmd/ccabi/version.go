package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"ccabi/internal/arch"
	"ccabi/internal/report"
	"ccabi/internal/version"
)

// buildInfo is what `ccabi version` prints. Commit, Built and Go are only
// filled in with --verbose.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Built   string `json:"built,omitempty"`
	Go      string `json:"go,omitempty"`
	// Target and Schema decide whether cached layouts can be reused.
	Target string `json:"default_target"`
	Schema uint16 `json:"report_schema"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the ccabi version and build details",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolP("verbose", "v", false, "include commit, build date and Go version")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	info := currentBuild(verbose)
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		color, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		printBuild(cmd.OutOrStdout(), info, color)
		return nil
	default:
		return fmt.Errorf("invalid --format value %q (expected pretty|json)", format)
	}
}

func currentBuild(verbose bool) buildInfo {
	info := buildInfo{
		Version: cmp.Or(strings.TrimSpace(version.Version), "dev"),
		Target:  arch.DefaultTriple,
		Schema:  report.SchemaVersion,
	}
	if verbose {
		info.Commit = cmp.Or(strings.TrimSpace(version.GitCommit), "unknown")
		info.Built = cmp.Or(strings.TrimSpace(version.BuildDate), "unknown")
		info.Go = runtime.Version()
	}
	return info
}

func printBuild(w io.Writer, info buildInfo, color bool) {
	fmt.Fprintf(w, "ccabi %s (%s, report schema %d)\n", version.Colored(info.Version, color), info.Target, info.Schema)
	if info.Go == "" {
		return
	}
	fmt.Fprintf(w, "  commit %s\n  built  %s\n  go     %s\n", info.Commit, info.Built, info.Go)
}
