package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ccabi/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ccabi",
	Short: "C ABI layout calculator",
	Long: `ccabi computes the memory layout of C structs, unions and enums the way
gcc 4.8 does for the selected target, from *.abi.toml declaration files`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(intCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("target", "", "target triple (overrides ccabi.toml)")
	flags.String("config", "", "path to ccabi.toml (default: search upwards from the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per file")

	flags.String("trace", "", "write trace events to this file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring|both")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main runs the root command. Any error exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color for output going to f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	return resolveColor(value, func() bool { return isTerminal(f) })
}

func resolveColor(value string, tty func() bool) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return tty(), nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
