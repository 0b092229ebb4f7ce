// Package main implements the sysvabi CLI.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sysvabi/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sysvabi",
	Short: "x86-64 System V calling convention inspector",
	Long: `sysvabi classifies C types into System V eightbyte classes and shows the
canonical LLVM IR types a function boundary uses to pass them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to sysvabi.toml (default: search from the working directory upwards)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
}

// main executes the root command and exits with status 1 on error.
// An interrupt cancels the context so in-flight headers stop early.
func main() {
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
