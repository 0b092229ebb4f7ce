package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"sysvabi/internal/cheader"
	"sysvabi/internal/dcache"
	"sysvabi/internal/observ"
	"sysvabi/internal/report"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [flags] <header.h>...",
	Short: "Classify the structs and prototypes declared in C headers",
	Long: `Classify reports size, alignment, eightbyte classes and the canonical
IR type of every struct declared in each header, and the lowered IR
signature of every function prototype.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("format", "", "output format (pretty|json|msgpack)")
	classifyCmd.Flags().Int("jobs", 0, "headers analyzed in parallel (default: number of CPUs)")
	classifyCmd.Flags().Bool("no-cache", false, "neither read nor write the report cache")
	classifyCmd.Flags().Int("width", 0, "truncate type columns to this many cells (0: no limit)")
	classifyCmd.Flags().StringArrayP("include", "I", nil, "additional include directory")
	classifyCmd.Flags().StringArrayP("define", "D", nil, "predefine a macro (NAME or NAME=VALUE)")
}

func runClassify(cmd *cobra.Command, args []string) (err error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		return err
	}
	defer func() { cleanup(err) }()

	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if formatValue == "" {
		formatValue = s.cfg.Output.Format
	}
	format, err := report.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return err
	}
	parse, err := parseOptions(cmd, s)
	if err != nil {
		return err
	}

	a := &analyzer{
		parse: parse,
		timer: observ.NewTimer(),
		warn:  func(format string, args ...any) { s.warnf(cmd, format, args...) },
	}
	if s.cfg.CacheEnabled() && !noCache {
		cache, cacheErr := dcache.Open(s.cfg.Cache.Dir, "sysvabi")
		if cacheErr != nil {
			s.warnf(cmd, "report cache disabled: %v", cacheErr)
		} else {
			a.cache = cache
		}
	}

	reports, err := a.run(cmd.Context(), args, jobs)
	if err != nil {
		return err
	}

	render := a.timer.Begin("render")
	err = report.Write(cmd.OutOrStdout(), format, reports, report.Options{Color: s.color, Width: width})
	a.timer.End(render, string(format))
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if s.timings {
		printTimings(cmd.ErrOrStderr(), a.timer)
	}
	return nil
}

// parseOptions merges -I/-D with the [parse] section of the config.
func parseOptions(cmd *cobra.Command, s *settings) (cheader.Options, error) {
	includes, err := cmd.Flags().GetStringArray("include")
	if err != nil {
		return cheader.Options{}, err
	}
	defs, err := cmd.Flags().GetStringArray("define")
	if err != nil {
		return cheader.Options{}, err
	}

	opts := cheader.Options{
		IncludePaths: append(append([]string(nil), s.cfg.Parse.IncludePaths...), includes...),
		Defines:      make(map[string]string, len(s.cfg.Parse.Defines)+len(defs)),
	}
	for name, value := range s.cfg.Parse.Defines {
		opts.Defines[name] = value
	}
	for _, d := range defs {
		name, value, ok := cutDefine(d)
		if !ok {
			return cheader.Options{}, fmt.Errorf("invalid -D value %q", d)
		}
		opts.Defines[name] = value
	}
	return opts, nil
}

// cutDefine splits NAME=VALUE; a bare NAME defines it as 1, like cc -D.
func cutDefine(d string) (name, value string, ok bool) {
	name, value, found := strings.Cut(d, "=")
	if !found {
		value = "1"
	}
	return name, value, name != ""
}
