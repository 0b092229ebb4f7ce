package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sysvabi/internal/trace"
)

// setupTracing inspects trace-related flags and config and initializes the
// tracer. The returned cleanup takes the command's error so a ring tracer
// can dump its history when the run fails.
func setupTracing(cmd *cobra.Command, s *settings) (func(runErr error), error) {
	root := cmd.Root()

	traceOutput := s.cfg.Trace.Output
	if root.PersistentFlags().Changed("trace") {
		v, err := root.PersistentFlags().GetString("trace")
		if err != nil {
			return nil, fmt.Errorf("failed to get trace flag: %w", err)
		}
		traceOutput = v
	}

	levelStr := s.cfg.Trace.Level
	if root.PersistentFlags().Changed("trace-level") {
		v, err := root.PersistentFlags().GetString("trace-level")
		if err != nil {
			return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
		levelStr = v
	}

	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}

	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// --trace without a level means "show phases".
	if level == trace.LevelOff && root.PersistentFlags().Changed("trace") && traceOutput != "" {
		level = trace.LevelPhase
	}

	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(error) {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	root.SetContext(trace.WithTracer(root.Context(), tracer))
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	driver := trace.Begin(tracer, trace.ScopeDriver, cmd.Name(), 0)
	cmd.SetContext(trace.WithSpan(cmd.Context(), driver))

	cleanup := func(runErr error) {
		result := "ok"
		if runErr != nil {
			result = runErr.Error()
		}
		driver.End(result)

		if runErr != nil {
			if _, err := trace.DumpRing(tracer, cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
