package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/spf13/cobra"

	"sysvabi/internal/backend/llvm"
	"sysvabi/internal/cheader"
	"sysvabi/internal/observ"
	"sysvabi/internal/sysv"
	"sysvabi/internal/trace"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <header.h>",
	Short: "Print the LLVM IR call harness for prototypes in a C header",
	Long: `Lower emits, for every prototype in the header (or only --func), a callee
declared with the lowered signature and a caller that decodes its canonical
arguments, re-encodes them for the call and does the same for the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("func", "", "only lower the named prototype")
	lowerCmd.Flags().Bool("demo", false, "also emit <name>_demo calling the harness with constant arguments")
	lowerCmd.Flags().StringP("output", "o", "", "write the module to a file instead of stdout")
	lowerCmd.Flags().StringArrayP("include", "I", nil, "additional include directory")
	lowerCmd.Flags().StringArrayP("define", "D", nil, "predefine a macro (NAME or NAME=VALUE)")
}

func runLower(cmd *cobra.Command, args []string) (err error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		return err
	}
	defer func() { cleanup(err) }()

	funcName, err := cmd.Flags().GetString("func")
	if err != nil {
		return err
	}
	demo, err := cmd.Flags().GetBool("demo")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	parse, err := parseOptions(cmd, s)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	phase := timer.Begin("parse")
	unit, err := cheader.Load(cmd.Context(), parse, args[0])
	timer.End(phase, args[0])
	if err != nil {
		return err
	}

	funcs, err := selectFuncs(unit, funcName)
	if err != nil {
		return err
	}

	phase = timer.Begin("lower")
	mod, err := lowerModule(cmd.Context(), unit, funcs, demo)
	timer.End(phase, fmt.Sprintf("%d functions", len(funcs)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputPath != "" && outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, mod.String()); err != nil {
		return fmt.Errorf("failed to write module: %w", err)
	}

	if s.timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	return nil
}

// selectFuncs returns every prototype of unit, or only the one called name.
func selectFuncs(unit *cheader.Unit, name string) ([]cheader.NamedFunc, error) {
	if name == "" {
		if len(unit.Funcs) == 0 {
			return nil, fmt.Errorf("%s: no function prototypes", unit.Path)
		}
		return unit.Funcs, nil
	}
	fn, ok := unit.Func(name)
	if !ok {
		return nil, fmt.Errorf("%s: no prototype named %q", unit.Path, name)
	}
	return []cheader.NamedFunc{fn}, nil
}

func lowerModule(ctx context.Context, unit *cheader.Unit, funcs []cheader.NamedFunc, demo bool) (*ir.Module, error) {
	tracer := trace.FromContext(ctx)
	abi := sysv.New(unit.Types, sysv.WithTracer(tracer))

	mod := ir.NewModule()
	mod.SourceFilename = unit.Path
	mod.TargetTriple = abi.Layout().Target.Triple
	for _, fn := range funcs {
		span := trace.Begin(tracer, trace.ScopeUnit, "lower:"+fn.Name, trace.CurrentSpan(ctx))
		h, err := llvm.EmitHarness(mod, abi, fn.Name, fn.Fn)
		if err == nil && demo {
			err = llvm.EmitDemo(mod, abi, fn.Name, fn.Fn, h)
		}
		span.End(fn.Fn.String(unit.Types))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Pos, err)
		}
	}
	return mod, nil
}
