package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"sysvabi/internal/cheader"
	"sysvabi/internal/dcache"
	"sysvabi/internal/observ"
	"sysvabi/internal/report"
	"sysvabi/internal/sysv"
	"sysvabi/internal/trace"
	"sysvabi/internal/version"
)

// analyzer classifies headers. Each header gets its own interner and ABI,
// so headers run in parallel without sharing any unsynchronized cache.
type analyzer struct {
	parse cheader.Options
	cache *dcache.Cache // nil disables the on-disk cache
	timer *observ.Timer
	warn  func(format string, args ...any)
}

// run analyzes paths with at most jobs headers in flight. Reports come back
// in argument order.
func (a *analyzer) run(ctx context.Context, paths []string, jobs int) ([]*report.Report, error) {
	reports := make([]*report.Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			r, err := a.header(ctx, path)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (a *analyzer) header(ctx context.Context, path string) (*report.Report, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+filepath.Base(path), trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	phase := a.timer.Begin(path)
	note := ""
	defer func() {
		a.timer.End(phase, note)
		span.End(note)
	}()

	tool := version.Tool()
	var key dcache.Digest
	if a.cache != nil {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		key = dcache.Key(src, a.parse.IncludePaths, a.parse.Defines, tool)
		r, ok, err := a.cache.Get(key, tool)
		switch {
		case err != nil:
			a.warnf("%s: ignoring cache entry: %v", path, err)
		case ok:
			note = "cached"
			r.Header = path
			return r, nil
		}
	}

	parse := trace.Begin(tracer, trace.ScopePass, "parse", trace.CurrentSpan(ctx))
	unit, err := cheader.Load(ctx, a.parse, path)
	parse.End("")
	if err != nil {
		note = trace.FailedDetail
		return nil, err
	}

	abi := sysv.New(unit.Types, sysv.WithTracer(tracer))
	classify := trace.Begin(tracer, trace.ScopePass, "classify", trace.CurrentSpan(ctx))
	r, err := report.Build(unit, abi)
	stats := abi.Stats()
	classify.WithExtra("canonical_hits", strconv.FormatUint(stats.CanonicalHits, 10)).
		WithExtra("canonical_misses", strconv.FormatUint(stats.CanonicalMisses, 10)).
		WithExtra("layout_hits", strconv.FormatUint(stats.LayoutHits, 10)).
		WithExtra("layout_misses", strconv.FormatUint(stats.LayoutMisses, 10))
	classify.End("")
	if err != nil {
		note = trace.FailedDetail
		return nil, err
	}
	note = fmt.Sprintf("%d records, %d functions", len(r.Records), len(r.Funcs))

	if a.cache != nil {
		if err := a.cache.Put(key, tool, r); err != nil {
			a.warnf("%s: %v", path, err)
		}
	}
	return r, nil
}

func (a *analyzer) warnf(format string, args ...any) {
	if a.warn != nil {
		a.warn(format, args...)
	}
}
