// Package trace provides the tracing and logging subsystem for sysvabi.
//
// Tracing records which headers were parsed, which passes ran over them and,
// at debug level, every classification decision the ABI engine makes.
//
// # Usage
//
//	sysvabi classify --trace=- --trace-level=debug point.h
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - RingTracer: last N events in memory, dumped when a run fails
//   - MultiTracer: fans out to several tracers
//
// # Scopes
//
//   - ScopeDriver: top-level CLI operations
//   - ScopePass: parse, classify, lower, render
//   - ScopeUnit: per-header processing
//   - ScopeType: per-type ABI decisions
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "classify", 0)
//	defer span.End("")
package trace
