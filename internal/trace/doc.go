// Package trace provides structured tracing for ccabi.
//
// Tracing follows a batch run from the driver down to single member
// placements, which helps when a layout differs from what the reference
// compiler produced.
//
// # Usage
//
//	ccabi layout --trace=- --trace-level=debug defs.abi.toml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately as text or NDJSON
//   - RingTracer: keeps the last N events for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase shows the command span. LevelDetail adds file and
// declaration spans, and LevelDebug adds per-member placement points.
// LevelError records per-file spans into a ring that the CLI only dumps
// (see FindRing) when a run fails.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, parentID)
//	defer span.End("")
package trace
