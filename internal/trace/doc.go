// Package trace records begin/end spans around the work docprint does.
//
// Spans nest: a driver run contains one span per input file, and each file
// contains spans for decoding, break propagation and printing. Events go to
// a Tracer chosen at startup:
//
//   - Nop: tracing disabled
//   - StreamTracer: writes each event as it happens
//   - RingTracer: keeps the last N events in memory for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only the ring dump on failure
//   - LevelPhase: driver spans
//   - LevelDetail: per-file spans
//   - LevelDebug: everything including printer passes
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)
//	defer span.End("")
//
// Begin and Point take the tracer and parent span id explicitly for code
// that has no context at hand.
package trace
