// Package pipeline reads lines in order, cuts them into batches, and runs the
// batches on a fixed pool of workers through a BatchProcessor.
//
// The producer keeps at most WindowFactor×Workers batches in flight; past
// that it blocks on the next completion. Every batch reports a result or a
// fault, and FaultPolicy decides whether a fault ends the run.
//
// The only contract to implement is BatchProcessor (ProcessBatch).
// This keeps the pipeline swappable and testable.
package pipeline
