// Package engine runs circuit conversions and records them.
//
// ARCHITECTURE:
//
// Single-Writer Run Loop:
// Conversion jobs are processed one at a time by a single goroutine. This
// ensures:
// - Runs are numbered in submission order
// - The conversion log is written by one writer
// - Replay sees the same inputs in the same order
//
// Job Processing Flow:
// 1. Jobs enqueued to a FIFO queue (Enqueue)
// 2. Engine.Run() dequeues jobs one at a time
// 3. The circuit is hashed, checked against the ops quota and converted
// 4. The run record is written to SQLite when a store is attached
//
// A conversion that fails (unsupported operation, tolerance miss) is still
// a run: it is recorded with status "error" and the loop moves on.
//
// Logical Clock:
// Every run and replay is stamped with a monotonic seq from Clock.Next().
// Wall-clock timestamps are never used for ordering.
package engine
