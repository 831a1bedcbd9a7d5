// Package store provides SQLite-backed durable storage for conversion runs.
//
// The store is an append-only log with:
//   - Runs: one record per converted circuit (input, options, output, stats)
//   - Replays: the outcome of re-running a stored conversion
//
// # Ordering
//
// All ordering uses seq INTEGER (logical clock), never timestamps. Queries
// that return several rows use ORDER BY seq ASC, id ASC COLLATE BINARY so
// results are identical across replays.
//
// # Encoding
//
// Circuits are stored as JSON. Options are stored as canonical JSON
// (RFC 8785, see internal/ir) so equal settings produce equal text.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
