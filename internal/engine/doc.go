// Package engine contains the grouping core: the arena of groups, the
// FieldKey index, and the strategies that merge groups as batches arrive.
// It never imports app, writers, cli, or pipeline; keep it domain-only.
//
// Two strategies share the Grouper interface:
//
//   - split-lock: the arena lock covers group creation and merging only; the
//     index is updated after the lock is released. A worker holding a stale
//     id can reach a tombstoned group; that attempt is refused with
//     ErrTombstoned.
//   - union-find: parent pointers with path compression and union by rank;
//     one lock covers resolve, merge, and index update.
package engine
