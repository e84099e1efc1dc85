// Package store persists the correspondence index between process runs.
//
// Two backends implement the Snapshot interface:
//
//   - FileSnapshot: a single JSON document at <dataDir>/persistentMessageMap.db,
//     the format older deployments already have on disk. Outer keys are
//     bridge names, inner keys are "<directionToken> <originId>" entry keys,
//     values are target-id lists read as sets.
//   - SQLiteSnapshot: the same contract on a SQLite database, one row per
//     (bridge, entry key, target id) triple.
//
// Both backends fail open: missing, empty, or unreadable prior state loads
// as an empty index. Write failures are returned to the caller.
package store
