// ABOUTME: Snapshot interface and index type for durable correspondence state.
// ABOUTME: Backends load the full index at startup and rewrite it whole on every save.

package store

// Index is the serialized form of the correspondence index: bridge name to
// entry key to target-id list. The lists are interpreted as sets; duplicates
// collapse on load and order carries no meaning.
type Index map[string]map[string][]string

// SnapshotFile is the flat-file snapshot name inside the data directory.
// The name is fixed for compatibility with previously written snapshots.
const SnapshotFile = "persistentMessageMap.db"

// Snapshot persists the full correspondence index. Load is called once at
// construction; Save rewrites the entire index synchronously. Implementations
// treat missing or unreadable prior state as an empty index rather than
// failing, and surface write failures to the caller.
type Snapshot interface {
	Load() (Index, error)
	Save(Index) error
	Close() error
}
