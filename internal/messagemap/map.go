// ABOUTME: Bidirectional, time-expiring index linking relayed message IDs across a bridge.
// ABOUTME: Supports forward/reverse lookup, per-insert expiry, and optional write-through snapshots.

package messagemap

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/echorelay/echorelay/internal/longtimer"
	"github.com/echorelay/echorelay/internal/store"
)

// targetSet holds the destination message ids produced by relaying one
// origin message. A single origin can fan out to several destinations.
type targetSet map[string]struct{}

// Map is the per-process correspondence index: bridge name to entry key to
// target-id set. One message relayed from platform A to platform B is
// recorded under (direction, origin id) so that later edits or deletions on
// either side can find their counterpart.
//
// All operations are safe for concurrent use; expiry callbacks take the same
// mutex as inserts and lookups.
type Map struct {
	mu      sync.RWMutex
	bridges map[string]map[string]targetSet
	timeout time.Duration
	snap    store.Snapshot
	logger  *slog.Logger
	timers  map[*longtimer.Timer]struct{}
	closed  bool
}

// New creates a Map whose entries live for timeout after each insert.
// snap may be nil, which disables persistence. When snap is non-nil its
// contents pre-populate the index; rehydrated entries get a fresh full
// timeout window. Load problems fall back to an empty index.
func New(timeout time.Duration, snap store.Snapshot, logger *slog.Logger) *Map {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Map{
		bridges: make(map[string]map[string]targetSet),
		timeout: timeout,
		snap:    snap,
		logger:  logger.With("component", "messagemap"),
		timers:  make(map[*longtimer.Timer]struct{}),
	}

	if snap != nil {
		idx, err := snap.Load()
		if err != nil {
			m.logger.Warn("loading snapshot failed, starting empty", "error", err)
			idx = store.Index{}
		}
		m.rehydrate(idx)
	}

	return m
}

// rehydrate fills the index from a loaded snapshot, collapsing duplicate
// target ids and scheduling expiry for every key.
func (m *Map) rehydrate(idx store.Index) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for bridge, entries := range idx {
		sub := make(map[string]targetSet, len(entries))
		for key, targets := range entries {
			set := make(targetSet, len(targets))
			for _, id := range targets {
				set[id] = struct{}{}
			}
			sub[key] = set
			m.scheduleExpiryLocked(sub, key)
		}
		m.bridges[bridge] = sub
	}
}

// Insert records that the message fromID, originating on the platform named
// by dir, was relayed across bridge as toID. Adding an already-present
// target id is a no-op. Each insert schedules its own one-shot removal of
// the whole entry key after the configured timeout; re-inserting an existing
// key does not extend its life — the earliest scheduled removal still fires
// and deletes the key unconditionally. Callers must not rely on timeout
// extension across repeated inserts of the same key.
//
// When persistence is enabled the full index is re-serialized and written
// synchronously; a write failure is returned and the in-memory state keeps
// the new entry.
func (m *Map) Insert(dir Direction, bridge, fromID, toID string) error {
	if !dir.Valid() {
		m.logger.Error("unknown direction, insert skipped",
			"direction", string(dir),
			"bridge", bridge,
			"from_id", fromID,
		)
		return nil
	}
	if bridge == "" || fromID == "" || toID == "" {
		m.logger.Error("empty identifier, insert skipped",
			"bridge", bridge,
			"from_id", fromID,
			"to_id", toID,
		)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.bridges[bridge]
	if !ok {
		sub = make(map[string]targetSet)
		m.bridges[bridge] = sub
	}

	key := entryKey(dir, fromID)
	set, ok := sub[key]
	if !ok {
		set = make(targetSet)
		sub[key] = set
	}
	set[toID] = struct{}{}

	m.scheduleExpiryLocked(sub, key)

	if m.snap != nil {
		if err := m.snap.Save(m.indexLocked()); err != nil {
			return fmt.Errorf("persisting correspondence map: %w", err)
		}
	}
	return nil
}

// scheduleExpiryLocked arms a one-shot removal of key from sub after the
// configured timeout. The callback closes over the sub-map reference and the
// key; it deletes unconditionally, so whichever timer fires first wins.
// Must be called with mu held.
func (m *Map) scheduleExpiryLocked(sub map[string]targetSet, key string) {
	if m.closed {
		return
	}

	var t *longtimer.Timer
	t = longtimer.After(m.timeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(sub, key)
		delete(m.timers, t)
	})
	m.timers[t] = struct{}{}
}

// Corresponding returns the ids of the messages that fromID (originating per
// dir) was relayed to across bridge. Misses of any kind — unknown bridge,
// unknown key, expired entry, invalid direction — yield an empty slice;
// callers cannot distinguish "never existed" from "expired".
func (m *Map) Corresponding(dir Direction, bridge, fromID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.bridges[bridge][entryKey(dir, fromID)]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// CorrespondingReverse finds the origin message id whose relay produced
// toID on bridge. It scans the bridge's live entry keys and returns the
// direction-stripped origin id of the first key whose target set contains
// toID, or an empty slice on no match. Scan order is not deterministic; if
// toID somehow appears under multiple keys, which one wins is unspecified.
func (m *Map) CorrespondingReverse(bridge, toID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, set := range m.bridges[bridge] {
		if _, ok := set[toID]; !ok {
			continue
		}
		origin, ok := splitEntryKey(key)
		if !ok {
			continue
		}
		return []string{origin}
	}
	return nil
}

// indexLocked converts the live index to its serialized form. Target ids are
// sorted so repeated saves of the same state produce identical bytes.
// Must be called with mu held.
func (m *Map) indexLocked() store.Index {
	idx := make(store.Index, len(m.bridges))
	for bridge, sub := range m.bridges {
		entries := make(map[string][]string, len(sub))
		for key, set := range sub {
			ids := make([]string, 0, len(set))
			for id := range set {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			entries[key] = ids
		}
		idx[bridge] = entries
	}
	return idx
}

// Close stops all outstanding expiry timers and closes the snapshot backend.
// Safe to call multiple times.
func (m *Map) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	for t := range m.timers {
		t.Stop()
	}
	m.timers = make(map[*longtimer.Timer]struct{})

	if m.snap != nil {
		return m.snap.Close()
	}
	return nil
}
