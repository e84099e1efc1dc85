// ABOUTME: Flat-file snapshot backend writing persistentMessageMap.db as nested JSON.
// ABOUTME: Fails open to an empty index on missing or corrupt files; rewrites whole file per save.

package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileSnapshot stores the index as a single JSON document at
// <dataDir>/persistentMessageMap.db. The outer object is keyed by bridge
// name, the inner objects by entry-key strings of the form
// "<directionToken> <originId>".
type FileSnapshot struct {
	path   string
	logger *slog.Logger
}

// NewFileSnapshot prepares the snapshot file under dataDir, creating the
// directory and an empty file if absent. Setup problems (unwritable
// directory, permission errors) are logged and do not fail construction:
// the snapshot stays usable and Load yields an empty index; the first Save
// will surface the underlying error instead.
func NewFileSnapshot(dataDir string, logger *slog.Logger) *FileSnapshot {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	path := filepath.Join(dataDir, SnapshotFile)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Warn("creating snapshot directory failed, starting empty", "dir", dataDir, "error", err)
		return &FileSnapshot{path: path, logger: logger}
	}

	// Append-or-create open guarantees the file exists before the read.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Warn("opening snapshot file failed, starting empty", "path", path, "error", err)
		return &FileSnapshot{path: path, logger: logger}
	}
	f.Close()

	return &FileSnapshot{path: path, logger: logger}
}

// Load reads and decodes the snapshot. A missing, empty, or unparsable file
// yields an empty index, never an error.
func (s *FileSnapshot) Load() (Index, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading snapshot failed, starting empty", "path", s.path, "error", err)
		}
		return Index{}, nil
	}
	if len(data) == 0 {
		return Index{}, nil
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		s.logger.Warn("snapshot not parsable, starting empty", "path", s.path, "error", err)
		return Index{}, nil
	}
	if idx == nil {
		idx = Index{}
	}
	return idx, nil
}

// Save serializes the full index and overwrites the snapshot file.
func (s *FileSnapshot) Save(idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only held open during Load and Save.
func (s *FileSnapshot) Close() error {
	return nil
}
