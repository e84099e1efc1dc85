// ABOUTME: SQLite snapshot backend using modernc.org/sqlite.
// ABOUTME: Alternate durable store with the same load/save contract as the flat file.

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteSnapshot persists the index in a SQLite database, one row per
// (bridge, entry key, target id) triple. Save replaces the full contents in
// a single transaction.
type SQLiteSnapshot struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSnapshot opens (creating if needed) the database at path.
// Parent directories are created and the schema is applied on open.
func NewSQLiteSnapshot(path string, logger *slog.Logger) (*SQLiteSnapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps the frequent full rewrites from blocking readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS correspondence (
			bridge TEXT NOT NULL,
			entry_key TEXT NOT NULL,
			target_id TEXT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_correspondence_triple
			ON correspondence(bridge, entry_key, target_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite snapshot initialized", "path", path)
	return &SQLiteSnapshot{db: db, logger: logger}, nil
}

// Load reads every stored triple into an index. Query failures fail open to
// an empty index so a damaged database never blocks startup.
func (s *SQLiteSnapshot) Load() (Index, error) {
	rows, err := s.db.Query("SELECT bridge, entry_key, target_id FROM correspondence")
	if err != nil {
		s.logger.Warn("reading snapshot rows failed, starting empty", "error", err)
		return Index{}, nil
	}
	defer rows.Close()

	idx := Index{}
	for rows.Next() {
		var bridge, key, target string
		if err := rows.Scan(&bridge, &key, &target); err != nil {
			s.logger.Warn("scanning snapshot row failed, starting empty", "error", err)
			return Index{}, nil
		}
		if idx[bridge] == nil {
			idx[bridge] = map[string][]string{}
		}
		idx[bridge][key] = append(idx[bridge][key], target)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("iterating snapshot rows failed, starting empty", "error", err)
		return Index{}, nil
	}
	return idx, nil
}

// Save replaces the stored index with idx in one transaction.
func (s *SQLiteSnapshot) Save(idx Index) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM correspondence"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO correspondence (bridge, entry_key, target_id) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for bridge, entries := range idx {
		for key, targets := range entries {
			for _, target := range targets {
				if _, err := stmt.Exec(bridge, key, target); err != nil {
					return fmt.Errorf("writing snapshot row: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}
