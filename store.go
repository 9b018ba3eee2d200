package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists accepted shares and found blocks to a local SQLite database,
// opened with WAL journaling and a busy_timeout through a pure-Go driver so
// no cgo toolchain is required to build this binary.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_foreign_keys=1&_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureShareTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureShareTables(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS shares (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			worker TEXT NOT NULL,
			address TEXT NOT NULL,
			difficulty REAL NOT NULL,
			block_found INTEGER NOT NULL DEFAULT 0,
			created_at_unix INTEGER NOT NULL
		)
	`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS shares_worker_idx ON shares (worker)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS shares_created_idx ON shares (created_at_unix)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			height INTEGER NOT NULL,
			hash TEXT NOT NULL,
			reward_sats INTEGER NOT NULL,
			found_at_unix INTEGER NOT NULL
		)
	`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS blocks_height_idx ON blocks (height)`); err != nil {
		return err
	}

	return nil
}

// RecordShare inserts a row for every accepted share (Accepted and
// AcceptedBlock outcomes only; rejected shares are not persisted).
func (s *Store) RecordShare(worker, address string, difficulty float64, blockFound bool) {
	if s == nil || s.db == nil {
		return
	}
	found := 0
	if blockFound {
		found = 1
	}
	if _, err := s.db.Exec(
		`INSERT INTO shares (worker, address, difficulty, block_found, created_at_unix) VALUES (?, ?, ?, ?, ?)`,
		worker, address, difficulty, found, time.Now().Unix(),
	); err != nil {
		logger.Warn("record share failed", "error", err)
	}
}

func (s *Store) RecordBlock(height int64, hash string, rewardSats int64) {
	if s == nil || s.db == nil {
		return
	}
	if _, err := s.db.Exec(
		`INSERT INTO blocks (height, hash, reward_sats, found_at_unix) VALUES (?, ?, ?, ?)`,
		height, hash, rewardSats, time.Now().Unix(),
	); err != nil {
		logger.Warn("record block failed", "error", err)
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
