// Package duckdb records gene scan results in DuckDB so they can be queried
// later and reused when the same input is scanned again unchanged.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for scan results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS scan_runs (
		run_id VARCHAR PRIMARY KEY,
		source VARCHAR,
		source_size BIGINT,
		source_modtime VARCHAR,
		start_codon VARCHAR,
		stop_codons VARCHAR,
		both_strands BOOLEAN,
		frame_size BIGINT,
		ratio_symbols VARCHAR,
		created_at TIMESTAMP
	)`); err != nil {
		return err
	}

	// Stores written before these columns existed never match FindRun.
	for _, col := range []string{"frame_size BIGINT", "ratio_symbols VARCHAR"} {
		if _, err := s.db.Exec("ALTER TABLE scan_runs ADD COLUMN IF NOT EXISTS " + col); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS gene_results (
		run_id VARCHAR,
		record_seq BIGINT,
		hit_index BIGINT,
		record_id VARCHAR,
		strand VARCHAR,
		gene_start BIGINT,
		gene_end BIGINT,
		length BIGINT,
		stop_codon VARCHAR,
		cg_ratio DOUBLE,
		sequence VARCHAR,
		protein VARCHAR,
		PRIMARY KEY (run_id, record_seq, hit_index)
	)`)
	return err
}
