package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inodb/genescan/internal/gene"
)

// Run describes one recorded scan of an input.
type Run struct {
	ID          string
	Source      string
	SourceSize  int64
	ModTime     string
	StartCodon  string
	StopCodons  []string
	BothStrands bool
	// Zero for runs recorded before these were tracked.
	FrameSize    int
	RatioSymbols string
	CreatedAt    time.Time
}

// BeginRun registers a new scan of src with cfg and returns its run ID.
func (s *Store) BeginRun(src FileFingerprint, cfg gene.Config, bothStrands bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO scan_runs
		(run_id, source, source_size, source_modtime, start_codon, stop_codons,
		both_strands, frame_size, ratio_symbols, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, src.Path, src.Size, src.modTimeKey(),
		cfg.StartCodon, strings.Join(cfg.StopCodons, ","), bothStrands,
		cfg.FrameSize, cfg.RatioSymbols,
		time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert scan run: %w", err)
	}
	return id, nil
}

// FindRun returns the most recent run of an unchanged src scanned with the
// same configuration. The second result is false when there is none or src
// cannot be fingerprinted.
func (s *Store) FindRun(src FileFingerprint, cfg gene.Config, bothStrands bool) (string, bool, error) {
	if !src.Reusable() {
		return "", false, nil
	}

	var id string
	err := s.db.QueryRow(`SELECT run_id FROM scan_runs
		WHERE source=? AND source_size=? AND source_modtime=?
		AND start_codon=? AND stop_codons=? AND both_strands=?
		AND frame_size=? AND ratio_symbols=?
		ORDER BY created_at DESC
		LIMIT 1`,
		src.Path, src.Size, src.modTimeKey(),
		cfg.StartCodon, strings.Join(cfg.StopCodons, ","), bothStrands,
		cfg.FrameSize, cfg.RatioSymbols,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query scan run: %w", err)
	}
	return id, true, nil
}

// ListRuns returns all recorded runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, source, source_size, source_modtime,
		start_codon, stop_codons, both_strands,
		COALESCE(frame_size, 0), COALESCE(ratio_symbols, ''), created_at
		FROM scan_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var stops string
		if err := rows.Scan(&r.ID, &r.Source, &r.SourceSize, &r.ModTime,
			&r.StartCodon, &stops, &r.BothStrands,
			&r.FrameSize, &r.RatioSymbols, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if stops != "" {
			r.StopCodons = strings.Split(stops, ",")
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run and its results, e.g. after a failed scan.
func (s *Store) DeleteRun(runID string) error {
	if _, err := s.db.Exec("DELETE FROM gene_results WHERE run_id=?", runID); err != nil {
		return fmt.Errorf("delete gene results: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM scan_runs WHERE run_id=?", runID); err != nil {
		return fmt.Errorf("delete scan run: %w", err)
	}
	return nil
}
