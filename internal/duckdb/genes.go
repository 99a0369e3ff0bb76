package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/genescan/internal/fasta"
	"github.com/inodb/genescan/internal/scan"
)

// GeneResult is one stored gene hit.
type GeneResult struct {
	RunID     string
	RecordSeq int64 // position of the record in its input
	HitIndex  int64 // position of the hit within the record
	Hit       scan.Hit
}

// resultKey is the primary key used for deduplicating before writing.
type resultKey struct {
	runID               string
	recordSeq, hitIndex int64
}

// WriteGeneResults batch-inserts gene results into DuckDB using the Appender API.
// Duplicate (run_id, record_seq, hit_index) entries are dropped before writing.
func (s *Store) WriteGeneResults(results []GeneResult) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, len(results))
	deduped := make([]GeneResult, 0, len(results))
	for _, r := range results {
		k := resultKey{r.RunID, r.RecordSeq, r.HitIndex}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "gene_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		h := r.Hit
		if err := appender.AppendRow(
			r.RunID, r.RecordSeq, r.HitIndex, h.Record, string(h.Strand),
			int64(h.Start), int64(h.End), int64(h.Len()), h.Stop,
			h.Ratio, h.Seq, h.Protein,
		); err != nil {
			return fmt.Errorf("append gene result: %w", err)
		}
	}

	return appender.Flush()
}

// ClearGeneResults removes all stored runs and results.
func (s *Store) ClearGeneResults() error {
	if _, err := s.db.Exec("DELETE FROM gene_results"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM scan_runs")
	return err
}

const geneColumns = `run_id, record_seq, hit_index, record_id, strand,
	gene_start, gene_end, stop_codon, cg_ratio, sequence, protein`

// RunResults returns a run's results in input order.
func (s *Store) RunResults(runID string) ([]GeneResult, error) {
	rows, err := s.db.Query(`SELECT `+geneColumns+`
		FROM gene_results
		WHERE run_id=?
		ORDER BY record_seq, hit_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run results: %w", err)
	}
	defer rows.Close()

	return scanGeneResults(rows)
}

// SearchByRecord returns every stored hit for a record ID across runs.
func (s *Store) SearchByRecord(recordID string) ([]GeneResult, error) {
	rows, err := s.db.Query(`SELECT `+geneColumns+`
		FROM gene_results
		WHERE record_id=?
		ORDER BY run_id, record_seq, hit_index`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query by record: %w", err)
	}
	defer rows.Close()

	return scanGeneResults(rows)
}

// SearchByMinLength returns every stored hit at least minLength bases long,
// longest first.
func (s *Store) SearchByMinLength(minLength int) ([]GeneResult, error) {
	rows, err := s.db.Query(`SELECT `+geneColumns+`
		FROM gene_results
		WHERE length>=?
		ORDER BY length DESC, run_id, record_seq, hit_index`, int64(minLength))
	if err != nil {
		return nil, fmt.Errorf("query by length: %w", err)
	}
	defer rows.Close()

	return scanGeneResults(rows)
}

// scanGeneResults scans rows into GeneResult slices.
func scanGeneResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]GeneResult, error) {
	var results []GeneResult
	for rows.Next() {
		var r GeneResult
		var strand string
		var start, end int64

		if err := rows.Scan(
			&r.RunID, &r.RecordSeq, &r.HitIndex, &r.Hit.Record, &strand,
			&start, &end, &r.Hit.Stop, &r.Hit.Ratio, &r.Hit.Seq, &r.Hit.Protein,
		); err != nil {
			return nil, fmt.Errorf("scan gene result: %w", err)
		}
		r.Hit.Strand = scan.Strand(strand)
		r.Hit.Start, r.Hit.End = int(start), int(end)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene results: %w", err)
	}
	return results, nil
}

// Recorder is a scan.HitWriter that stores hits under one run.
type Recorder struct {
	store     *Store
	runID     string
	batchSize int
	recordSeq int64
	pending   []GeneResult
}

// NewRecorder returns a recorder writing into runID.
func (s *Store) NewRecorder(runID string) *Recorder {
	return &Recorder{store: s, runID: runID, batchSize: 10000}
}

// RunID returns the run the recorder writes into.
func (r *Recorder) RunID() string {
	return r.runID
}

// WriteHeader is a no-op; the schema is created by Open.
func (r *Recorder) WriteHeader() error { return nil }

// Write buffers a record's hits, writing a batch once enough accumulate.
func (r *Recorder) Write(_ *fasta.Record, hits []scan.Hit) error {
	for i, h := range hits {
		r.pending = append(r.pending, GeneResult{
			RunID:     r.runID,
			RecordSeq: r.recordSeq,
			HitIndex:  int64(i),
			Hit:       h,
		})
	}
	r.recordSeq++

	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes any buffered hits.
func (r *Recorder) Flush() error {
	if err := r.store.WriteGeneResults(r.pending); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	return nil
}

// Replay sends a stored run to w, grouped by record in input order.
// Records that had no hits are not replayed.
func (s *Store) Replay(runID string, w scan.HitWriter) error {
	results, err := s.RunResults(runID)
	if err != nil {
		return err
	}

	for i := 0; i < len(results); {
		j := i
		hits := []scan.Hit{}
		for ; j < len(results) && results[j].RecordSeq == results[i].RecordSeq; j++ {
			hits = append(hits, results[j].Hit)
		}
		rec := &fasta.Record{ID: results[i].Hit.Record}
		if err := w.Write(rec, hits); err != nil {
			return fmt.Errorf("replay record %s: %w", rec.ID, err)
		}
		i = j
	}
	return w.Flush()
}
