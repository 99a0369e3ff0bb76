// Package scan runs the gene scanner over streams of sequence records.
package scan

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/inodb/genescan/internal/fasta"
	"github.com/inodb/genescan/internal/gene"
)

// ErrEmptyRecord is reported for records without sequence data.
var ErrEmptyRecord = errors.New("record has no sequence")

// Strand identifies which strand of a record a gene was read from.
type Strand string

const (
	Forward Strand = "+"
	Reverse Strand = "-"
)

// Hit is one gene found in a record.
// Start and End are always forward-strand offsets; Seq reads 5' to 3' on
// the hit's own strand. Protein is empty unless the scanner reads DNA
// triplets.
type Hit struct {
	Record string
	Strand Strand
	gene.Gene
	Ratio   float64
	Protein string
}

// RecordReader yields records until it returns nil, nil.
type RecordReader interface {
	Next() (*fasta.Record, error)
}

// HitWriter defines the interface for writing scan results.
type HitWriter interface {
	WriteHeader() error
	Write(rec *fasta.Record, hits []Hit) error
	Flush() error
}

// Runner scans records with a gene.Scanner.
type Runner struct {
	scanner     *gene.Scanner
	translate   bool
	bothStrands bool
	workers     int
	logger      *zap.Logger
}

// NewRunner creates a runner for the given scanner.
func NewRunner(s *gene.Scanner) *Runner {
	return &Runner{
		scanner:   s,
		translate: s.Config().Translatable(),
		logger:    zap.NewNop(),
	}
}

// SetBothStrands configures whether the reverse complement is scanned too.
func (r *Runner) SetBothStrands(both bool) {
	r.bothStrands = both
}

// SetWorkers sets the worker count used by ScanAll. Zero means runtime.NumCPU().
func (r *Runner) SetWorkers(n int) {
	r.workers = n
}

// SetLogger sets the logger for warning and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Scan finds the genes in one record. Forward-strand hits come first,
// then reverse-strand hits, each in discovery order.
func (r *Runner) Scan(rec *fasta.Record) ([]Hit, error) {
	if rec.Seq == "" {
		return nil, ErrEmptyRecord
	}

	var hits []Hit
	for g := range r.scanner.Genes(rec.Seq) {
		hits = append(hits, r.hit(rec.ID, Forward, g))
	}

	if r.bothStrands {
		n := len(rec.Seq)
		for g := range r.scanner.Genes(gene.ReverseComplement(rec.Seq)) {
			g.Start, g.End = n-g.End, n-g.Start
			hits = append(hits, r.hit(rec.ID, Reverse, g))
		}
	}
	return hits, nil
}

func (r *Runner) hit(record string, strand Strand, g gene.Gene) Hit {
	h := Hit{
		Record: record,
		Strand: strand,
		Gene:   g,
		Ratio:  r.scanner.Ratio(g.Seq),
	}
	if r.translate {
		h.Protein = gene.Translate(g.Seq)
	}
	return h
}

// ScanAll scans every record from reader and writes the hits in input order.
// Records that cannot be scanned are logged and skipped. When ctx is done,
// no further records are read or written and ctx.Err() is returned without
// flushing the writer.
func (r *Runner) ScanAll(ctx context.Context, reader RecordReader, writer HitWriter) error {
	workers := r.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan WorkItem, 2*workers)
	var readErr error
	recordCount := 0

	go func() {
		defer close(items)
		seq := 0
		for ctx.Err() == nil {
			rec, err := reader.Next()
			if err != nil {
				readErr = fmt.Errorf("read record: %w", err)
				return
			}
			if rec == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Record: rec}:
			case <-ctx.Done():
				return
			}
			recordCount++
			seq++
		}
	}()

	results := r.ParallelScan(items, workers)

	geneCount := 0
	if err := OrderedCollect(results, func(res WorkResult) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.Err != nil {
			r.logger.Warn("failed to scan record",
				zap.String("record", res.Record.ID),
				zap.Error(res.Err))
			return nil
		}
		geneCount += len(res.Hits)
		if err := writer.Write(res.Record, res.Hits); err != nil {
			return fmt.Errorf("write hits: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}

	r.logger.Info("scan complete",
		zap.Int("records", recordCount),
		zap.Int("genes", geneCount))

	return writer.Flush()
}
