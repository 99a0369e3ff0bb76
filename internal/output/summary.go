package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/inodb/genescan/internal/fasta"
	"github.com/inodb/genescan/internal/gene"
	"github.com/inodb/genescan/internal/scan"
)

// SummaryWriter writes one gene.Summary row per record.
type SummaryWriter struct {
	w         *tabwriter.Writer
	opts      gene.SummaryOptions
	listGenes bool

	records int
	genes   int
	long    int
	high    int
	longest int
}

// NewSummaryWriter creates a summary writer using opts for every record.
// With listGenes set, the long and high-ratio genes are listed under each row.
func NewSummaryWriter(w io.Writer, opts gene.SummaryOptions, listGenes bool) *SummaryWriter {
	return &SummaryWriter{
		w:         tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		opts:      opts,
		listGenes: listGenes,
	}
}

// WriteHeader writes the column header.
func (s *SummaryWriter) WriteHeader() error {
	_, err := fmt.Fprintf(s.w, "Record\tGenes\tLonger_than_%d\tRatio_above_%.2f\tLongest\t%s_count\n",
		s.opts.MinLength, s.opts.CGThreshold, s.opts.CountPattern)
	return err
}

// Write summarizes the forward-strand hits of a record.
func (s *SummaryWriter) Write(rec *fasta.Record, hits []scan.Hit) error {
	genes := make([]gene.Gene, 0, len(hits))
	for _, h := range hits {
		if h.Strand == scan.Forward {
			genes = append(genes, h.Gene)
		}
	}
	sum := gene.Summarize(rec.Seq, genes, s.opts)

	s.records++
	s.genes += sum.Total
	s.long += len(sum.Long)
	s.high += len(sum.HighRatio)
	s.longest = max(s.longest, sum.Longest)

	if _, err := fmt.Fprintf(s.w, "%s\t%d\t%d\t%d\t%d\t%d\n",
		rec.ID, sum.Total, len(sum.Long), len(sum.HighRatio), sum.Longest, sum.PatternCount); err != nil {
		return err
	}

	if !s.listGenes {
		return nil
	}
	for _, g := range sum.Long {
		if _, err := fmt.Fprintf(s.w, "  long\t%d\t%s\t\t\t\n", g.Start, g.Seq); err != nil {
			return err
		}
	}
	for _, g := range sum.HighRatio {
		if _, err := fmt.Fprintf(s.w, "  high_ratio\t%d\t%s\t\t\t\n", g.Start, g.Seq); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the aligned output.
func (s *SummaryWriter) Flush() error {
	return s.w.Flush()
}

// WriteSummary writes totals across all records.
func (s *SummaryWriter) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  Records:           %d\n", s.records)
	fmt.Fprintf(w, "  Genes:             %d\n", s.genes)
	fmt.Fprintf(w, "  Longer than %-5d  %d\n", s.opts.MinLength, s.long)
	fmt.Fprintf(w, "  Ratio above %-5.2f  %d\n", s.opts.CGThreshold, s.high)
	fmt.Fprintf(w, "  Longest gene:      %d\n", s.longest)
}
