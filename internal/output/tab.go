// Package output provides scan result output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/genescan/internal/fasta"
	"github.com/inodb/genescan/internal/scan"
)

// TabWriter writes one tab-delimited line per gene.
type TabWriter struct {
	w           *bufio.Writer
	columns     []string
	skipProtein bool
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Record",
			"Strand",
			"Start",
			"End",
			"Length",
			"Stop",
			"CG_ratio",
			"Gene",
			"Protein",
		},
	}
}

// SetSkipProtein drops the Protein column.
func (tw *TabWriter) SetSkipProtein(skip bool) {
	tw.skipProtein = skip
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	cols := tw.columns
	if tw.skipProtein {
		cols = cols[:len(cols)-1]
	}
	_, err := tw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write writes every hit of a record. Records without hits produce no lines.
func (tw *TabWriter) Write(_ *fasta.Record, hits []scan.Hit) error {
	for _, h := range hits {
		values := []string{
			h.Record,
			string(h.Strand),
			strconv.Itoa(h.Start),
			strconv.Itoa(h.End),
			strconv.Itoa(h.Len()),
			h.Stop,
			strconv.FormatFloat(h.Ratio, 'f', 4, 64),
			h.Seq,
		}
		if !tw.skipProtein {
			values = append(values, h.Protein)
		}

		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
