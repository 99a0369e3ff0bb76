// Package fasta reads DNA strands from FASTA files, plain-text files, stdin
// or URLs.
package fasta

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSequence is returned by ReadAll when the input holds no records.
var ErrNoSequence = errors.New("no sequence data")

// Record is one named strand.
type Record struct {
	ID          string
	Description string
	Seq         string
}

// Reader streams records from FASTA text. Input with no '>' header line is
// read as a single record named after the source.
type Reader struct {
	reader     *bufio.Reader
	closers    []io.Closer
	name       string
	pending    string // header line read ahead of the current record
	lineNumber int
	done       bool
}

// Open opens a FASTA or plain-text file. Use "-" for stdin.
// Gzipped input is detected from its magic bytes.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin, "stdin")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sequence file: %w", err)
	}

	r, err := NewReader(file, recordName(path))
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closers = append([]io.Closer{file}, r.closers...)
	return r, nil
}

// NewReader reads records from src. name is used as the record ID of
// header-less input.
func NewReader(src io.Reader, name string) (*Reader, error) {
	br := bufio.NewReaderSize(src, 64*1024)
	r := &Reader{name: name}

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.closers = append(r.closers, gz)
		br = bufio.NewReaderSize(gz, 64*1024)
	}
	r.reader = br
	return r, nil
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*Record, error) {
	if r.done && r.pending == "" {
		return nil, nil
	}

	header := r.pending
	r.pending = ""
	var seq strings.Builder

	for !r.done {
		line, err := r.readLine()
		if err == io.EOF {
			r.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", r.name, r.lineNumber, err)
		}

		line = strings.TrimSpace(line)
		if line == "" || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if header == "" && seq.Len() == 0 {
				header = line
				continue
			}
			r.pending = line
			break
		}
		seq.WriteString(line)
	}

	if header == "" {
		if seq.Len() == 0 {
			return nil, nil
		}
		return &Record{ID: r.name, Seq: seq.String()}, nil
	}

	id, desc := parseHeader(header)
	return &Record{ID: id, Description: desc, Seq: seq.String()}, nil
}

// readLine returns the next line including a final unterminated one.
func (r *Reader) readLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	r.lineNumber++
	return line, nil
}

// Close closes the reader and releases resources.
func (r *Reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// ReadAll reads every remaining record.
func ReadAll(r *Reader) ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoSequence
	}
	return records, nil
}

// parseHeader splits a header line into ID and description.
// Handles both pipe-delimited GENCODE headers and "ID description" headers.
func parseHeader(header string) (id, desc string) {
	header = strings.TrimSpace(strings.TrimPrefix(header, ">"))

	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		id, desc = header[:idx], strings.TrimSpace(header[idx+1:])
	} else {
		id = header
	}
	if idx := strings.Index(id, "|"); idx != -1 {
		id = id[:idx]
	}
	return id, desc
}

// recordName names header-less input after its file, minus extensions.
func recordName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
