package scan

import (
	"errors"
	"runtime"
	"sync"

	"github.com/inodb/genescan/internal/fasta"
)

// WorkItem holds a record ready for scanning.
type WorkItem struct {
	Seq    int
	Record *fasta.Record
}

// WorkResult holds the scan output for a single record.
type WorkResult struct {
	Seq    int
	Record *fasta.Record
	Hits   []Hit
	Err    error
}

// ParallelScan scans work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (r *Runner) ParallelScan(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				hits, err := r.Scan(item.Record)
				results <- WorkResult{
					Seq:    item.Seq,
					Record: item.Record,
					Hits:   hits,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for res := range results {
		pending[res.Seq] = res

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// MultiWriter fans every call out to each writer in turn.
func MultiWriter(writers ...HitWriter) HitWriter {
	return multiWriter(writers)
}

type multiWriter []HitWriter

func (m multiWriter) WriteHeader() error {
	for _, w := range m {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

func (m multiWriter) Write(rec *fasta.Record, hits []Hit) error {
	for _, w := range m {
		if err := w.Write(rec, hits); err != nil {
			return err
		}
	}
	return nil
}

func (m multiWriter) Flush() error {
	var errs []error
	for _, w := range m {
		if err := w.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
