package gene

import (
	"iter"
	"strings"
)

// Gene is a stretch of a strand from a start codon through an in-frame stop codon.
type Gene struct {
	Start int    // offset of the start codon
	End   int    // offset just past the stop codon
	Seq   string // strand[Start:End] in its original casing
	Stop  string // stop codon that closed the gene, upper case
}

// Len returns the gene length in bases.
func (g Gene) Len() int {
	return g.End - g.Start
}

// Scanner finds genes using a fixed set of markers.
// A Scanner is immutable and may be shared between goroutines.
type Scanner struct {
	cfg Config
}

// NewScanner validates cfg and returns a scanner for it.
func NewScanner(cfg Config) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{cfg: cfg.normalized()}, nil
}

// Config returns a copy of the scanner's normalized configuration.
func (s *Scanner) Config() Config {
	c := s.cfg
	c.StopCodons = append([]string(nil), s.cfg.StopCodons...)
	return c
}

// FindStopCodon returns the offset of the first occurrence of stopCodon in dna
// that starts at least one codon past startIndex and lies a whole number of
// codons away from it. The codon length is len(stopCodon).
//
// When no such occurrence exists, or the arguments are unusable, it returns
// len(dna). That value is larger than any real offset, so callers can take
// the minimum over several stop codons directly.
func FindStopCodon(dna string, startIndex int, stopCodon string) int {
	return findStop(upperASCII(dna), startIndex, upperASCII(stopCodon))
}

func findStop(dna string, startIndex int, stopCodon string) int {
	if dna == "" || stopCodon == "" || startIndex < 0 || startIndex >= len(dna) {
		return len(dna)
	}

	n := len(stopCodon)
	from := startIndex + n
	for from <= len(dna) {
		k := strings.Index(dna[from:], stopCodon)
		if k < 0 {
			break
		}
		idx := from + k
		if (idx-startIndex)%n == 0 {
			return idx
		}
		// Resume one base later; an aligned hit may overlap this one.
		from = idx + 1
	}
	return len(dna)
}

// FindGene returns the first gene in dna. The second result is false when
// dna has no start codon or no in-frame stop codon follows it.
func (s *Scanner) FindGene(dna string) (Gene, bool) {
	return s.findGene(dna, upperASCII(dna), 0)
}

// findGene searches norm (the upper-cased dna) from offset from.
func (s *Scanner) findGene(dna, norm string, from int) (Gene, bool) {
	if from >= len(norm) {
		return Gene{}, false
	}

	i := strings.Index(norm[from:], s.cfg.StartCodon)
	if i < 0 {
		return Gene{}, false
	}
	start := from + i

	best, stop := len(norm), ""
	for _, codon := range s.cfg.StopCodons {
		if idx := findStop(norm, start, codon); idx < best {
			best, stop = idx, codon
		}
	}
	if best == len(norm) {
		return Gene{}, false
	}

	end := best + len(stop)
	return Gene{Start: start, End: end, Seq: dna[start:end], Stop: stop}, true
}

// Genes yields every gene in dna from left to right. After each gene the
// search resumes at the gene's end offset, so genes never overlap.
func (s *Scanner) Genes(dna string) iter.Seq[Gene] {
	return func(yield func(Gene) bool) {
		norm := upperASCII(dna)
		pos := 0
		for {
			g, ok := s.findGene(dna, norm, pos)
			if !ok || !yield(g) {
				return
			}
			pos = g.End
		}
	}
}

// AllGenes collects Genes into a slice.
func (s *Scanner) AllGenes(dna string) []Gene {
	var genes []Gene
	for g := range s.Genes(dna) {
		genes = append(genes, g)
	}
	return genes
}

// CountGenes returns the number of genes Genes would yield.
func (s *Scanner) CountGenes(dna string) int {
	n := 0
	for range s.Genes(dna) {
		n++
	}
	return n
}

// Ratio returns the fraction of seq made of the scanner's ratio symbols.
func (s *Scanner) Ratio(seq string) float64 {
	return CompositionRatio(seq, s.cfg.RatioSymbols)
}

// Gaps returns the stretches of dna outside genes. The result has
// len(genes)+1 entries, and gaps[0] + genes[0].Seq + gaps[1] + ... rebuilds
// dna. genes must come from scanning dna, in order.
func Gaps(dna string, genes []Gene) []string {
	gaps := make([]string, 0, len(genes)+1)
	pos := 0
	for _, g := range genes {
		gaps = append(gaps, dna[pos:g.Start])
		pos = g.End
	}
	return append(gaps, dna[pos:])
}

var defaultScanner = func() *Scanner {
	s, err := NewScanner(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}()

// FindGene returns the first gene in dna using DefaultConfig.
func FindGene(dna string) (Gene, bool) {
	return defaultScanner.FindGene(dna)
}

// Genes yields the genes in dna using DefaultConfig.
func Genes(dna string) iter.Seq[Gene] {
	return defaultScanner.Genes(dna)
}

// AllGenes returns the genes in dna using DefaultConfig.
func AllGenes(dna string) []Gene {
	return defaultScanner.AllGenes(dna)
}

// CountGenes counts the genes in dna using DefaultConfig.
func CountGenes(dna string) int {
	return defaultScanner.CountGenes(dna)
}
