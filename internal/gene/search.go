package gene

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CompositionRatio returns the fraction of bytes in seq equal to one of the
// bytes in symbols, ignoring case. An empty seq has ratio 0.
func CompositionRatio(seq, symbols string) float64 {
	if seq == "" {
		return 0
	}
	symbols = upperASCII(symbols)

	n := 0
	for i := 0; i < len(seq); i++ {
		if strings.IndexByte(symbols, upperByte(seq[i])) >= 0 {
			n++
		}
	}
	return float64(n) / float64(len(seq))
}

// CGRatio returns the fraction of C and G bases in seq.
func CGRatio(seq string) float64 {
	return CompositionRatio(seq, DefaultRatioSymbols)
}

// CountOccurrences counts non-overlapping occurrences of pattern in seq,
// scanning left to right and skipping past each match before looking again.
// For example CountOccurrences("aa", "ataaaa") is 2.
func CountOccurrences(pattern, seq string) int {
	if pattern == "" || seq == "" {
		return 0
	}

	count := 0
	for pos := 0; pos <= len(seq); {
		i := strings.Index(seq[pos:], pattern)
		if i < 0 {
			break
		}
		count++
		pos += i + len(pattern)
	}
	return count
}

// FindSimpleGene returns the first span from startCodon to the first
// stopCodon after it, provided the span is a whole number of codons.
// Unlike Scanner.FindGene it does not look past a misaligned stop codon.
//
// The result takes the case of the first letter of dna: all upper case when
// that letter is upper case, all lower case otherwise.
func FindSimpleGene(dna, startCodon, stopCodon string) string {
	if dna == "" || startCodon == "" || stopCodon == "" {
		return ""
	}

	fold := strings.ToLower
	if r, _ := utf8.DecodeRuneInString(dna); unicode.IsUpper(r) {
		fold = strings.ToUpper
	}
	dna, startCodon, stopCodon = fold(dna), fold(startCodon), fold(stopCodon)

	start := strings.Index(dna, startCodon)
	if start < 0 {
		return ""
	}
	from := start + len(startCodon)
	i := strings.Index(dna[from:], stopCodon)
	if i < 0 {
		return ""
	}
	end := from + i + len(stopCodon)
	if (end-start)%len(stopCodon) != 0 {
		return ""
	}
	return dna[start:end]
}

// TwoOccurrences reports whether a occurs at least twice in b. Occurrences
// may overlap. An empty a never matches.
func TwoOccurrences(a, b string) bool {
	if a == "" {
		return false
	}
	first := strings.Index(b, a)
	if first < 0 {
		return false
	}
	return strings.Contains(b[first+1:], a)
}

// LastPart returns the part of b after the first occurrence of a, or all of b
// when a does not occur.
func LastPart(a, b string) string {
	i := strings.Index(b, a)
	if i < 0 {
		return b
	}
	return b[i+len(a):]
}
