// Package gene finds genes in DNA strands: stretches that begin with a start
// codon and end with the nearest in-frame stop codon.
package gene

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a scanner configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid scanner config")

// Default markers for the standard genetic code.
const (
	DefaultStartCodon   = "ATG"
	DefaultFrameSize    = 3
	DefaultRatioSymbols = "CG"
)

// DefaultStopCodons are the three standard stop codons.
var DefaultStopCodons = []string{"TAA", "TAG", "TGA"}

// Config holds the markers a Scanner searches for.
type Config struct {
	StartCodon   string
	StopCodons   []string
	FrameSize    int    // length of every marker; offsets are aligned to it
	RatioSymbols string // two symbols counted by Scanner.Ratio
}

// DefaultConfig returns the ATG / TAA,TAG,TGA configuration.
func DefaultConfig() Config {
	return Config{
		StartCodon:   DefaultStartCodon,
		StopCodons:   append([]string(nil), DefaultStopCodons...),
		FrameSize:    DefaultFrameSize,
		RatioSymbols: DefaultRatioSymbols,
	}
}

// Validate checks that the markers are usable together.
func (c Config) Validate() error {
	if c.FrameSize < 1 {
		return fmt.Errorf("%w: frame size must be positive, got %d", ErrInvalidConfig, c.FrameSize)
	}
	if c.StartCodon == "" {
		return fmt.Errorf("%w: start codon is empty", ErrInvalidConfig)
	}
	if len(c.StartCodon) != c.FrameSize {
		return fmt.Errorf("%w: start codon %q is not %d long", ErrInvalidConfig, c.StartCodon, c.FrameSize)
	}
	if len(c.StopCodons) == 0 {
		return fmt.Errorf("%w: no stop codons", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.StopCodons))
	for _, stop := range c.StopCodons {
		if len(stop) != c.FrameSize {
			return fmt.Errorf("%w: stop codon %q is not %d long", ErrInvalidConfig, stop, c.FrameSize)
		}
		key := upperASCII(stop)
		if seen[key] {
			return fmt.Errorf("%w: duplicate stop codon %q", ErrInvalidConfig, stop)
		}
		seen[key] = true
	}

	if len(c.RatioSymbols) != 2 || !isLetter(c.RatioSymbols[0]) || !isLetter(c.RatioSymbols[1]) ||
		upperByte(c.RatioSymbols[0]) == upperByte(c.RatioSymbols[1]) {
		return fmt.Errorf("%w: ratio symbols must be two distinct letters, got %q", ErrInvalidConfig, c.RatioSymbols)
	}
	return nil
}

// IsDNA reports whether every marker is spelled with A, C, G and T.
func (c Config) IsDNA() bool {
	if !isDNA(c.StartCodon) {
		return false
	}
	for _, stop := range c.StopCodons {
		if !isDNA(stop) {
			return false
		}
	}
	return true
}

// Translatable reports whether genes found with c can be read as standard
// DNA codons.
func (c Config) Translatable() bool {
	return c.FrameSize == 3 && c.IsDNA()
}

func isDNA(s string) bool {
	for i := 0; i < len(s); i++ {
		switch upperByte(s[i]) {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	c = upperByte(c)
	return c >= 'A' && c <= 'Z'
}

// normalized returns a copy with every marker upper-cased.
func (c Config) normalized() Config {
	stops := make([]string, len(c.StopCodons))
	for i, s := range c.StopCodons {
		stops[i] = upperASCII(s)
	}
	return Config{
		StartCodon:   upperASCII(c.StartCodon),
		StopCodons:   stops,
		FrameSize:    c.FrameSize,
		RatioSymbols: upperASCII(c.RatioSymbols),
	}
}

// upperASCII upper-cases ASCII letters only, so byte offsets in the result
// line up with the input.
func upperASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				b[j] = upperByte(b[j])
			}
			return string(b)
		}
	}
	return s
}

func upperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
