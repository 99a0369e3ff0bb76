package gene

// SummaryOptions control which genes Summarize singles out.
type SummaryOptions struct {
	MinLength    int     // genes strictly longer than this are "long"
	CGThreshold  float64 // genes with a ratio strictly above this are "high ratio"
	CountPattern string  // counted non-overlapping across the whole strand
	RatioSymbols string
}

// DefaultSummaryOptions returns the thresholds used by the report command.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		MinLength:    9,
		CGThreshold:  0.35,
		CountPattern: "CTG",
		RatioSymbols: DefaultRatioSymbols,
	}
}

// Summary describes a set of genes found in one strand.
type Summary struct {
	Total        int
	Long         []Gene
	HighRatio    []Gene
	Longest      int
	PatternCount int
}

// Summarize reports on genes found in dna.
func Summarize(dna string, genes []Gene, opts SummaryOptions) Summary {
	symbols := opts.RatioSymbols
	if symbols == "" {
		symbols = DefaultRatioSymbols
	}

	sum := Summary{Total: len(genes)}
	for _, g := range genes {
		if g.Len() > opts.MinLength {
			sum.Long = append(sum.Long, g)
		}
		if CompositionRatio(g.Seq, symbols) > opts.CGThreshold {
			sum.HighRatio = append(sum.HighRatio, g)
		}
		if g.Len() > sum.Longest {
			sum.Longest = g.Len()
		}
	}
	sum.PatternCount = CountOccurrences(upperASCII(opts.CountPattern), upperASCII(dna))
	return sum
}
