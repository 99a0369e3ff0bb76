package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/genescan/internal/gene"
)

func newFindCmd() *cobra.Command {
	var all, gaps bool

	cmd := &cobra.Command{
		Use:   "find <dna>",
		Short: "Find the first gene in a strand",
		Long: `Print the first gene of a strand given on the command line.
With --all, every gene is printed, one per line.`,
		Example: `  genescan find AATGCTAACTAGCTGACTAAT
  genescan find --all ATGTAAGATGCCCTAGT`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := newScanner()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dna := args[0]

			if !all {
				g, ok := scanner.FindGene(dna)
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "no gene found")
					return nil
				}
				fmt.Fprintln(out, g.Seq)
				return nil
			}

			genes := scanner.AllGenes(dna)
			for _, g := range genes {
				fmt.Fprintf(out, "%d\t%d\t%s\n", g.Start, g.End, g.Seq)
			}
			if gaps {
				for _, gap := range gene.Gaps(dna, genes) {
					fmt.Fprintf(out, "gap\t%q\n", gap)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d genes\n", len(genes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every gene with its offsets")
	cmd.Flags().BoolVar(&gaps, "gaps", false, "With --all, also print the stretches between genes")

	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <dna> <start> <codon>",
		Short: "Locate the first in-frame stop codon after an offset",
		Long: `Print the offset of the first occurrence of <codon> that lies a whole
number of codons after <start>. The strand length is printed when there is none.`,
		Example: `  genescan stop xxxyyyzzzTAAxxxyyyzzzTAAxx 0 TAA   # 9
  genescan stop xxxyyyzzzTAAxxxyyyzzzTAAxx 1 TAA   # 26`,
		Args: usageArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return usageError{fmt.Errorf("invalid start offset %q: %w", args[1], err)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), gene.FindStopCodon(args[0], start, args[2]))
			return nil
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <pattern> <dna>",
		Short: "Count non-overlapping occurrences of a pattern",
		Example: `  genescan count GAA ATGAACGAATTGAATC   # 3
  genescan count AA ATAAAA              # 2`,
		Args: usageArgs(cobra.ExactArgs(2)),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gene.CountOccurrences(args[0], args[1]))
		},
	}
}

func newRatioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratio <dna>",
		Short: "Print the fraction of bases that are ratio symbols",
		Long: `Print the fraction of bases of <dna> matching one of the two ratio
symbols (scan.ratio_symbols, C and G by default).`,
		Example: `  genescan ratio ATGCCATAG                       # 0.4444444444444444
  genescan --ratio-symbols AT ratio ATGCCATAG`,
		Args: usageArgs(cobra.ExactArgs(1)),
		Run: func(cmd *cobra.Command, args []string) {
			r := gene.CompositionRatio(args[0], viper.GetString("scan.ratio_symbols"))
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(r, 'f', -1, 64))
		},
	}
}
