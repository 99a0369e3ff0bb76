package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/genescan/internal/duckdb"
	"github.com/inodb/genescan/internal/output"
	"github.com/inodb/genescan/internal/scan"
)

func newHistoryCmd() *cobra.Command {
	var (
		record    string
		minLength int
		runID     string
		clearAll  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query results recorded in the store",
		Long: `Query gene results recorded by 'genescan genes' in the DuckDB store
(--store or store.path). Without a query flag, the recorded runs are listed.`,
		Example: `  genescan history --store results.duckdb
  genescan history --store results.duckdb --record chr1
  genescan history --store results.duckdb --min-length 300
  genescan history --store results.duckdb --run 2b7e...
  genescan history --store results.duckdb --clear`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("store.path")
			if path == "" {
				return usageError{errors.New("no store configured: use --store or set store.path")}
			}

			store, err := duckdb.Open(path)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case clearAll:
				if err := store.ClearGeneResults(); err != nil {
					return fmt.Errorf("clear store: %w", err)
				}
				fmt.Fprintf(out, "Cleared stored results in %s\n", path)
				return nil
			case runID != "":
				tw := output.NewTabWriter(out)
				if err := tw.WriteHeader(); err != nil {
					return err
				}
				return store.Replay(runID, tw)
			case record != "":
				results, err := store.SearchByRecord(record)
				if err != nil {
					return err
				}
				return writeResults(out, results)
			case minLength > 0:
				results, err := store.SearchByMinLength(minLength)
				if err != nil {
					return err
				}
				return writeResults(out, results)
			default:
				runs, err := store.ListRuns()
				if err != nil {
					return err
				}
				return writeRuns(out, runs)
			}
		},
	}

	cmd.Flags().StringVar(&record, "record", "", "Show stored genes of this record ID")
	cmd.Flags().IntVar(&minLength, "min-length", 0, "Show stored genes at least this long, longest first")
	cmd.Flags().StringVar(&runID, "run", "", "Show the genes of one run")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all stored runs and results")
	cmd.MarkFlagsMutuallyExclusive("record", "min-length", "run", "clear")

	return cmd
}

func writeResults(w io.Writer, results []duckdb.GeneResult) error {
	tw := output.NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	hits := make([]scan.Hit, len(results))
	for i, r := range results {
		hits[i] = r.Hit
	}
	if err := tw.Write(nil, hits); err != nil {
		return err
	}
	return tw.Flush()
}

func writeRuns(w io.Writer, runs []duckdb.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Run\tCreated\tSource\tStart\tStops\tFrame\tRatio_symbols\tBoth_strands")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%t\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Source,
			r.StartCodon, strings.Join(r.StopCodons, ","),
			r.FrameSize, r.RatioSymbols, r.BothStrands)
	}
	return tw.Flush()
}
