package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/genescan/internal/duckdb"
	"github.com/inodb/genescan/internal/fasta"
	"github.com/inodb/genescan/internal/gene"
	"github.com/inodb/genescan/internal/output"
	"github.com/inodb/genescan/internal/scan"
)

func newGenesCmd() *cobra.Command {
	var (
		outputFile  string
		bothStrands bool
		noProtein   bool
		rescan      bool
	)

	cmd := &cobra.Command{
		Use:   "genes <input>",
		Short: "List every gene in each record",
		Long: `Scan each record of the input and list every gene found, left to right.

With a store configured (--store or store.path), results are recorded in
DuckDB. Scanning an unchanged file again with the same scan settings
replays the stored results instead of rescanning.

The Protein column is filled only for DNA codons of length 3. --both-strands
requires DNA codons.`,
		Example: `  genescan genes input.fa
  genescan genes --both-strands -o genes.tsv input.fa.gz
  genescan genes --store ~/.genescan/results.duckdb input.fa
  genescan genes --stop-codons TAA,TAG https://example.org/strand.txt`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenes(cmd, args[0], outputFile, bothStrands, noProtein, rescan)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&bothStrands, "both-strands", false, "Also scan the reverse complement")
	cmd.Flags().BoolVar(&noProtein, "no-protein", false, "Omit the translated protein column")
	cmd.Flags().BoolVar(&rescan, "rescan", false, "Ignore stored results for unchanged inputs")

	return cmd
}

func runGenes(cmd *cobra.Command, src, outputFile string, bothStrands, noProtein, rescan bool) error {
	scanner, err := newScanner()
	if err != nil {
		return err
	}
	if bothStrands && !scanner.Config().IsDNA() {
		return usageError{errors.New("--both-strands needs codons spelled with A, C, G and T")}
	}

	reader, err := fasta.OpenSource(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer reader.Close()

	out, closeOut, err := openOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	tw := output.NewTabWriter(out)
	tw.SetSkipProtein(noProtein)
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	runner := scan.NewRunner(scanner)
	runner.SetBothStrands(bothStrands)
	runner.SetWorkers(viper.GetInt("workers"))
	runner.SetLogger(logger)

	storePath := viper.GetString("store.path")
	if storePath == "" {
		return runner.ScanAll(cmd.Context(), reader, tw)
	}

	store, err := duckdb.Open(storePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	fp, err := fingerprint(src)
	if err != nil {
		return err
	}
	cfg := scanner.Config()

	if !rescan {
		runID, ok, err := store.FindRun(fp, cfg, bothStrands)
		if err != nil {
			return err
		}
		if ok {
			logger.Info("reusing stored results",
				zap.String("source", src),
				zap.String("run", runID))
			return store.Replay(runID, tw)
		}
	}

	runID, err := store.BeginRun(fp, cfg, bothStrands)
	if err != nil {
		return err
	}
	logger.Debug("recording run",
		zap.String("run", runID),
		zap.String("store", storePath))

	if err := runner.ScanAll(cmd.Context(), reader, scan.MultiWriter(tw, store.NewRecorder(runID))); err != nil {
		if derr := store.DeleteRun(runID); derr != nil {
			logger.Warn("failed to remove incomplete run",
				zap.String("run", runID),
				zap.Error(derr))
		}
		return err
	}
	return nil
}

func newReportCmd() *cobra.Command {
	var listGenes bool

	cmd := &cobra.Command{
		Use:   "report <input>",
		Short: "Summarize the genes of each record",
		Long: `Summarize each record: how many genes it holds, how many are longer than
--min-length, how many have a composition ratio above --cg-threshold, the
longest gene, and how often --count-pattern occurs in the record.`,
		Example: `  genescan report input.fa
  genescan report --min-length 60 --cg-threshold 0.35 --list input.fa`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args[0], listGenes)
		},
	}

	opts := gene.DefaultSummaryOptions()
	cmd.Flags().Int("min-length", opts.MinLength, "Genes longer than this are counted as long")
	cmd.Flags().Float64("cg-threshold", opts.CGThreshold, "Genes with a higher ratio are counted")
	cmd.Flags().String("count-pattern", opts.CountPattern, "Pattern counted across each record")
	cmd.Flags().BoolVar(&listGenes, "list", false, "List long and high-ratio genes under each record")

	bindFlags(cmd.Flags(), map[string]string{
		"report.min_length":    "min-length",
		"report.cg_threshold":  "cg-threshold",
		"report.count_pattern": "count-pattern",
	})

	return cmd
}

func runReport(cmd *cobra.Command, src string, listGenes bool) error {
	scanner, err := newScanner()
	if err != nil {
		return err
	}

	reader, err := fasta.OpenSource(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer reader.Close()

	sw := output.NewSummaryWriter(cmd.OutOrStdout(), summaryOptions(), listGenes)
	if err := sw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	runner := scan.NewRunner(scanner)
	runner.SetWorkers(viper.GetInt("workers"))
	runner.SetLogger(logger)
	if err := runner.ScanAll(cmd.Context(), reader, sw); err != nil {
		return err
	}

	sw.WriteSummary(cmd.ErrOrStderr())
	return nil
}

// openOutput returns the command's stdout or a created file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// fingerprint identifies src for result reuse. Only regular files qualify.
func fingerprint(src string) (duckdb.FileFingerprint, error) {
	if src == "-" || fasta.IsURL(src) {
		return duckdb.StreamFingerprint(src), nil
	}
	fp, err := duckdb.StatFile(src)
	if err != nil {
		return duckdb.FileFingerprint{}, fmt.Errorf("stat input: %w", err)
	}
	return fp, nil
}
