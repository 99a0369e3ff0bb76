// Package main provides the genescan command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/genescan/internal/gene"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	logger.Sync() //nolint:errcheck
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if isUsageError(err) {
		fmt.Fprintf(os.Stderr, "Run 'genescan --help' for usage.\n")
		return ExitUsage
	}
	return ExitError
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "genescan",
		Short: "Find genes in DNA strands",
		Long: `genescan locates protein-coding genes in DNA strands: a start codon
followed, in the same reading frame, by the nearest stop codon.

Input may be a FASTA file (optionally gzipped), a plain-text strand,
'-' for stdin, or an http(s) URL.`,
		Example: `  genescan genes input.fa
  genescan genes --both-strands -o genes.tsv input.fa.gz
  genescan report --min-length 60 input.fa
  genescan find AATGCTAACTAGCTGACTAAT
  cat strand.txt | genescan genes -`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			return nil
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.genescan.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
	pf.String("start-codon", gene.DefaultStartCodon, "Start codon")
	pf.StringSlice("stop-codons", gene.DefaultStopCodons, "Stop codons")
	pf.Int("frame-size", gene.DefaultFrameSize, "Codon length")
	pf.String("ratio-symbols", gene.DefaultRatioSymbols, "Two letters counted by the composition ratio")
	pf.String("store", "", "DuckDB file to record results in (empty disables)")
	pf.Int("workers", 0, "Number of scan workers (0 = all CPUs)")

	bindFlags(pf, map[string]string{
		"scan.start_codon":   "start-codon",
		"scan.stop_codons":   "stop-codons",
		"scan.frame_size":    "frame-size",
		"scan.ratio_symbols": "ratio-symbols",
		"store.path":         "store",
		"workers":            "workers",
	})

	root.AddCommand(newGenesCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newFindCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newCountCmd())
	root.AddCommand(newRatioCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "genescan version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads ~/.genescan.yaml (or --config) and GENESCAN_* variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".genescan")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GENESCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// newLogger builds a console logger on stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableCaller = true
	}
	return cfg.Build()
}

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	return strings.HasPrefix(err.Error(), "unknown command")
}

// usageArgs reports argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
