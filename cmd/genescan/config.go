package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage genescan configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.genescan.yaml.

Keys: scan.start_codon, scan.stop_codons, scan.frame_size, scan.ratio_symbols,
report.min_length, report.cg_threshold, report.count_pattern, store.path, workers.
Each can also be set with a GENESCAN_ environment variable, e.g.
GENESCAN_SCAN_STOP_CODONS=TAA,TAG.`,
		Example: `  genescan config                                  # show all config
  genescan config set scan.stop_codons TAA,TAG      # change the stop codons
  genescan config set store.path ~/.genescan/results.duckdb
  genescan config get report.min_length             # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(w, "# No config file found, showing defaults. Config file: ~/.genescan.yaml")
	}

	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	key = strings.ToLower(key)
	if !slices.Contains(configKeys, key) {
		return usageError{fmt.Errorf("unknown config key %q", key)}
	}
	if key == "scan.stop_codons" {
		viper.Set(key, splitList([]string{value}))
	} else {
		viper.Set(key, value)
	}

	// Reject values the scanner would refuse before writing them.
	if strings.HasPrefix(key, "scan.") {
		if err := scannerConfig().Validate(); err != nil {
			return usageError{err}
		}
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".genescan.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}

// configKeys lists the settings genescan reads.
var configKeys = []string{
	"scan.start_codon",
	"scan.stop_codons",
	"scan.frame_size",
	"scan.ratio_symbols",
	"report.min_length",
	"report.cg_threshold",
	"report.count_pattern",
	"store.path",
	"workers",
}
