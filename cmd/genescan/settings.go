package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/inodb/genescan/internal/gene"
)

func setDefaults() {
	def := gene.DefaultConfig()
	viper.SetDefault("scan.start_codon", def.StartCodon)
	viper.SetDefault("scan.stop_codons", def.StopCodons)
	viper.SetDefault("scan.frame_size", def.FrameSize)
	viper.SetDefault("scan.ratio_symbols", def.RatioSymbols)

	opts := gene.DefaultSummaryOptions()
	viper.SetDefault("report.min_length", opts.MinLength)
	viper.SetDefault("report.cg_threshold", opts.CGThreshold)
	viper.SetDefault("report.count_pattern", opts.CountPattern)

	viper.SetDefault("store.path", "")
	viper.SetDefault("workers", 0)
}

// bindFlags binds config keys to flags of fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// scannerConfig builds the scanner config from flags, file and environment.
func scannerConfig() gene.Config {
	return gene.Config{
		StartCodon:   viper.GetString("scan.start_codon"),
		StopCodons:   splitList(viper.GetStringSlice("scan.stop_codons")),
		FrameSize:    viper.GetInt("scan.frame_size"),
		RatioSymbols: viper.GetString("scan.ratio_symbols"),
	}
}

func newScanner() (*gene.Scanner, error) {
	s, err := gene.NewScanner(scannerConfig())
	if err != nil {
		return nil, usageError{err}
	}
	return s, nil
}

func summaryOptions() gene.SummaryOptions {
	return gene.SummaryOptions{
		MinLength:    viper.GetInt("report.min_length"),
		CGThreshold:  viper.GetFloat64("report.cg_threshold"),
		CountPattern: viper.GetString("report.count_pattern"),
		RatioSymbols: viper.GetString("scan.ratio_symbols"),
	}
}

// splitList accepts both list values and comma separated strings,
// as environment variables and `config set` produce the latter.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
