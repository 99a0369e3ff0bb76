package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genescan/internal/gene"
)

// testHome points the home directory at a temp dir so no user config is read
// or written.
func testHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// execute runs the CLI with fresh global state and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile, verbose = "", false

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestFindCmd(t *testing.T) {
	testHome(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"first gene", []string{"find", "AATGCTAACTAGCTGACTAAT"}, "ATGCTAACTAGCTGA\n"},
		{"lower case kept", []string{"find", "aatgcccTAAg"}, "atgcccTAA\n"},
		{"no gene", []string{"find", "CCCCATGCC"}, ""},
		{"all genes", []string{"find", "--all", "ATGTAAGATGCCCTAGT"}, "0\t6\tATGTAA\n7\t16\tATGCCCTAG\n"},
		{"gaps", []string{"find", "--all", "--gaps", "CATGTAAG"}, "1\t7\tATGTAA\ngap\t\"C\"\ngap\t\"G\"\n"},
		{"custom stops", []string{"--stop-codons", "TAG", "find", "ATGTAACCCTAG"}, "ATGTAACCCTAG\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestStopCmd(t *testing.T) {
	testHome(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"stop", "xxxyyyzzzTAAxxxyyyzzzTAAxx", "0", "TAA"}, "9\n"},
		{[]string{"stop", "xxxyyyzzzTAAxxxyyyzzzTAAxx", "1", "TAA"}, "26\n"},
		{[]string{"stop", "xxxyyyzzzTAAxxxyyyzzzTAAxx", "9", "TAA"}, "21\n"},
	}

	for _, tt := range tests {
		out, err := execute(t, tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out, tt.args)
	}

	_, err := execute(t, "stop", "ATGTAA", "x", "TAA")
	require.Error(t, err)
	assert.True(t, isUsageError(err))
}

func TestCountAndRatioCmds(t *testing.T) {
	testHome(t)

	out, err := execute(t, "count", "GAA", "ATGAACGAATTGAATC")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execute(t, "count", "AA", "ATAAAA")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = execute(t, "ratio", "ATGCCATAG")
	require.NoError(t, err)
	assert.Equal(t, "0.4444444444444444\n", out)

	out, err = execute(t, "--ratio-symbols", "AT", "ratio", "ATGCCATAG")
	require.NoError(t, err)
	assert.Equal(t, "0.5555555555555556\n", out)

	out, err = execute(t, "ratio", "")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

const testFasta = ">seq1 first strand\nATGTAAGATG\nCCCTAGT\n>seq2\nCCCC\n"

func TestGenesCmd(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", testFasta)

	out, err := execute(t, "--workers", "2", "genes", input)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"#Record\tStrand\tStart\tEnd\tLength\tStop\tCG_ratio\tGene\tProtein",
		"seq1\t+\t0\t6\t6\tTAA\t0.1667\tATGTAA\tM*",
		"seq1\t+\t7\t16\t9\tTAG\t0.5556\tATGCCCTAG\tMP*",
	}, lines(out))
}

func TestGenesCmd_OutputFile(t *testing.T) {
	testHome(t)
	input := writeFile(t, "strand.txt", "ATGCCCTAA\n")
	dest := filepath.Join(t.TempDir(), "genes.tsv")

	out, err := execute(t, "genes", "--no-protein", "-o", dest, input)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"#Record\tStrand\tStart\tEnd\tLength\tStop\tCG_ratio\tGene",
		"strand\t+\t0\t9\t9\tTAA\t0.4444\tATGCCCTAA",
	}, lines(string(data)))
}

func TestGenesCmd_BothStrands(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", ">r\nGGTTAGGGCATC\n")

	out, err := execute(t, "genes", "--both-strands", input)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.Equal(t, "r\t-\t2\t11\t9\tTAA\t0.4444\tATGCCCTAA\tMP*", got[1])
}

func TestGenesCmd_Errors(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", testFasta)

	_, err := execute(t, "genes", filepath.Join(t.TempDir(), "missing.fa"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, isUsageError(err))

	_, err = execute(t, "--stop-codons", "TAAA", "genes", input)
	require.Error(t, err)
	assert.ErrorIs(t, err, gene.ErrInvalidConfig)
	assert.True(t, isUsageError(err))

	_, err = execute(t, "genes")
	require.Error(t, err)
	assert.True(t, isUsageError(err))

	_, err = execute(t, "genes", "--bogus", input)
	require.Error(t, err)
	assert.True(t, isUsageError(err))

	_, err = execute(t, "frobnicate")
	require.Error(t, err)
	assert.True(t, isUsageError(err))

	_, err = execute(t, "--start-codon", "AUG", "--stop-codons", "UAA", "genes", "--both-strands", input)
	require.Error(t, err)
	assert.True(t, isUsageError(err))
	assert.Contains(t, err.Error(), "--both-strands")
}

func TestGenesCmd_RNAHasNoProtein(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", ">rna\nAUGCCCUAAG\n")

	out, err := execute(t, "--start-codon", "AUG", "--stop-codons", "UAA,UAG,UGA", "genes", input)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	fields := strings.Split(got[1], "\t")
	assert.Equal(t, "AUGCCCUAA", fields[len(fields)-2])
	assert.Empty(t, fields[len(fields)-1])
}

func TestGenesCmd_StoreAndHistory(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", testFasta)
	store := filepath.Join(t.TempDir(), "results.duckdb")

	first, err := execute(t, "--store", store, "genes", input)
	require.NoError(t, err)

	// Unchanged input: replayed from the store, no new run.
	second, err := execute(t, "--store", store, "genes", input)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	out, err := execute(t, "--store", store, "history")
	require.NoError(t, err)
	require.Len(t, lines(out), 2)
	assert.Contains(t, out, input)
	assert.Contains(t, out, "TAA,TAG,TGA")

	out, err = execute(t, "--store", store, "history", "--record", "seq1")
	require.NoError(t, err)
	assert.Len(t, lines(out), 3)

	out, err = execute(t, "--store", store, "history", "--min-length", "9")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "ATGCCCTAG")

	// Different codons or --rescan record a new run.
	_, err = execute(t, "--store", store, "--stop-codons", "TAG", "genes", input)
	require.NoError(t, err)
	_, err = execute(t, "--store", store, "genes", "--rescan", input)
	require.NoError(t, err)

	out, err = execute(t, "--store", store, "history")
	require.NoError(t, err)
	assert.Len(t, lines(out), 4)

	out, err = execute(t, "--store", store, "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")

	out, err = execute(t, "--store", store, "history")
	require.NoError(t, err)
	assert.Len(t, lines(out), 1)
}

func TestGenesCmd_StoreKeysOnScanSettings(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", ">seq1\nATGCCCTAAG\n")
	store := filepath.Join(t.TempDir(), "results.duckdb")

	cg, err := execute(t, "--store", store, "genes", input)
	require.NoError(t, err)
	assert.Contains(t, cg, "0.4444")

	// Same input and codons, different ratio symbols: scanned again.
	at, err := execute(t, "--store", store, "--ratio-symbols", "AT", "genes", input)
	require.NoError(t, err)
	assert.Contains(t, at, "0.5556")
	assert.NotContains(t, at, "0.4444")

	// Each setting is replayed from its own run.
	again, err := execute(t, "--store", store, "--ratio-symbols", "AT", "genes", input)
	require.NoError(t, err)
	assert.Equal(t, at, again)

	_, err = execute(t, "--store", store, "--frame-size", "2", "--start-codon", "AT", "--stop-codons", "AA", "genes", input)
	require.NoError(t, err)

	out, err := execute(t, "--store", store, "history")
	require.NoError(t, err)
	assert.Len(t, lines(out), 4)
}

func TestHistoryCmd_NoStore(t *testing.T) {
	testHome(t)
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.True(t, isUsageError(err))
}

func TestReportCmd(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", ">seq1\nATGTAAGATGCCCTAGTCTGCTG\n")

	out, err := execute(t, "report", "--min-length", "6", input)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Record", "Genes", "Longer_than_6", "Ratio_above_0.35", "Longest", "CTG_count"}, strings.Fields(got[0]))
	assert.Equal(t, []string{"seq1", "2", "1", "1", "9", "2"}, strings.Fields(got[1]))
}

func TestReportCmd_FromConfigFile(t *testing.T) {
	testHome(t)
	input := writeFile(t, "input.fa", ">seq1\nATGTAAGATGCCCTAGTCTGCTG\n")
	cfg := writeFile(t, "genescan.yaml", "report:\n  min_length: 3\n  count_pattern: ctg\n")

	out, err := execute(t, "--config", cfg, "report", input)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.Equal(t, "Longer_than_3", strings.Fields(got[0])[2])
	assert.Equal(t, []string{"seq1", "2", "2", "1", "9", "2"}, strings.Fields(got[1]))
}

func TestEnvironmentOverrides(t *testing.T) {
	testHome(t)
	t.Setenv("GENESCAN_SCAN_STOP_CODONS", "TAG")

	out, err := execute(t, "find", "ATGTAACCCTAG")
	require.NoError(t, err)
	assert.Equal(t, "ATGTAACCCTAG\n", out)
}

func TestConfigCmd(t *testing.T) {
	home := testHome(t)

	out, err := execute(t, "config", "set", "scan.stop_codons", "TAG,TGA")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, ".genescan.yaml"))

	out, err = execute(t, "config", "get", "scan.stop_codons")
	require.NoError(t, err)
	assert.Equal(t, "[TAG TGA]\n", out)

	out, err = execute(t, "find", "ATGTAACCCTAG")
	require.NoError(t, err)
	assert.Equal(t, "ATGTAACCCTAG\n", out)

	out, err = execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "stop_codons")
	assert.Contains(t, out, "start_codon: ATG")

	_, err = execute(t, "config", "set", "scan.frame_size", "0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gene.ErrInvalidConfig))

	_, err = execute(t, "config", "set", "no.such_key", "1")
	require.Error(t, err)
	assert.True(t, isUsageError(err))

	_, err = execute(t, "config", "get", "no.such_key")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	testHome(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "genescan version dev (none) built unknown\n", out)
}

func TestFetchCmd(t *testing.T) {
	testHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/strand.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ATGCCCTAA\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := execute(t, "fetch", "-d", dir, srv.URL+"/data/strand.txt")
	require.NoError(t, err)
	dest := filepath.Join(dir, "strand.txt")
	assert.Equal(t, dest+"\n", out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "ATGCCCTAA\n", string(data))

	// Existing files are kept.
	_, err = execute(t, "fetch", "-d", dir, srv.URL+"/data/strand.txt")
	require.NoError(t, err)

	_, err = execute(t, "fetch", "-d", dir, srv.URL+"/data/missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	_, statErr := os.Stat(filepath.Join(dir, "missing.txt.tmp"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)

	_, err = execute(t, "fetch", "ftp://example.org/strand.txt")
	require.Error(t, err)
	assert.True(t, isUsageError(err))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes))
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"TAA", "TAG"}, []string{"TAA", "TAG"}},
		{[]string{"TAA,TAG, TGA"}, []string{"TAA", "TAG", "TGA"}},
		{[]string{"TAA,", ""}, []string{"TAA"}},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitList(tt.in))
	}
}

func TestFetchDest(t *testing.T) {
	got, err := fetchDest("https://example.org/genomes/brca1.fa.gz?x=1", "/tmp/data")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data/brca1.fa.gz", got)

	_, err = fetchDest("https://example.org/", ".")
	assert.Error(t, err)

	_, err = fetchDest("file:///etc/passwd", ".")
	assert.Error(t, err)
}
