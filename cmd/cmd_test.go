package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/qip-spc-cli/internal/testutil"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// resetFlags restores every flag of c and its children to its default so
// values and Changed state do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// fixture isolates HOME and writes a workbook with one inspection item
// and one excluded sheet.
func fixture(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return testutil.WriteXLSX(t, home, "qip.xlsx", []workbook.Sheet{
		testutil.LengthSheet(),
		{Name: "Summary", Rows: [][]string{{"notes"}}},
	})
}

func TestItems(t *testing.T) {
	path := fixture(t)

	out, err := runCmd(t, "items", path)
	require.NoError(t, err)
	assert.Equal(t, "Length\n", out)

	out, err = runCmd(t, "items", path, "--json")
	require.NoError(t, err)
	var items []string
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, []string{"Length"}, items)
}

func TestCavitiesAndBatches(t *testing.T) {
	path := fixture(t)

	out, err := runCmd(t, "cavities", path, "--item", "Length")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_cavities": 2`)
	assert.Contains(t, out, "1穴")

	out, err = runCmd(t, "batches", path, "--item", "Length")
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "B05")

	out, err = runCmd(t, "batches", path, "--item", "Length", "--json")
	require.NoError(t, err)
	var batches []workbook.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &batches))
	assert.Len(t, batches, 5)

	_, err = runCmd(t, "cavities", path)
	assert.Error(t, err, "--item is required")
}

func TestAnalyzeJSONToStdout(t *testing.T) {
	path := fixture(t)

	out, err := runCmd(t, "analyze", path, "--item", "Length", "--cavity", "1穴")
	require.NoError(t, err)
	var rep struct {
		RunID  string `json:"run_id"`
		Result struct {
			Mode  string `json:"mode"`
			Item  string `json:"item"`
			Stats struct {
				Count int     `json:"count"`
				Mean  float64 `json:"mean"`
			} `json:"stats"`
		} `json:"result"`
		Insights []json.RawMessage `json:"insights"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "batch", rep.Result.Mode)
	assert.Equal(t, "Length", rep.Result.Item)
	assert.Equal(t, 5, rep.Result.Stats.Count)
	assert.InDelta(t, 10.0, rep.Result.Stats.Mean, 1e-9)
	assert.Empty(t, rep.Insights)
}

func TestAnalyzeCavityModeWithInsights(t *testing.T) {
	path := fixture(t)

	out, err := runCmd(t, "analyze", path, "--item", "Length", "--mode", "cavity", "--insights")
	require.NoError(t, err)
	var rep struct {
		Result struct {
			Cavities []json.RawMessage `json:"cavities"`
		} `json:"result"`
		Insights []json.RawMessage `json:"insights"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Result.Cavities, 2)
	assert.NotEmpty(t, rep.Insights)
}

func TestAnalyzeMarkdownAndFilter(t *testing.T) {
	path := fixture(t)

	out, err := runCmd(t, "analyze", path, "--item", "Length", "--format", "md", "--start", "2", "--exclude", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "[ANALYSIS SUMMARY]")
	assert.Contains(t, out, "[DETAIL]")
}

func TestAnalyzeWritesXLSX(t *testing.T) {
	path := fixture(t)
	dest := filepath.Join(t.TempDir(), "reports", "length.xlsx")

	out, err := runCmd(t, "analyze", path, "--item", "Length", "--output", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote xlsx report to "+dest)

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Detail", "Violations"}, f.GetSheetList())
}

func TestAnalyzeXLSXDefaultsToOutputDir(t *testing.T) {
	path := fixture(t)
	dir := t.TempDir()
	_, err := runCmd(t, "config", "set", "output_dir", dir)
	require.NoError(t, err)

	out, err := runCmd(t, "analyze", path, "--item", "Length", "--format", "xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".xlsx", filepath.Ext(entries[0].Name()))
}

func TestAnalyzePNGChart(t *testing.T) {
	path := fixture(t)
	dest := filepath.Join(t.TempDir(), "length.png")

	_, err := runCmd(t, "analyze", path, "--item", "Length", "--cavity", "2穴", "-o", dest)
	require.NoError(t, err)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	_, err = runCmd(t, "analyze", path, "--item", "Length", "--mode", "cavity", "-o", dest)
	assert.Error(t, err)
}

func TestAnalyzeErrors(t *testing.T) {
	path := fixture(t)

	_, err := runCmd(t, "analyze", path, "--item", "Length", "--cavity", "1穴", "--average")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = runCmd(t, "analyze", path, "--item", "Length", "--mode", "weekly")
	assert.Error(t, err)

	_, err = runCmd(t, "analyze", path, "--item", "Length", "--format", "pdf")
	assert.Error(t, err)

	_, err = runCmd(t, "analyze", path, "--item", "Width")
	assert.Error(t, err)

	_, err = runCmd(t, "analyze", filepath.Join(t.TempDir(), "missing.xlsx"), "--item", "Length")
	assert.ErrorContains(t, err, "load")
}

func TestRecommend(t *testing.T) {
	path := fixture(t)

	out, err := runCmd(t, "recommend", path, "--item", "Length")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary chart: X-bar/R")
	assert.Contains(t, out, "Stage: Machine Performance")

	out, err = runCmd(t, "recommend", path, "--item", "Length", "--cavity", "2穴", "--json",
		"--violations", "3", "--process-model", "c", "--sensitivity", "high")
	require.NoError(t, err)
	var adv struct {
		Series string `json:"series"`
		Count  int    `json:"count"`
		Plan   struct {
			Stability struct {
				Violations int  `json:"violations"`
				Stable     bool `json:"stable"`
			} `json:"stability"`
		} `json:"action_plan"`
		Selection struct {
			Warnings []string `json:"warnings"`
		} `json:"aiag_vda"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &adv))
	assert.Equal(t, 5, adv.Count)
	assert.Equal(t, 3, adv.Plan.Stability.Violations)
	assert.False(t, adv.Plan.Stability.Stable)
	assert.NotEmpty(t, adv.Selection.Warnings)

	_, err = runCmd(t, "recommend", path, "--item", "Length", "--process-model", "Z")
	assert.Error(t, err)
	_, err = runCmd(t, "recommend", path, "--item", "Length", "--violations", "-1")
	assert.Error(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	fixture(t)

	out, err := runCmd(t, "config", "set", "default_decimals", "3")
	require.NoError(t, err)
	assert.Equal(t, "Saved config\n", out)

	out, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_decimals: 3\n")
	assert.Contains(t, out, "cavity_marker: 穴\n")

	_, err = runCmd(t, "config", "set", "histogram_bins", "0")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "api_key", "x")
	assert.Error(t, err)
}

func TestGuide(t *testing.T) {
	fixture(t)

	out, err := runCmd(t, "guide")
	require.NoError(t, err)
	assert.Contains(t, out, "Machine Performance [machine-performance]")

	out, err = runCmd(t, "guide", "models", "--json")
	require.NoError(t, err)
	var models []struct {
		Model string `json:"model"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &models))
	require.Len(t, models, 5)
	assert.Equal(t, "A1", models[0].Model)

	out, err = runCmd(t, "guide", "sensitivity")
	require.NoError(t, err)
	assert.Contains(t, out, "[high]")

	_, err = runCmd(t, "guide", "charts")
	assert.Error(t, err)
}
