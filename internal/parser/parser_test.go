package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/qip-spc-cli/internal/parser"
	"github.com/KaramelBytes/qip-spc-cli/internal/testutil"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileXLSX(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteXLSX(t, dir, "part.xlsx", []workbook.Sheet{
		{Name: "Summary", Rows: [][]string{{"overview"}}},
		testutil.LengthSheet(),
	})

	wb, err := parser.LoadFile(path, workbook.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, path, wb.Source)
	assert.Equal(t, []string{"Summary", "Length"}, wb.SheetNames())
	assert.Equal(t, []string{"Length"}, wb.InspectionItems())

	info, err := wb.CavityInfo("Length")
	require.NoError(t, err)
	assert.Equal(t, 2, info.TotalCavities)

	batches, err := wb.Batches("Length")
	require.NoError(t, err)
	assert.Len(t, batches, 5)

	s, err := wb.BuildSeries("Length", workbook.Named("1穴"), workbook.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []float64{9.8, 10.0, 10.2, 9.9, 10.1}, s.Values)

	sp, err := wb.Specs("Length")
	require.NoError(t, err)
	require.True(t, sp.HasLimits())
	assert.Equal(t, 11.0, *sp.USL)
}

func TestLoadFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bore.csv")
	content := "\uFEFFBatch;Target;USL;LSL;1穴\n" +
		"L1;5,00;5,10;4,90;5,01\n" +
		"L2;;;;4,98\n" +
		"L3;;;;5,03\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	wb, err := parser.LoadFile(p, workbook.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"bore"}, wb.InspectionItems())

	s, err := wb.BuildSeries("bore", workbook.AverageAll(), workbook.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "L3"}, s.Labels)
	assert.InDelta(t, 4.98, s.Values[1], 1e-12)

	sp, err := wb.Specs("bore")
	require.NoError(t, err)
	assert.Equal(t, 2, sp.Decimals)
	assert.InDelta(t, 4.90, *sp.LSL, 1e-12)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := parser.LoadFile(filepath.Join(dir, "missing.xlsx"), workbook.DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	_, err = parser.LoadFile(txt, workbook.DefaultOptions())
	assert.ErrorIs(t, err, parser.ErrUnsupported)

	bad := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err = parser.LoadFile(bad, workbook.DefaultOptions())
	assert.ErrorIs(t, err, workbook.ErrMalformedWorkbook)
}
