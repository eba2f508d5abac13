package workbook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Workbook {
	item := Sheet{
		Name: "Length",
		Rows: [][]string{
			{"Batch", "Target", "USL", "LSL", "1穴", "2穴", "Note"},
			{"B001", "10.00", "11.0", "9.0", "9.8", "10.0", ""},
			{"B002", "", "", "", "10.0", "10.4", "x"},
			{"", "", "", "", "99", "99", ""},
			{"B003", "", "", "", "10.2", "n/a", ""},
			{"B004", "", "", "", "", "", ""},
			{"B005", "", "", "", "9.9", "9.7", ""},
			{"B006", "", "", "", "10.1", "10.3", ""},
		},
	}
	return New("fixture.xlsx", []Sheet{
		{Name: "Summary", Rows: [][]string{{"a"}}},
		item,
		{Name: "Width", Rows: [][]string{{"Batch", "Target", "USL", "LSL", "1穴"}, {"B1", "5", "", "4", "5.1"}}},
		{Name: "Width analysis", Rows: [][]string{{"x"}}},
		{Name: "配置表", Rows: [][]string{{"x"}}},
		{Name: "Empty"},
	}, DefaultOptions())
}

func TestInspectionItems(t *testing.T) {
	wb := fixture()
	assert.Equal(t, []string{"Length", "Width"}, wb.InspectionItems())
	assert.Len(t, wb.SheetNames(), 6)
}

func TestBatches(t *testing.T) {
	wb := fixture()
	got, err := wb.Batches("Length")
	require.NoError(t, err)
	assert.Equal(t, []Batch{
		{Index: 1, Name: "B001"},
		{Index: 2, Name: "B002"},
		{Index: 4, Name: "B003"},
		{Index: 5, Name: "B004"},
		{Index: 6, Name: "B005"},
		{Index: 7, Name: "B006"},
	}, got)

	empty, err := wb.Batches("Empty")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = wb.Batches("Nope")
	assert.True(t, errors.Is(err, ErrSheetNotFound))
	var se *SheetError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Nope", se.Sheet)
}

func TestBatchNameSeparator(t *testing.T) {
	opt := DefaultOptions()
	opt.BatchNameSeparator = "-"
	wb := New("", []Sheet{{Name: "S", Rows: [][]string{{"Batch"}, {"L01-2024"}, {"-odd"}}}}, opt)
	got, err := wb.Batches("S")
	require.NoError(t, err)
	assert.Equal(t, "L01", got[0].Name)
	assert.Equal(t, "-odd", got[1].Name)
}

func TestCavityInfo(t *testing.T) {
	info, err := fixture().CavityInfo("Length")
	require.NoError(t, err)
	assert.Equal(t, CavityInfo{TotalCavities: 2, CavityNames: []string{"1穴", "2穴"}}, info)
}

func TestSpecs(t *testing.T) {
	wb := fixture()
	sp, err := wb.Specs("Length")
	require.NoError(t, err)
	require.True(t, sp.HasLimits())
	assert.Equal(t, 10.0, *sp.Target)
	assert.Equal(t, 11.0, *sp.USL)
	assert.Equal(t, 9.0, *sp.LSL)
	assert.Equal(t, 2, sp.Decimals)
	assert.Equal(t, 2.0, sp.Tolerance())

	partial, err := wb.Specs("Width")
	require.NoError(t, err)
	assert.Nil(t, partial.USL)
	assert.False(t, partial.HasLimits())
	assert.Equal(t, 0.0, partial.Tolerance())
}

func TestBuildSeriesNamed(t *testing.T) {
	wb := fixture()
	s, err := wb.BuildSeries("Length", Named("2穴"), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "2穴", s.Name)
	assert.Equal(t, []string{"B001", "B002", "B005", "B006"}, s.Labels)
	assert.Equal(t, []float64{10.0, 10.4, 9.7, 10.3}, s.Values)
	assert.Equal(t, []int{1, 2, 6, 7}, s.Indices)

	fuzzy, err := wb.BuildSeries("Length", Named("1"), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "1穴", fuzzy.Name)
}

func TestBuildSeriesAverage(t *testing.T) {
	s, err := fixture().BuildSeries("Length", AverageAll(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4, 6, 7}, s.Indices)
	assert.InDelta(t, 9.9, s.Values[0], 1e-12)
	assert.InDelta(t, 10.2, s.Values[1], 1e-12)
	assert.InDelta(t, 10.2, s.Values[2], 1e-12, "non-numeric cell is skipped, not zeroed")
	assert.Equal(t, 1, s.Precision)
}

func TestBuildSeriesRangeAndExclusion(t *testing.T) {
	wb := fixture()
	full, err := wb.BuildSeries("Length", AverageAll(), Filter{})
	require.NoError(t, err)

	again, err := wb.BuildSeries("Length", AverageAll(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, full, again)

	without, err := wb.BuildSeries("Length", AverageAll(), Filter{Excluded: []int{4}})
	require.NoError(t, err)
	require.Equal(t, full.Len()-1, without.Len())
	assert.Equal(t, []int{1, 2, 6, 7}, without.Indices)
	for i, idx := range without.Indices {
		for j, fi := range full.Indices {
			if fi == idx {
				assert.Equal(t, full.Values[j], without.Values[i])
			}
		}
	}

	ranged, err := wb.BuildSeries("Length", AverageAll(), Filter{Range: BatchRange{Start: 2, End: 6}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, ranged.Indices)

	reversed, err := wb.BuildSeries("Length", AverageAll(), Filter{Range: BatchRange{Start: 6, End: 2}})
	require.NoError(t, err)
	assert.Equal(t, ranged.Indices, reversed.Indices)

	outside, err := wb.BuildSeries("Length", AverageAll(), Filter{Excluded: []int{99}})
	require.NoError(t, err)
	assert.Equal(t, full.Len(), outside.Len())
}

func TestBuildSeriesErrors(t *testing.T) {
	wb := fixture()

	_, err := wb.BuildSeries("Length", Named("9穴"), Filter{})
	assert.ErrorIs(t, err, ErrCavityNotFound)

	_, err = wb.BuildSeries("Length", CavitySelector{}, Filter{})
	assert.ErrorIs(t, err, ErrInvalidSelector)

	_, err = wb.BuildSeries("Width", AverageAll(), Filter{})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = wb.BuildSeries("Length", AverageAll(), Filter{Range: BatchRange{Start: 7}})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = wb.BuildSeries("Missing", AverageAll(), Filter{})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestCavityRows(t *testing.T) {
	rows, precision, err := fixture().CavityRows("Length", Filter{Range: BatchRange{End: 4}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []float64{9.8, 10.0}, rows[0].Values)
	assert.Equal(t, []float64{10.2}, rows[2].Values)
	assert.Equal(t, 1, precision)
}

func TestParseNumeric(t *testing.T) {
	opt := DefaultOptions()
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10.25", 10.25, true},
		{"10,25", 10.25, true},
		{"1.000,5", 1000.5, true},
		{"1,000.5", 1000.5, true},
		{"1,234,567", 1234567, true},
		{"-1.234.567,25", -1234567.25, true},
		{"1,000", 1000, true},
		{"12,345", 12345, true},
		{"0,125", 0.125, true},
		{"9.800", 9.8, true},
		{"1,2,3", 0, false},
		{"12,34,567", 0, false},
		{" 12% ", 12, true},
		{"1e-3", 0.001, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"-Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumeric(tt.in, opt)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}

	dot := opt
	dot.DecimalSeparator = '.'
	dot.ThousandsSeparator = ','
	got, ok := ParseNumeric("2,500", dot)
	require.True(t, ok)
	assert.Equal(t, 2500.0, got)
}

func TestPrecision(t *testing.T) {
	opt := DefaultOptions()
	assert.Equal(t, 3, Precision("9.800", opt))
	assert.Equal(t, 0, Precision("10", opt))
	assert.Equal(t, 2, Precision("3,25", opt))
	assert.Equal(t, 10, Precision("0.1000000000000000055", opt))
	assert.Equal(t, 0, Precision("1,000", opt))
	assert.Equal(t, 0, Precision("1,234,567", opt))
	assert.Equal(t, 2, Precision("1.234.567,25", opt))
	assert.Equal(t, 3, Precision("0,125", opt))
}
