package diagnostic

import (
	"testing"

	"github.com/KaramelBytes/qip-spc-cli/internal/nelson"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func titles(in []Insight) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.Title
	}
	return out
}

func batchResult(cpk, ppk *float64, mean float64, violations int) *spc.Result {
	res := &spc.Result{
		Mode:       spc.ModeBatch,
		Stats:      &spc.Stats{Mean: mean},
		Capability: &spc.Capability{Cpk: cpk, Ppk: ppk},
		Specs:      workbook.Specs{Target: ptr(10), USL: ptr(11), LSL: ptr(9)},
	}
	for i := 0; i < violations; i++ {
		res.ViolationsDetail = append(res.ViolationsDetail, nelson.Violation{Rule: nelson.BeyondLimits, Index: i})
	}
	return res
}

func TestGenerateBatch(t *testing.T) {
	cases := []struct {
		name string
		res  *spc.Result
		want []string
	}{
		{"elite stable centered", batchResult(ptr(1.8), ptr(1.7), 10.05, 0),
			[]string{"Elite process", "Highly stable", "In statistical control"}},
		{"capable drifting", batchResult(ptr(1.4), ptr(1.0), 10.0, 0),
			[]string{"Capable process", "Stability alert", "In statistical control"}},
		{"weak off-center ooc", batchResult(ptr(0.8), ptr(0.78), 10.3, 2),
			[]string{"Insufficient capability", "Highly stable", "Off-center", "Out of control"}},
		{"no capability", batchResult(nil, nil, 10.0, 0),
			[]string{"Capability unavailable", "In statistical control"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(Generate(tc.res)))
		})
	}
}

func TestGenerateCenteringDirection(t *testing.T) {
	low := Generate(batchResult(ptr(1.5), ptr(1.5), 9.7, 0))
	require.Len(t, low, 4)
	assert.Contains(t, low[2].Message, "toward the LSL by 15.0%")
	assert.Equal(t, LevelWarn, low[2].Level)

	high := Generate(batchResult(ptr(1.5), ptr(1.5), 10.25, 0))
	assert.Contains(t, high[2].Message, "toward the USL by 12.5%")
}

func TestGenerateCountsXbarViolations(t *testing.T) {
	res := batchResult(ptr(1.5), ptr(1.5), 10, 0)
	res.XbarR = &spc.XbarR{Violations: []nelson.Violation{{Rule: nelson.Shift}}}
	out := Generate(res)
	last := out[len(out)-1]
	assert.Equal(t, "Out of control", last.Title)
	assert.Contains(t, last.Message, "1 rule violation")
}

func TestGenerateCavity(t *testing.T) {
	res := &spc.Result{Mode: spc.ModeCavity, Cavities: []spc.CavityStat{
		{Cavity: "1穴", Cpk: ptr(1.9)},
		{Cavity: "2穴", Cpk: ptr(1.1)},
		{Cavity: "3穴", Cpk: ptr(1.2)},
		{Cavity: "4穴"},
	}}
	out := Generate(res)
	require.Len(t, out, 2)
	assert.Equal(t, "Cavity imbalance", out[0].Title)
	assert.Contains(t, out[0].Message, "0.80")
	assert.Contains(t, out[1].Message, "[2穴, 3穴]")

	balanced := Generate(&spc.Result{Mode: spc.ModeCavity, Cavities: []spc.CavityStat{
		{Cavity: "A", Cpk: ptr(1.5)}, {Cavity: "B", Cpk: ptr(1.6)},
	}})
	assert.Equal(t, []string{"Cavities balanced"}, titles(balanced))

	none := Generate(&spc.Result{Mode: spc.ModeCavity, Cavities: []spc.CavityStat{{Cavity: "A"}}})
	assert.Equal(t, []string{"Capability unavailable"}, titles(none))
}

func TestGenerateGroupAndNil(t *testing.T) {
	assert.Nil(t, Generate(nil))
	assert.Empty(t, Generate(&spc.Result{Mode: spc.ModeGroup}))
}
