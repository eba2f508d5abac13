// Package diagnostic turns an analysis result into short expert notes for
// injection-molding engineers.
package diagnostic

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
)

// Level orders insights by urgency.
type Level string

const (
	LevelGood  Level = "good"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelAlert Level = "alert"
)

// Insight is one diagnostic note.
type Insight struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// String renders the insight as "Title: message".
func (i Insight) String() string { return i.Title + ": " + i.Message }

// Thresholds used by Generate.
const (
	eliteCpk          = 1.67
	capableCpk        = 1.33
	stabilityRatioMin = 0.9
	centeringMaxPct   = 10
	cavityCpkGapMax   = 0.4
)

// Generate returns the notes for res. Group-mode results have none.
func Generate(res *spc.Result) []Insight {
	if res == nil {
		return nil
	}
	switch res.Mode {
	case spc.ModeBatch:
		return batch(res)
	case spc.ModeCavity:
		return cavity(res)
	default:
		return nil
	}
}

func batch(res *spc.Result) []Insight {
	var out []Insight
	var cpk, ppk *float64
	if res.Capability != nil {
		cpk, ppk = res.Capability.Cpk, res.Capability.Ppk
	}

	switch {
	case cpk == nil:
		out = append(out, Insight{LevelInfo, "Capability unavailable", "Cpk cannot be computed; check that USL and LSL are set and the data varies."})
	case *cpk >= eliteCpk:
		out = append(out, Insight{LevelGood, "Elite process", fmt.Sprintf("Cpk (%.3f) is excellent with ample tolerance margin.", *cpk)})
	case *cpk >= capableCpk:
		out = append(out, Insight{LevelGood, "Capable process", fmt.Sprintf("Cpk (%.3f) meets the common quality requirement.", *cpk)})
	case *cpk > 0:
		out = append(out, Insight{LevelWarn, "Insufficient capability", fmt.Sprintf("Cpk (%.3f) is below target; review the physical precision of the mold.", *cpk)})
	default:
		out = append(out, Insight{LevelAlert, "Not capable", fmt.Sprintf("Cpk (%.3f) shows the process mean is at or outside a specification limit.", *cpk)})
	}

	if cpk != nil && ppk != nil && *cpk > 0 && *ppk > 0 {
		ratio := *ppk / *cpk
		if ratio < stabilityRatioMin {
			out = append(out, Insight{LevelWarn, "Stability alert", fmt.Sprintf(
				"Ppk is only %.1f%% of Cpk, which points to significant batch-to-batch variation; check material lot numbers and ambient temperature/humidity records first.", ratio*100)})
		} else {
			out = append(out, Insight{LevelGood, "Highly stable", "Cpk and Ppk agree closely; drift during production is low and controlled."})
		}
	}

	if off, ok := centeringOffset(res); ok && math.Abs(off) > centeringMaxPct {
		side := "LSL"
		if off > 0 {
			side = "USL"
		}
		out = append(out, Insight{LevelWarn, "Off-center", fmt.Sprintf(
			"The mean is shifted toward the %s by %.1f%% of the tolerance; for molded parts this usually calls for tuning holding pressure or mold temperature.", side, math.Abs(off))})
	}

	if n := violationCount(res); n > 0 {
		out = append(out, Insight{LevelAlert, "Out of control", fmt.Sprintf(
			"%d rule violation(s) detected. Special causes are present; trace the production history and run a root cause analysis.", n)})
	} else {
		out = append(out, Insight{LevelGood, "In statistical control", "All points fall within the control limits."})
	}
	return out
}

// centeringOffset is (mean-target)/(USL-LSL) in percent. It needs a
// target, both limits and a positive tolerance.
func centeringOffset(res *spc.Result) (float64, bool) {
	sp := res.Specs
	tol := sp.Tolerance()
	if sp.Target == nil || res.Stats == nil || !(tol > 0) {
		return 0, false
	}
	return (res.Stats.Mean - *sp.Target) / tol * 100, true
}

func violationCount(res *spc.Result) int {
	n := len(res.ViolationsDetail)
	if res.XbarR != nil {
		n += len(res.XbarR.Violations) + len(res.XbarR.RViolations)
	}
	return n
}

func cavity(res *spc.Result) []Insight {
	var known []spc.CavityStat
	for _, c := range res.Cavities {
		if c.Cpk != nil {
			known = append(known, c)
		}
	}
	if len(known) == 0 {
		return []Insight{{LevelInfo, "Capability unavailable", "No cavity has a computable Cpk."}}
	}
	lo, hi := *known[0].Cpk, *known[0].Cpk
	var weak []string
	for _, c := range known {
		lo = math.Min(lo, *c.Cpk)
		hi = math.Max(hi, *c.Cpk)
		if *c.Cpk < capableCpk {
			weak = append(weak, c.Cavity)
		}
	}

	var out []Insight
	if gap := hi - lo; gap > cavityCpkGapMax {
		out = append(out, Insight{LevelWarn, "Cavity imbalance", fmt.Sprintf(
			"The Cpk spread between cavities is %.2f; check runner balance, cooling circuit consistency and venting of each cavity.", gap)})
	} else {
		out = append(out, Insight{LevelGood, "Cavities balanced", "All cavities perform evenly; runner and cooling are consistent."})
	}
	if len(weak) > 0 {
		out = append(out, Insight{LevelWarn, "Maintenance", fmt.Sprintf(
			"Cavities [%s] are below Cpk %.2f; inspect their insert dimensions or clean them first.", strings.Join(weak, ", "), capableCpk)})
	}
	return out
}
