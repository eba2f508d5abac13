// Package nelson scans a control-charted series for Nelson rule 1-4
// violations. Detection is stateless: the same input yields the same output.
package nelson

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rule identifies one Nelson rule.
type Rule int

const (
	// BeyondLimits is a point strictly above UCL or below LCL.
	BeyondLimits Rule = 1
	// Shift is nine points in a row strictly on one side of the center line.
	Shift Rule = 2
	// Trend is six points in a row strictly increasing or decreasing.
	Trend Rule = 3
	// Oscillation is fourteen points in a row alternating up and down.
	Oscillation Rule = 4
)

const (
	shiftRun       = 9
	trendRun       = 6
	oscillationRun = 14
)

func (r Rule) String() string { return "Rule " + strconv.Itoa(int(r)) }

// MarshalText renders the rule as "Rule N".
func (r Rule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText accepts "Rule N" or "N".
func (r *Rule) UnmarshalText(b []byte) error {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(string(b), "Rule")))
	if err != nil || n < 1 || n > 4 {
		return fmt.Errorf("invalid nelson rule %q", string(b))
	}
	*r = Rule(n)
	return nil
}

// Limits are the center line and control limits of a chart.
type Limits struct {
	CL  float64 `json:"cl"`
	UCL float64 `json:"ucl"`
	LCL float64 `json:"lcl"`
}

// Sigma is the one-sigma distance implied by the upper limit.
func (l Limits) Sigma() float64 { return (l.UCL - l.CL) / 3 }

// Violation is one rule firing at one 0-based point index.
type Violation struct {
	Rule    Rule    `json:"rule"`
	Index   int     `json:"index"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// Detect evaluates rules 1-4 independently and returns every firing,
// grouped by rule then ordered by index. A point may fire several rules.
// Limits with no spread (sigma <= 0) produce no violations.
func Detect(values []float64, l Limits) []Violation {
	out := []Violation{}
	if !(l.Sigma() > 0) {
		return out
	}
	out = append(out, beyondLimits(values, l)...)
	out = append(out, shift(values, l.CL)...)
	out = append(out, trend(values)...)
	out = append(out, oscillation(values)...)
	return out
}

// Messages returns the message of each violation.
func Messages(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Message
	}
	return out
}

// Points returns the distinct flagged indices in ascending order.
func Points(vs []Violation) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, v := range vs {
		if !seen[v.Index] {
			seen[v.Index] = true
			out = append(out, v.Index)
		}
	}
	sort.Ints(out)
	return out
}

func beyondLimits(values []float64, l Limits) []Violation {
	var out []Violation
	for i, v := range values {
		if v > l.UCL || v < l.LCL {
			out = append(out, Violation{
				Rule: BeyondLimits, Index: i, Value: v,
				Message: fmt.Sprintf("Rule 1: Point %d is outside control limits (%.4f)", i+1, v),
			})
		}
	}
	return out
}

func sign(d float64) int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

func shift(values []float64, cl float64) []Violation {
	var out []Violation
	side, run := 0, 0
	for i, v := range values {
		s := sign(v - cl)
		if s == 0 {
			side, run = 0, 0
			continue
		}
		if s == side {
			run++
		} else {
			side, run = s, 1
		}
		if run >= shiftRun {
			out = append(out, Violation{
				Rule: Shift, Index: i, Value: v,
				Message: fmt.Sprintf("Rule 2: %d consecutive points on one side at point %d", shiftRun, i+1),
			})
		}
	}
	return out
}

func trend(values []float64) []Violation {
	var out []Violation
	dir, run := 0, 1
	for i := 1; i < len(values); i++ {
		d := sign(values[i] - values[i-1])
		if d == 0 {
			dir, run = 0, 1
			continue
		}
		if d == dir {
			run++
		} else {
			dir, run = d, 2
		}
		if run >= trendRun {
			out = append(out, Violation{
				Rule: Trend, Index: i, Value: values[i],
				Message: fmt.Sprintf("Rule 3: %d consecutive points increasing or decreasing at point %d", trendRun, i+1),
			})
		}
	}
	return out
}

// oscillation counts consecutive non-zero steps that each reverse the
// previous direction; 13 such steps span 14 points.
func oscillation(values []float64) []Violation {
	var out []Violation
	prev, steps := 0, 0
	for i := 1; i < len(values); i++ {
		d := sign(values[i] - values[i-1])
		switch {
		case d == 0:
			steps = 0
		case prev != 0 && d == -prev:
			steps++
		default:
			steps = 1
		}
		prev = d
		if steps >= oscillationRun-1 {
			out = append(out, Violation{
				Rule: Oscillation, Index: i, Value: values[i],
				Message: fmt.Sprintf("Rule 4: %d points alternating direction at point %d", oscillationRun, i+1),
			})
		}
	}
	return out
}
