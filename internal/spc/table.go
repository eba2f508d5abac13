package spc

import (
	"strconv"
	"strings"
)

// Field is one key/value line of a summary block.
type Field struct {
	Key   string
	Value string
}

// Table is a flat rendering of a Result: a summary block followed by
// one detail row per point, cavity or batch.
type Table struct {
	Summary []Field
	Columns []string
	Rows    [][]string
}

// Table flattens the result using the spec decimals for numbers.
func (r *Result) Table() Table {
	d := r.Specs.Decimals
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', d, 64) }
	opt := func(v *float64) string {
		if v == nil {
			return "N/A"
		}
		return strconv.FormatFloat(*v, 'f', 3, 64)
	}
	spec := func(v *float64) string {
		if v == nil {
			return "N/A"
		}
		return num(*v)
	}

	t := Table{Summary: []Field{
		{"Inspection Item", r.Item},
		{"Analysis Mode", string(r.Mode)},
		{"Batch Range", r.Range.String()},
		{"Target", spec(r.Specs.Target)},
		{"USL", spec(r.Specs.USL)},
		{"LSL", spec(r.Specs.LSL)},
	}}
	if len(r.Excluded) > 0 {
		ex := make([]string, len(r.Excluded))
		for i, v := range r.Excluded {
			ex[i] = strconv.Itoa(v)
		}
		t.Summary = append(t.Summary, Field{"Excluded Batches", strings.Join(ex, ", ")})
	}

	switch r.Mode {
	case ModeBatch:
		if r.Data != nil {
			t.Summary = append(t.Summary, Field{"Series", r.Data.Name})
		}
		if s := r.Stats; s != nil {
			t.Summary = append(t.Summary,
				Field{"Count", strconv.Itoa(s.Count)},
				Field{"Mean", num(s.Mean)},
				Field{"Max", num(s.Max)},
				Field{"Min", num(s.Min)},
				Field{"Range", num(s.Range)},
				Field{"Std (within)", num(s.StdWithin)},
				Field{"Std (overall)", num(s.StdOverall)},
			)
		}
		if c := r.ControlLimits; c != nil {
			t.Summary = append(t.Summary,
				Field{"UCL", num(c.UCL)},
				Field{"CL", num(c.CL)},
				Field{"LCL", num(c.LCL)},
				Field{"UCL (MR)", num(c.UCLMR)},
				Field{"CL (MR)", num(c.CLMR)},
			)
		}
		if c := r.Capability; c != nil {
			t.Summary = append(t.Summary,
				Field{"Cp", opt(c.Cp)},
				Field{"Cpk", opt(c.Cpk)},
				Field{"Pp", opt(c.Pp)},
				Field{"Ppk", opt(c.Ppk)},
				Field{"Sigma Level", opt(c.SigmaLevel)},
				Field{"DPMO", opt(c.DPMO)},
			)
		} else {
			t.Summary = append(t.Summary, Field{"Capability", "N/A"})
		}
		t.Summary = append(t.Summary, Field{"Violations", strconv.Itoa(len(r.ViolationsDetail))})

		t.Columns = []string{"Batch Index", "Batch", "Value", "Moving Range", "Rules"}
		if r.Data != nil {
			rules := map[int][]string{}
			for _, v := range r.ViolationsDetail {
				rules[v.Index] = append(rules[v.Index], v.Rule.String())
			}
			for i, v := range r.Data.Values {
				mr := ""
				if i > 0 && i-1 < len(r.Data.MRValues) {
					mr = num(r.Data.MRValues[i-1])
				}
				t.Rows = append(t.Rows, []string{
					strconv.Itoa(r.Data.Indices[i]), r.Data.Labels[i], num(v), mr, strings.Join(rules[i], "; "),
				})
			}
		}
	case ModeCavity:
		t.Columns = []string{"Cavity", "Count", "Mean", "Std (within)", "Std (overall)", "Cpk", "Ppk"}
		for _, c := range r.Cavities {
			t.Rows = append(t.Rows, []string{
				c.Cavity, strconv.Itoa(c.Count), num(c.Mean), num(c.StdWithin), num(c.StdOverall), opt(c.Cpk), opt(c.Ppk),
			})
		}
	case ModeGroup:
		t.Columns = []string{"Batch Index", "Batch", "N", "Min", "Max", "Avg", "Range"}
		for _, g := range r.Groups {
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(g.Index), g.Batch, strconv.Itoa(g.N), num(g.Min), num(g.Max), num(g.Avg), num(g.Range),
			})
		}
	}
	for _, n := range r.Notes {
		t.Summary = append(t.Summary, Field{"Note", n})
	}
	return t
}
