package export

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders the report as sectioned plain text.
func Markdown(r *Report) string {
	res := r.Result
	t := res.Table()
	var b strings.Builder

	b.WriteString("[ANALYSIS SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run ID: %s\n", r.RunID))
	if !r.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	}
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source))
	}
	for _, f := range t.Summary {
		if f.Key == "Note" {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", f.Key, safeCell(f.Value)))
	}

	if len(res.Violations) > 0 {
		b.WriteString("\n[RULE VIOLATIONS]\n")
		for _, v := range res.Violations {
			b.WriteString("- " + v + "\n")
		}
	}
	if x := res.XbarR; x != nil {
		d := res.Specs.Decimals
		b.WriteString("\n[X-BAR/R CHART]\n")
		b.WriteString(fmt.Sprintf("- Subgroup size: %d\n", x.SubgroupSize))
		b.WriteString(fmt.Sprintf("- X-bar: CL %.*f, UCL %.*f, LCL %.*f\n", d, x.XbarBar, d, x.UCLXbar, d, x.LCLXbar))
		b.WriteString(fmt.Sprintf("- R: CL %.*f, UCL %.*f, LCL %.*f\n", d, x.RBar, d, x.UCLR, d, x.LCLR))
		b.WriteString(fmt.Sprintf("- Violations: X-bar %d, R %d\n", len(x.Violations), len(x.RViolations)))
	}
	if len(r.Insights) > 0 {
		b.WriteString("\n[INSIGHTS]\n")
		for _, in := range r.Insights {
			b.WriteString(fmt.Sprintf("- (%s) %s\n", in.Level, in.String()))
		}
	}
	if len(res.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range res.Notes {
			b.WriteString("- " + n + "\n")
		}
	}

	if len(t.Rows) > 0 {
		b.WriteString("\n[DETAIL]\n")
		b.WriteString("| " + strings.Join(t.Columns, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(t.Columns)) + "\n")
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = safeCell(c)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	return b.String()
}

// safeCell keeps a value on one line and out of the table syntax.
func safeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}
