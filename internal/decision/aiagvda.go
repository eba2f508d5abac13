package decision

import (
	"fmt"
	"strings"
)

// Scale is the AIAG-VDA data category.
type Scale string

const (
	Variable  Scale = "variable"
	Attribute Scale = "attribute"
)

// ScaleOf maps a detected DataType to its AIAG-VDA scale.
func ScaleOf(t DataType) Scale {
	if t == Continuous {
		return Variable
	}
	return Attribute
}

// ProcessModel is an ISO 22514-2 time-dependent distribution model.
type ProcessModel string

const (
	ModelA1 ProcessModel = "A1" // stable, normal
	ModelA2 ProcessModel = "A2" // stable, non-normal
	ModelB  ProcessModel = "B"  // location constant, variation changes
	ModelC  ProcessModel = "C"  // location changes, e.g. tool wear
	ModelD  ProcessModel = "D"  // location and variation change
)

// ParseProcessModel accepts A1, A2, B, C or D, case-insensitively. Empty
// means no model was declared.
func ParseProcessModel(s string) (ProcessModel, error) {
	m := ProcessModel(strings.ToUpper(strings.TrimSpace(s)))
	if m == "" {
		return "", nil
	}
	if _, ok := processModels[m]; !ok {
		return "", fmt.Errorf("invalid process model %q (use A1|A2|B|C|D)", s)
	}
	return m, nil
}

// SpecialSituation is a monitoring situation the standard charts do not cover.
type SpecialSituation string

const (
	SituationNone         SpecialSituation = ""
	SituationShortRun     SpecialSituation = "short-run"
	SituationMultivariate SpecialSituation = "multivariate"
)

// ParseSpecialSituation accepts short-run, multivariate or empty.
func ParseSpecialSituation(s string) (SpecialSituation, error) {
	switch v := SpecialSituation(strings.ToLower(strings.TrimSpace(s))); v {
	case SituationNone, SituationShortRun, SituationMultivariate:
		return v, nil
	case "shortrun", "short_run":
		return SituationShortRun, nil
	default:
		return "", fmt.Errorf("invalid special situation %q (use short-run|multivariate)", s)
	}
}

// ModelGuide is the chart guidance for one ProcessModel.
type ModelGuide struct {
	Model           ProcessModel `json:"model"`
	Label           string       `json:"label"`
	AnalysisChart   string       `json:"analysis_chart"`
	SPCChart        string       `json:"spc_chart"`
	Description     string       `json:"description"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

var processModels = map[ProcessModel]ModelGuide{
	ModelA1: {
		Model: ModelA1, Label: "Model A1: stable, normal",
		AnalysisChart: "Shewhart Chart (X-bar/s)", SPCChart: "Shewhart Chart",
		Description: "the ideal state; standard Shewhart charts apply",
	},
	ModelA2: {
		Model: ModelA2, Label: "Model A2: stable, skewed or non-normal",
		AnalysisChart: "Pearson Chart", SPCChart: "Pearson Chart",
		Description: "non-normal data; use a Pearson chart or transform the data",
		Recommendations: []string{
			"prefer a Pearson control chart",
			"or a Shewhart chart after a Box-Cox or Johnson transformation",
			"confirm the data really is non-normal",
		},
	},
	ModelB: {
		Model: ModelB, Label: "Model B: location constant, variation changes",
		AnalysisChart: "Shewhart Chart (larger samples / lower frequency)", SPCChart: "Shewhart Chart",
		Description: "unstable variation needs larger samples or a lower sampling frequency",
		Recommendations: []string{
			"increase the subgroup size",
			"lower the sampling frequency",
			"investigate the sources of variation",
			"improve process stability",
		},
	},
	ModelC: {
		Model: ModelC, Label: "Model C: location changes (e.g. tool wear)",
		AnalysisChart: "Extended Shewhart Chart", SPCChart: ChartACC,
		Description: "a known trend makes standard Shewhart charts raise frequent false alarms",
		Recommendations: []string{
			"use an extended Shewhart chart",
			"or an Acceptance Control Chart",
			"replace tools or adjust parameters on a schedule",
			"monitor the trend rate",
		},
	},
	ModelD: {
		Model: ModelD, Label: "Model D: location and variation change",
		AnalysisChart: "Extended Shewhart Chart", SPCChart: ChartACC,
		Description: "the most complex case; advanced charts are required",
		Recommendations: []string{
			"use an extended Shewhart chart",
			"or an Acceptance Control Chart",
			"run an in-depth process analysis",
			"identify and remove sources of variation",
			"expert support may be needed",
		},
	},
}

// ProcessModels lists the declared process models in guide order.
func ProcessModels() []ProcessModel {
	return []ProcessModel{ModelA1, ModelA2, ModelB, ModelC, ModelD}
}

// ProcessModelGuide returns the guidance for m.
func ProcessModelGuide(m ProcessModel) (ModelGuide, bool) {
	g, ok := processModels[m]
	return g, ok
}

// VariableChartFor applies the AIAG-VDA subgroup boundary: n == 1 is
// I-MR, 1 < n < 10 X-bar & R and n >= 10 X-bar & s.
func VariableChartFor(n int) string {
	switch {
	case n <= 1:
		return "I-MR Chart"
	case n < 10:
		return "X-bar & R Chart"
	default:
		return "X-bar & s Chart"
	}
}

// SelectionContext is the input to SelectControlChart.
type SelectionContext struct {
	Scale        Scale            `json:"scale"`
	SubgroupSize int              `json:"subgroup_size"`
	NonNormal    bool             `json:"non_normal"`
	Model        ProcessModel     `json:"process_model,omitempty"`
	Sensitivity  Sensitivity      `json:"sensitivity"`
	Situation    SpecialSituation `json:"special_situation,omitempty"`
}

// Selection is the AIAG-VDA chart selection.
type Selection struct {
	AnalysisChart   string   `json:"analysis_chart"`
	SPCChart        string   `json:"spc_chart"`
	SecondaryCharts []string `json:"secondary_charts"`
	Reasoning       []string `json:"reasoning"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// SelectControlChart walks the AIAG-VDA guide: scale and subgroup size,
// distribution, process model, sensitivity, then special situations.
// A declared process model overrides the size-based analysis chart.
func SelectControlChart(c SelectionContext) Selection {
	s := Selection{
		SecondaryCharts: []string{},
		Reasoning:       []string{},
		Warnings:        []string{},
		Recommendations: []string{},
	}
	switch c.Scale {
	case Attribute:
		s.Reasoning = append(s.Reasoning, "attribute data: confirm defectives vs defects and whether the sample size is fixed (np/p or c/u chart)")
	default:
		chart := VariableChartFor(c.SubgroupSize)
		s.AnalysisChart, s.SPCChart = chart, chart
		s.Reasoning = append(s.Reasoning, fmt.Sprintf("subgroup size n=%d: %s", c.SubgroupSize, chart))
	}

	if c.NonNormal {
		s.Warnings = append(s.Warnings, "data is not normally distributed")
		s.Recommendations = append(s.Recommendations, "consider a Pearson chart or a Box-Cox/Johnson transformation")
	}

	if g, ok := processModels[c.Model]; ok {
		s.Reasoning = append(s.Reasoning, "process model: "+g.Label)
		s.AnalysisChart, s.SPCChart = g.AnalysisChart, g.SPCChart
		if c.Model == ModelC || c.Model == ModelD {
			s.Warnings = append(s.Warnings, g.Label)
			s.SecondaryCharts = append(s.SecondaryCharts, g.SPCChart)
			s.Recommendations = append(s.Recommendations, g.Recommendations...)
		}
	}

	if c.Sensitivity == SensitivityHigh {
		s.SecondaryCharts = append(s.SecondaryCharts, "CUSUM or EWMA")
		s.Recommendations = append(s.Recommendations, "consider CUSUM or EWMA to detect small shifts")
	}

	switch c.Situation {
	case SituationShortRun:
		s.SecondaryCharts = append(s.SecondaryCharts, "Z-Chart or Short Run SPC")
		s.Recommendations = append(s.Recommendations, "standardize the data with a Z-Chart or Short Run SPC techniques")
	case SituationMultivariate:
		s.SecondaryCharts = append(s.SecondaryCharts, "Hotelling's T² or MEWMA")
		s.Recommendations = append(s.Recommendations, "monitor correlated characteristics with Hotelling's T² or MEWMA")
	}
	return s
}
