package decision

import (
	"fmt"
	"strings"
)

// Sensitivity is the declared need to detect small shifts.
type Sensitivity string

const (
	SensitivityStandard Sensitivity = "standard"
	SensitivityMedium   Sensitivity = "medium"
	SensitivityHigh     Sensitivity = "high"
)

// ParseSensitivity accepts standard, medium or high. Empty is standard.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch v := Sensitivity(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return SensitivityStandard, nil
	case SensitivityStandard, SensitivityMedium, SensitivityHigh:
		return v, nil
	default:
		return "", fmt.Errorf("invalid sensitivity %q (use standard|medium|high)", s)
	}
}

// SensitivityOption documents one sensitivity level and its parameters.
type SensitivityOption struct {
	ID            Sensitivity `json:"id"`
	Label         string      `json:"label"`
	Method        string      `json:"method"`
	Description   string      `json:"description"`
	Sigma         float64     `json:"sigma,omitempty"`
	Lambda        float64     `json:"lambda,omitempty"`
	H             float64     `json:"h,omitempty"`
	K             float64     `json:"k,omitempty"`
	Advantages    []string    `json:"advantages"`
	Disadvantages []string    `json:"disadvantages"`
	UseCase       string      `json:"use_case"`
}

// SensitivityOptions lists the levels from least to most sensitive.
func SensitivityOptions() []SensitivityOption {
	return []SensitivityOption{
		{
			ID: SensitivityStandard, Label: "Standard (Shewhart)", Method: "Shewhart",
			Description:   "traditional control chart for general monitoring",
			Sigma:         3,
			Advantages:    []string{"easy to read", "simple to compute", "industry standard"},
			Disadvantages: []string{"insensitive to small shifts"},
			UseCase:       "general process monitoring",
		},
		{
			ID: SensitivityMedium, Label: "Medium (EWMA)", Method: ChartEWMA,
			Description:   "exponentially weighted moving average, sensitive to small shifts",
			Sigma:         2.66,
			Lambda:        0.2,
			Advantages:    []string{"sensitive to small shifts", "fast response", "suits continuous monitoring"},
			Disadvantages: []string{"more involved to compute", "needs history"},
			UseCase:       "processes that need a fast reaction",
		},
		{
			ID: SensitivityHigh, Label: "High (CUSUM)", Method: ChartCUSUM,
			Description:   "cumulative sum chart, the most sensitive method",
			H:             5,
			K:             0.5,
			Advantages:    []string{"most sensitive", "detects very small shifts"},
			Disadvantages: []string{"more involved to compute", "needs expertise to interpret"},
			UseCase:       "precision manufacturing, zero-defect programmes",
		},
	}
}
