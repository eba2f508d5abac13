// Package decision recommends control charts and analysis stages from
// the characteristics of a measurement series. It performs no I/O.
package decision

import "math"

// DataType is the measurement scale of a series.
type DataType string

const (
	Continuous  DataType = "continuous"
	BinaryCount DataType = "binary-count"
	Count       DataType = "count"
)

// DataTypeInfo describes a detected DataType.
type DataTypeInfo struct {
	Type        DataType `json:"type"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Charts      string   `json:"charts"`
}

// DetectDataType classifies the whole series. One non-integer or negative
// value makes it continuous; an empty series is continuous.
func DetectDataType(values []float64) DataTypeInfo {
	counts, binary := len(values) > 0, true
	for _, v := range values {
		if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
			counts = false
			break
		}
		if v != 0 && v != 1 {
			binary = false
		}
	}
	switch {
	case !counts:
		return DataTypeInfo{
			Type:        Continuous,
			Label:       "Continuous (variable)",
			Description: "measured values (mm, μm, g, ...)",
			Charts:      "I-MR, X-bar/R, X-bar/S, EWMA, CUSUM",
		}
	case binary:
		return DataTypeInfo{
			Type:        BinaryCount,
			Label:       "Attribute, binary",
			Description: "pass/fail classification",
			Charts:      "P Chart, NP Chart",
		}
	default:
		return DataTypeInfo{
			Type:        Count,
			Label:       "Attribute, count",
			Description: "defect or defective counts",
			Charts:      "C Chart, U Chart",
		}
	}
}
