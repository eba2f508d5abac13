package decision

import "fmt"

// Stage is the analysis stage implied by the total sample count.
type Stage string

const (
	StageMachinePerformance Stage = "machine-performance"
	StageAnalysisControl    Stage = "analysis-control"
	StageSPCControl         Stage = "spc-control"
)

// Stage boundaries on the total sample count. These are unrelated to the
// subgroup-size boundaries of ClassifySubgroup and VariableChartFor.
const (
	analysisStageMin = 100
	spcStageMin      = 500
)

// falseAlarmPer10k is the two-sided 3σ tail, 0.27%, per 10000 points.
const falseAlarmPer10k = 27

// StageGuide describes one stage.
type StageGuide struct {
	Stage           Stage    `json:"stage"`
	Label           string   `json:"label"`
	Description     string   `json:"description"`
	SampleRange     string   `json:"sample_range"`
	Purpose         string   `json:"purpose"`
	Observe         []string `json:"observe"`
	Recommendations []string `json:"recommendations"`
}

var stageGuides = map[Stage]StageGuide{
	StageMachinePerformance: {
		Stage:       StageMachinePerformance,
		Label:       "Machine Performance",
		Description: "few samples; qualitative stability assessment",
		SampleRange: "< 100 (typically 50)",
		Purpose:     "assess the basic performance of the machine or mold",
		Observe: []string{
			"unexplained outliers",
			"jumps",
			"step changes",
			"rising or falling trends",
			"periodic patterns",
		},
		Recommendations: []string{
			"use an I-MR chart for the initial assessment",
			"watch the shape of the curve rather than statistical indices",
			"record every anomaly and its cause",
			"adjust or repair the machine",
			"move to the next stage once enough data is collected",
		},
	},
	StageAnalysisControl: {
		Stage:       StageAnalysisControl,
		Label:       "Analysis Control Charts",
		Description: "retrospective assessment that accounts for false alarms",
		SampleRange: "100-500",
		Purpose:     "assess stability retrospectively and establish a baseline",
		Observe: []string{
			"points beyond the control limits",
			"Nelson rule patterns",
			"the false alarm rate",
			"the overall stability trend",
		},
		Recommendations: []string{
			"analyse with an X-bar/R or X-bar/S chart",
			"compute the expected number of false alarms",
			"compare actual violations with the expected false alarms",
			"investigate points beyond the limits",
			"remove points caused by special causes",
			"establish the process baseline",
		},
	},
	StageSPCControl: {
		Stage:       StageSPCControl,
		Label:       "SPC Control Charts",
		Description: "real-time control with zero tolerance",
		SampleRange: "> 500 (continuous monitoring)",
		Purpose:     "keep the process stable on the shop floor",
		Observe: []string{
			"any point beyond the control limits",
			"any Nelson rule pattern",
			"drift of the process center",
			"increasing variation",
		},
		Recommendations: []string{
			"monitor in real time with an X-bar/R or X-bar/S chart",
			"define a clear action plan",
			"train operators to recognise anomalies",
			"set up a rapid response procedure",
			"review the control limits periodically",
			"improve the process continuously",
		},
	},
}

// Stages lists the stages in the order a new process passes through them.
func Stages() []Stage {
	return []Stage{StageMachinePerformance, StageAnalysisControl, StageSPCControl}
}

// Guide returns the guidance for s.
func Guide(s Stage) (StageGuide, bool) {
	g, ok := stageGuides[s]
	return g, ok
}

// RecommendStage maps the total sample count to a stage: below 100 is
// machine performance, 100..499 analysis control, 500 and above SPC control.
func RecommendStage(count int) (Stage, string) {
	switch {
	case count < analysisStageMin:
		return StageMachinePerformance, fmt.Sprintf("sample count (%d) < %d: machine performance study", count, analysisStageMin)
	case count < spcStageMin:
		return StageAnalysisControl, fmt.Sprintf("sample count (%d) in %d-%d: analysis control charts", count, analysisStageMin, spcStageMin-1)
	default:
		return StageSPCControl, fmt.Sprintf("sample count (%d) >= %d: SPC control charts", count, spcStageMin)
	}
}

// ExpectedFalseAlarms returns count*0.0027 and its ceiling.
func ExpectedFalseAlarms(count int) (float64, int) {
	if count <= 0 {
		return 0, 0
	}
	return float64(count) * falseAlarmPer10k / 10000, (count*falseAlarmPer10k + 9999) / 10000
}

// Stability is the stage-specific stability judgement.
type Stability struct {
	Stable              bool    `json:"stable"`
	ActionRequired      bool    `json:"action_required"`
	Violations          int     `json:"violations"`
	ExpectedFalseAlarms float64 `json:"expected_false_alarms,omitempty"`
	AllowedViolations   int     `json:"allowed_violations"`
	Reason              string  `json:"reason"`
}

// AssessStability judges violations against the stage policy. Only the
// analysis-control stage tolerates violations, up to the expected false
// alarms rounded up.
func AssessStability(violations int, stage Stage, count int) Stability {
	st := Stability{Violations: violations}
	switch stage {
	case StageAnalysisControl:
		exp, allowed := ExpectedFalseAlarms(count)
		st.ExpectedFalseAlarms, st.AllowedViolations = exp, allowed
		st.Stable = violations <= allowed
		if st.Stable {
			st.Reason = fmt.Sprintf("violations (%d) <= expected false alarms (%d): stable", violations, allowed)
		} else {
			st.Reason = fmt.Sprintf("violations (%d) > expected false alarms (%d): unstable", violations, allowed)
		}
	case StageSPCControl:
		st.Stable = violations == 0
		st.Reason = "SPC control stage: zero tolerance, every violation requires immediate action"
	default:
		st.Stable = violations == 0
		st.Reason = "machine performance stage: every anomaly should be investigated"
	}
	st.ActionRequired = !st.Stable
	return st
}

// Plan is the next steps for a stage given its stability.
type Plan struct {
	Stage     Stage     `json:"stage"`
	Status    string    `json:"status"`
	Stability Stability `json:"stability"`
	Actions   []string  `json:"actions"`
}

// ActionPlan returns the stage recommendations when stable, otherwise the
// corrective actions for the stage.
func ActionPlan(stage Stage, violations, count int) Plan {
	st := AssessStability(violations, stage, count)
	p := Plan{Stage: stage, Stability: st}
	if st.Stable {
		p.Status = "process stable"
		p.Actions = append([]string(nil), stageGuides[stage].Recommendations...)
		return p
	}
	p.Status = "process unstable, action required"
	switch stage {
	case StageAnalysisControl:
		p.Actions = []string{
			fmt.Sprintf("check whether violations (%d) exceed the expected false alarms (%d)", violations, st.AllowedViolations),
			"if so, investigate the points beyond the limits",
			"decide whether each is a special cause",
			"remove special-cause points and recompute the limits",
			"establish the baseline control limits",
		}
	case StageSPCControl:
		p.Actions = []string{
			"stop production immediately",
			"investigate the cause of the violation",
			"implement corrective action",
			"verify the corrective action is effective",
			"resume production and keep monitoring",
		}
	default:
		p.Actions = []string{
			"record every anomaly and when it occurred",
			"investigate causes (machine fault, parameter change, operator change)",
			"assess qualitatively whether the machine is stable",
			"adjust or repair if a problem is found",
			"collect more data to verify the improvement",
		}
	}
	return p
}
