package session

import (
	"fmt"

	"github.com/KaramelBytes/qip-spc-cli/internal/decision"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
)

// RecommendRequest selects the series to classify and the declared
// preferences.
type RecommendRequest struct {
	Item   string
	Cavity workbook.CavitySelector
	Filter workbook.Filter
	// SubgroupSize 0 means 1 for a named cavity and the cavity count for
	// the average of all cavities.
	SubgroupSize int
	Sensitivity  decision.Sensitivity
	Model        decision.ProcessModel
	Situation    decision.SpecialSituation
	// Violations overrides the detected rule violation count when set.
	Violations *int
}

// Advice combines both chart policies with the stage assessment.
type Advice struct {
	Item           string                  `json:"item"`
	Series         string                  `json:"series"`
	Count          int                     `json:"count"`
	Context        decision.Context        `json:"context"`
	Recommendation decision.Recommendation `json:"recommendation"`
	Selection      decision.Selection      `json:"aiag_vda"`
	Stage          decision.Stage          `json:"stage"`
	StageReason    string                  `json:"stage_reason"`
	Guide          decision.StageGuide     `json:"guide"`
	Plan           decision.Plan           `json:"action_plan"`
}

func advise(e *spc.Engine, tester stats.NormalityTester, wb *workbook.Workbook, req RecommendRequest) (*Advice, error) {
	res, err := e.AnalyzeBatch(wb, req.Item, req.Cavity, req.Filter)
	if err != nil {
		return nil, err
	}
	n := req.SubgroupSize
	if n <= 0 {
		n = 1
		if req.Cavity.IsAverage() {
			info, err := wb.CavityInfo(req.Item)
			if err != nil {
				return nil, err
			}
			n = max(info.TotalCavities, 1)
		}
	}
	sens := req.Sensitivity
	if sens == "" {
		sens = decision.SensitivityStandard
	}
	violations := len(res.ViolationsDetail)
	if req.Violations != nil {
		if *req.Violations < 0 {
			return nil, fmt.Errorf("recommend: negative violation count %d", *req.Violations)
		}
		violations = *req.Violations
	}

	values := res.Data.Values
	ctx := decision.BuildContext(values, n, sens, tester)
	stage, reason := decision.RecommendStage(len(values))
	guide, _ := decision.Guide(stage)
	return &Advice{
		Item:           req.Item,
		Series:         res.Data.Name,
		Count:          len(values),
		Context:        ctx,
		Recommendation: decision.Recommend(ctx),
		Selection: decision.SelectControlChart(decision.SelectionContext{
			Scale:        decision.ScaleOf(ctx.DataType.Type),
			SubgroupSize: n,
			NonNormal:    ctx.Normality.NonNormal(),
			Model:        req.Model,
			Sensitivity:  sens,
			Situation:    req.Situation,
		}),
		Stage:       stage,
		StageReason: reason,
		Guide:       guide,
		Plan:        decision.ActionPlan(stage, violations, len(values)),
	}, nil
}
