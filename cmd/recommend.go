package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/decision"
	"github.com/KaramelBytes/qip-spc-cli/internal/session"
	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	recItem        string
	recCavity      string
	recAverage     bool
	recStart       int
	recEnd         int
	recExclude     []int
	recSubgroup    int
	recSensitivity string
	recSpecial     string
	recModel       string
	recViolations  int
	recJSON        bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <file>",
	Short: "Recommend a control chart and SPC stage for an inspection item",
	Long: `Classifies the selected series (data type, subgroup size, normality,
trend), picks a control chart under both the general and the AIAG-VDA policy,
and reports the SPC implementation stage with its action plan.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selector(recCavity, recAverage)
		if err != nil {
			return err
		}
		f, err := filter(recStart, recEnd, recExclude)
		if err != nil {
			return err
		}
		sensFlag := recSensitivity
		if sensFlag == "" {
			sensFlag = config().Sensitivity
		}
		sens, err := decision.ParseSensitivity(sensFlag)
		if err != nil {
			return err
		}
		model, err := decision.ParseProcessModel(recModel)
		if err != nil {
			return err
		}
		situation, err := decision.ParseSpecialSituation(recSpecial)
		if err != nil {
			return err
		}
		req := session.RecommendRequest{
			Item:         recItem,
			Cavity:       sel,
			Filter:       f,
			SubgroupSize: recSubgroup,
			Sensitivity:  sens,
			Model:        model,
			Situation:    situation,
		}
		if cmd.Flags().Changed("violations") {
			v := recViolations
			req.Violations = &v
		}

		s, stop, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer stop()
		r, err := s.Recommend(cmd.Context(), req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if recJSON {
			b, err := utils.PrettyJSON(r.Value)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		printAdvice(out, r.Value)
		return nil
	},
}

func printAdvice(w io.Writer, a *session.Advice) {
	rec := a.Recommendation
	fmt.Fprintf(w, "Item: %s (%s, %d points)\n", a.Item, a.Series, a.Count)
	fmt.Fprintf(w, "Primary chart: %s\n", rec.PrimaryChart)
	if len(rec.SecondaryCharts) > 0 {
		fmt.Fprintf(w, "Secondary charts: %s\n", strings.Join(rec.SecondaryCharts, ", "))
	}
	fmt.Fprintf(w, "Confidence: %d%%\n", rec.Confidence)
	fmt.Fprintln(w, rec.Summary)
	bullets(w, "Warnings", rec.Warnings)
	bullets(w, "Recommendations", rec.Recommendations)

	sel := a.Selection
	fmt.Fprintf(w, "\nAIAG-VDA analysis chart: %s\n", sel.AnalysisChart)
	fmt.Fprintf(w, "AIAG-VDA SPC chart: %s\n", sel.SPCChart)
	if len(sel.SecondaryCharts) > 0 {
		fmt.Fprintf(w, "AIAG-VDA secondary charts: %s\n", strings.Join(sel.SecondaryCharts, ", "))
	}
	bullets(w, "AIAG-VDA warnings", sel.Warnings)

	fmt.Fprintf(w, "\nStage: %s (%s)\n", a.Guide.Label, a.StageReason)
	fmt.Fprintf(w, "Status: %s\n", a.Plan.Status)
	fmt.Fprintln(w, a.Plan.Stability.Reason)
	bullets(w, "Actions", a.Plan.Actions)
}

func bullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVar(&recItem, "item", "", "inspection item (sheet name)")
	recommendCmd.Flags().StringVar(&recCavity, "cavity", "", "cavity column to classify")
	recommendCmd.Flags().BoolVar(&recAverage, "average", false, "classify the average of all cavities (default)")
	recommendCmd.Flags().IntVar(&recStart, "start", 0, "first batch index (0 = from the first batch)")
	recommendCmd.Flags().IntVar(&recEnd, "end", 0, "last batch index (0 = to the last batch)")
	recommendCmd.Flags().IntSliceVar(&recExclude, "exclude", nil, "batch indices to exclude, e.g. 3,5")
	recommendCmd.Flags().IntVar(&recSubgroup, "subgroup-size", 0, "samples per subgroup (0 = 1 for a cavity, cavity count for the average)")
	recommendCmd.Flags().StringVar(&recSensitivity, "sensitivity", "", "detection sensitivity: standard|medium|high (default from config)")
	recommendCmd.Flags().StringVar(&recSpecial, "special", "", "special situation: short-run|multivariate")
	recommendCmd.Flags().StringVar(&recModel, "process-model", "", "declared AIAG-VDA process model: A1|A2|B|C|D")
	recommendCmd.Flags().IntVar(&recViolations, "violations", 0, "override the detected rule violation count")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "print as JSON")
	_ = recommendCmd.MarkFlagRequired("item")
}
