package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/decision"
	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/spf13/cobra"
)

var guideJSON bool

var guideCmd = &cobra.Command{
	Use:       "guide [stages|models|sensitivity]",
	Short:     "Show SPC stage, process model and sensitivity guidance",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"stages", "models", "sensitivity"},
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := "stages"
		if len(args) == 1 {
			topic = strings.ToLower(args[0])
		}
		var v any
		var text func(io.Writer)
		switch topic {
		case "stages":
			guides := make([]decision.StageGuide, 0, 3)
			for _, s := range decision.Stages() {
				if g, ok := decision.Guide(s); ok {
					guides = append(guides, g)
				}
			}
			v, text = guides, func(w io.Writer) {
				for _, g := range guides {
					fmt.Fprintf(w, "%s [%s] samples %s\n  %s\n", g.Label, g.Stage, g.SampleRange, g.Purpose)
					bullets(w, "  Recommendations", g.Recommendations)
				}
			}
		case "models":
			models := make([]decision.ModelGuide, 0, 5)
			for _, m := range decision.ProcessModels() {
				if g, ok := decision.ProcessModelGuide(m); ok {
					models = append(models, g)
				}
			}
			v, text = models, func(w io.Writer) {
				for _, g := range models {
					fmt.Fprintf(w, "%s\n  analysis: %s, SPC: %s\n  %s\n", g.Label, g.AnalysisChart, g.SPCChart, g.Description)
				}
			}
		case "sensitivity":
			opts := decision.SensitivityOptions()
			v, text = opts, func(w io.Writer) {
				for _, o := range opts {
					fmt.Fprintf(w, "%s [%s] %s\n  use: %s\n", o.Label, o.ID, o.Description, o.UseCase)
				}
			}
		default:
			return fmt.Errorf("unknown guide topic %q (use stages|models|sensitivity)", topic)
		}

		out := cmd.OutOrStdout()
		if guideJSON {
			b, err := utils.PrettyJSON(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		text(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
	guideCmd.Flags().BoolVar(&guideJSON, "json", false, "print as JSON")
}
