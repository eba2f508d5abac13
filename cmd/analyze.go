package cmd

import (
	"fmt"

	"github.com/KaramelBytes/qip-spc-cli/internal/diagnostic"
	"github.com/KaramelBytes/qip-spc-cli/internal/export"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaItem     string
	anaMode     string
	anaCavity   string
	anaAverage  bool
	anaStart    int
	anaEnd      int
	anaExclude  []int
	anaFormat   string
	anaOutput   string
	anaInsights bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run an SPC analysis on one inspection item",
	Long: `Runs a batch (I-MR over one cavity or the cavity average), cavity
(capability per cavity) or group (spread per batch) analysis and writes the
result as JSON, Markdown, XLSX or a PNG control chart. Binary formats
without --output are written to the configured output_dir.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := spc.ParseMode(anaMode)
		if err != nil {
			return err
		}
		sel, err := selector(anaCavity, anaAverage)
		if err != nil {
			return err
		}
		f, err := filter(anaStart, anaEnd, anaExclude)
		if err != nil {
			return err
		}
		format, err := reportFormat(anaFormat, anaOutput)
		if err != nil {
			return err
		}

		s, stop, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer stop()
		r, err := s.Analyze(cmd.Context(), spc.Request{Mode: mode, Item: anaItem, Cavity: sel, Filter: f})
		if err != nil {
			return err
		}
		logger.Debug("analysis done")

		var insights []diagnostic.Insight
		if anaInsights {
			insights = diagnostic.Generate(r.Value)
		}
		rep := export.NewReport(args[0], r.Value, insights)

		out := anaOutput
		if out == "" && format.Binary() {
			out = utils.ReportPath(config().OutputDir, anaItem, string(mode), format.Ext())
		}
		if out == "" {
			b, err := export.Render(rep, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if err := export.Write(out, rep, format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s report to %s (run %s)\n", format, out, rep.RunID)
		return nil
	},
}

// reportFormat resolves --format, falling back to the output extension
// and then JSON.
func reportFormat(flag, output string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if f, ok := export.FormatFromPath(output); ok {
		return f, nil
	}
	return export.FormatJSON, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaItem, "item", "", "inspection item (sheet name)")
	analyzeCmd.Flags().StringVar(&anaMode, "mode", "batch", "analysis mode: batch|cavity|group")
	analyzeCmd.Flags().StringVar(&anaCavity, "cavity", "", "cavity column to chart (batch mode)")
	analyzeCmd.Flags().BoolVar(&anaAverage, "average", false, "chart the average of all cavities (batch mode, default)")
	analyzeCmd.Flags().IntVar(&anaStart, "start", 0, "first batch index (0 = from the first batch)")
	analyzeCmd.Flags().IntVar(&anaEnd, "end", 0, "last batch index (0 = to the last batch)")
	analyzeCmd.Flags().IntSliceVar(&anaExclude, "exclude", nil, "batch indices to exclude, e.g. 3,5")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "", "output format: json|markdown|xlsx|png (default from --output extension, else json)")
	analyzeCmd.Flags().StringVarP(&anaOutput, "output", "o", "", "write the report to this path")
	analyzeCmd.Flags().BoolVar(&anaInsights, "insights", false, "include diagnostic insights")
	_ = analyzeCmd.MarkFlagRequired("item")
}
