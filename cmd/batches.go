package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	batItem string
	batJSON bool
)

var batchesCmd = &cobra.Command{
	Use:   "batches <file>",
	Short: "List the production batches of an inspection item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, stop, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer stop()
		r, err := s.Batches(cmd.Context(), batItem)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if batJSON {
			b, err := utils.PrettyJSON(r.Value)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tBATCH")
		for _, b := range r.Value {
			fmt.Fprintf(tw, "%d\t%s\n", b.Index, b.Name)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(batchesCmd)
	batchesCmd.Flags().StringVar(&batItem, "item", "", "inspection item (sheet name)")
	batchesCmd.Flags().BoolVar(&batJSON, "json", false, "print as JSON")
	_ = batchesCmd.MarkFlagRequired("item")
}
