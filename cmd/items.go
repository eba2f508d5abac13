package cmd

import (
	"fmt"

	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/spf13/cobra"
)

var itemsJSON bool

var itemsCmd = &cobra.Command{
	Use:   "items <file>",
	Short: "List the inspection items (sheets) of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, stop, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer stop()
		r, err := s.Items(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if itemsJSON {
			b, err := utils.PrettyJSON(r.Value)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(r.Value) == 0 {
			fmt.Fprintln(out, "No inspection items found")
			return nil
		}
		for _, it := range r.Value {
			fmt.Fprintln(out, it)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "print as JSON")
}
