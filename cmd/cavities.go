package cmd

import (
	"fmt"

	"github.com/KaramelBytes/qip-spc-cli/internal/utils"
	"github.com/spf13/cobra"
)

var cavItem string

var cavitiesCmd = &cobra.Command{
	Use:   "cavities <file>",
	Short: "Show the cavity columns of an inspection item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, stop, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer stop()
		r, err := s.CavityInfo(cmd.Context(), cavItem)
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(r.Value)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cavitiesCmd)
	cavitiesCmd.Flags().StringVar(&cavItem, "item", "", "inspection item (sheet name)")
	_ = cavitiesCmd.MarkFlagRequired("item")
}
