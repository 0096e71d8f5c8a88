package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ahliwaris/internal/declaration/scenario"
)

func newScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the supported inheritance scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDECEASED\tSPOUSE")
			for _, sc := range scenario.All {
				r := sc.Rules()
				gender := string(r.DeceasedGender)
				if gender == "" {
					gender = "any"
				}
				spouse := "none"
				if r.Spouse != "" {
					spouse = fmt.Sprintf("%d x %s", r.SpouseCount, r.Spouse)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", sc.ID(), sc, gender, spouse)
			}
			return tw.Flush()
		},
	}
}
