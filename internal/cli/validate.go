package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var (
		file  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a case file against its declared scenario",
		Example: `  ahliwaris validate -f case.yaml
  cat case.yaml | ahliwaris validate -f -
  ahliwaris validate -f case.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			check := func() error {
				c, err := readCase(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				vc, err := validateCase(c)
				if err != nil {
					return printViolations(cmd.OutOrStdout(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "valid: scenario %d (%s), %d heir(s)\n",
					vc.Scenario().ID(), vc.Scenario(), vc.HeirCount())
				return nil
			}
			if !watch {
				return check()
			}
			if file == "-" {
				return fmt.Errorf("--watch needs a file, not stdin")
			}
			return watchCase(cmd.Context(), file, cmd.ErrOrStderr(), check)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "case file (YAML or JSON), - for stdin")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "revalidate whenever the file changes")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
