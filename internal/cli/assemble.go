package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/narrative"
)

const dateLayout = "2006-01-02"

func newAssembleCommand(v *viper.Viper) *cobra.Command {
	var file, today, format string
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble the declaration letter for a valid case",
		Example: `  ahliwaris assemble -f case.yaml --today 2024-06-03
  ahliwaris assemble -f case.yaml --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("--format must be text or json, got %q", format)
			}
			date := time.Now()
			if today != "" {
				parsed, err := time.Parse(dateLayout, today)
				if err != nil {
					return fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
				}
				date = parsed
			}

			c, err := readCase(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			vc, err := validateCase(c)
			if err != nil {
				return printViolations(cmd.ErrOrStderr(), err)
			}

			opts := letterhead(v)
			opts.Today = date
			doc := narrative.Assemble(vc, opts)

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			return document.RenderText(out, doc)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "case file (YAML or JSON), - for stdin")
	cmd.Flags().StringVar(&today, "today", "", "signing date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// letterhead reads the signing place and officials from configuration:
//
//	sign_place: Sleman
//	village:  {name: Caturtunggal, head: Agus Santoso}
//	district: {name: Depok, head: Bambang Wijaya}
func letterhead(v *viper.Viper) narrative.Options {
	return narrative.Options{
		SignPlace: v.GetString("sign_place"),
		VillageHead: narrative.Official{
			Region: v.GetString("village.name"),
			Name:   v.GetString("village.head"),
		},
		DistrictHead: narrative.Official{
			Region: v.GetString("district.name"),
			Name:   v.GetString("district.head"),
		},
	}
}
