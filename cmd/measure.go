package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/services"
)

// newMeasureCmd creates a new command that fills in missing photo dimensions
func newMeasureCmd() *cobra.Command {
	var (
		output      string
		force       bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Fill in missing photo and thumbnail sizes",
		Long: `Download every photo and thumbnail whose size or min_size is missing or
malformed, read its dimensions and write the completed manifest. Thumbnails that
decode to a single colour are reported as blank.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			m, err := svc.LoadManifest(cmd.Context())
			if err != nil {
				return err
			}
			out, report, err := svc.Measure(cmd.Context(), m, services.MeasureOptions{
				Force:        force,
				Concurrency:  concurrency,
				ShowProgress: output != "",
			})
			if err != nil {
				return err
			}

			if err := writeJSONFile(output, out); err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("\nMeasured %d photos, %d failed\n", report.Measured, report.Failed)
				for _, link := range report.Blank {
					fmt.Printf("Blank thumbnail: %s\n", link)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the manifest to file instead of stdout")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Measure every photo, even those with a valid size")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "Number of photos measured at once")

	return cmd
}
