package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVerifyCmd creates a new command that checks the bucket holds every photo
func newVerifyCmd() *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the bucket holds every photo and thumbnail",
		Long: `List the photo and thumbnail prefixes of a Google Cloud Storage bucket and
report every manifest link without a stored object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = svc.Config().Bucket
			}

			g, err := svc.GetGallery(cmd.Context(), true)
			if err != nil {
				return err
			}
			report, err := svc.VerifyBucket(cmd.Context(), g, bucket, nil, true)
			if err != nil {
				return err
			}

			fmt.Println()
			for _, m := range report.Missing {
				fmt.Printf("Missing: %s (photo %d, %s)\n", m.Object, m.Index, m.Link)
			}
			fmt.Printf("Checked %d objects, %d missing\n", report.Checked, len(report.Missing))
			if len(report.Missing) > 0 {
				return fmt.Errorf("%d objects missing from gs://%s", len(report.Missing), bucket)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket name (overrides config)")

	return cmd
}
