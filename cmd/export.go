package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newExportCmd creates a new command for exporting gallery data
func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [records|items|manifest]",
		Short: "Export gallery data as JSON",
		Long: `Export the gallery as JSON: the built photo records (default), the viewer
item list, or the manifest as loaded.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"records", "items", "manifest"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			what := "records"
			if len(args) > 0 {
				what = args[0]
			}

			var data any
			switch what {
			case "records", "items":
				g, err := svc.GetGallery(cmd.Context(), true)
				if err != nil {
					return err
				}
				if what == "items" {
					data = g.Items()
				} else {
					data = g.Records
				}
			case "manifest":
				m, err := svc.LoadManifest(cmd.Context())
				if err != nil {
					return err
				}
				data = m
			default:
				return fmt.Errorf("unsupported export %q, supported: records, items, manifest", what)
			}

			return writeJSONFile(output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

// writeJSONFile writes indented JSON to path, or stdout when path is empty
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
