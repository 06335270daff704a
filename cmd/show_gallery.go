package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/gallery"
)

// newShowGalleryCmd creates a new command for showing gallery details
func newShowGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-gallery [group]",
		Short: "Show photos in the gallery",
		Long:  `Show detailed information about every photo, or only those of the month group at the given position.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			g, err := svc.GetGallery(cmd.Context(), true)
			if err != nil {
				return err
			}

			group := -1
			if len(args) > 0 {
				group, err = strconv.Atoi(args[0])
				if err != nil || group < 0 || group >= len(g.Groups) {
					return fmt.Errorf("no group %q, gallery has %d groups", args[0], len(g.Groups))
				}
			}
			showGallery(g, group)
			return nil
		},
	}
}

// showGallery prints the records of one group, or all when group is negative
func showGallery(g *gallery.Gallery, group int) {
	fmt.Printf("Groups: %d\n", len(g.Groups))
	fmt.Printf("Photos: %d\n", g.Len())
	fmt.Println("================")

	for _, rec := range g.Records {
		if group >= 0 && rec.GroupIndex != group {
			continue
		}
		fmt.Printf("%d. %s (%d-%02d)\n", rec.Index, rec.Filename, g.Groups[rec.GroupIndex].Year, g.Groups[rec.GroupIndex].Month)
		fmt.Printf("   URL: %s\n", rec.FullURL)
		fmt.Printf("   Thumbnail: %s\n", rec.ThumbURL)
		fmt.Printf("   Size: %s, thumbnail %s, aspect %.4f%%\n",
			gallery.FormatSize(rec.Width, rec.Height), gallery.FormatSize(rec.ThumbWidth, rec.ThumbHeight), rec.AspectRatioPercent)
		if rec.Caption != "" {
			fmt.Printf("   Caption: %s\n", rec.Caption)
		}
		fmt.Println()
	}

	for _, issue := range g.Issues {
		fmt.Printf("Warning: %v\n", issue)
	}
}
