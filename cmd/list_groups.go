package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/gallery"
)

// newListGroupsCmd creates a new command for listing month groups
func newListGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-groups",
		Short: "List all month groups",
		Long:  `List the month groups of the manifest in page order with the number of photos in each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			g, err := svc.GetGallery(cmd.Context(), true)
			if err != nil {
				return err
			}
			listGroups(g)
			return nil
		},
	}
}

// listGroups displays every group with its photo range
func listGroups(g *gallery.Gallery) {
	fmt.Println("Month Groups:")
	fmt.Println("=============")

	for _, group := range g.Groups {
		fmt.Printf("%d. %d-%02d (photos: %d)\n", group.Index, group.Year, group.Month, group.Count)
		if group.Count > 0 {
			fmt.Printf("   Indices: %d-%d\n", group.First, group.First+group.Count-1)
		}
	}

	fmt.Println()
	fmt.Printf("Total: %d photos across %d groups\n", g.Len(), len(g.Groups))
}
