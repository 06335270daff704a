package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/services"
)

// newOpenCmd creates a new command that activates a thumbnail without a browser
func newOpenCmd() *cobra.Command {
	var scrollY float64

	cmd := &cobra.Command{
		Use:   "open [index]",
		Short: "Open the viewer at a photo",
		Long: `Render the gallery headlessly, activate the thumbnail at the given position
and print what the full-screen viewer would show.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be an integer: %w", err)
			}

			svc, err := newService()
			if err != nil {
				return err
			}
			svc.ResolveCapabilities(cmd.Context())

			sess, err := svc.Headless(cmd.Context(), services.SessionOptions{Refresh: true, ScrollY: scrollY})
			if err != nil {
				return err
			}
			act, handled, err := sess.Lightbox.ActivateIndex(index)
			if err != nil {
				return err
			}
			if !handled {
				return fmt.Errorf("no photo at index %d, gallery has %d", index, sess.Gallery.Len())
			}

			fmt.Printf("Photo %d of %d\n", act.Index+1, act.Count)
			fmt.Printf("   Source: %s\n", act.Item.Src)
			fmt.Printf("   Thumbnail: %s\n", act.Item.MSrc)
			fmt.Printf("   Size: %dx%d\n", act.Item.W, act.Item.H)
			if act.Item.Title != "" {
				fmt.Printf("   Title: %s\n", act.Item.Title)
			}
			if opening := sess.Viewer.Last(); opening != nil && opening.Bounds != nil {
				b := opening.Bounds
				fmt.Printf("   Zooms from: x=%.0f y=%.0f w=%.0f\n", b.X, b.Y, b.W)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&scrollY, "scroll", 0, "Page scroll offset used for the zoom origin")

	return cmd
}
