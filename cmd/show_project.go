package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"indexo/pkg/favorites"
	"indexo/pkg/gallery"
	"indexo/pkg/services"
)

// newShowProjectCmd creates a new command for showing the thumbnails of one index file
func newShowProjectCmd() *cobra.Command {
	var (
		search        string
		favoritesOnly bool
		namespace     string
	)

	cmd := &cobra.Command{
		Use:   "show-project [id]",
		Short: "Show thumbnails in an index file",
		Long: `Show the thumbnails of one index file in gallery order, optionally narrowed by a
search query or to favorites. Without an id the on-missing-id policy applies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, svc, err := openService(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer svc.Close()

			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return showProject(cmd.Context(), cmd.OutOrStdout(), svc, id, search, namespace, favoritesOnly)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Only show thumbnails matching this text")
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Only show favorite thumbnails")
	cmd.Flags().StringVar(&namespace, "namespace", favorites.DefaultNamespace, "Favorites namespace")
	return cmd
}

// showProject prints the visible entries with their gallery positions
func showProject(ctx context.Context, out io.Writer, svc *services.Service, id, search, namespace string, favoritesOnly bool) error {
	frames, err := svc.Frames(ctx, id)
	if err != nil {
		return err
	}

	favs := svc.Favorites(namespace).Set()
	all := gallery.Flatten(frames)
	visible := gallery.Visible(frames, search, favs, favoritesOnly)

	fmt.Fprintf(out, "Frames: %d\n", len(frames))
	fmt.Fprintf(out, "Thumbnails: %d (showing %d)\n", len(all), len(visible))
	fmt.Fprintln(out, "================")

	for _, e := range visible {
		star := " "
		if _, ok := favs[e.Thumbnail.ThumbName]; ok {
			star = "*"
		}
		fmt.Fprintf(out, "%s %d. %s / %s\n", star, e.FlatIndex, e.Frame.Name, e.Thumbnail.Label)
		fmt.Fprintf(out, "   Name: %s\n", e.Thumbnail.ThumbName)
		if e.Thumbnail.Texts != "" {
			fmt.Fprintf(out, "   Texts: %s\n", e.Thumbnail.Texts)
		}
		if e.Thumbnail.Url != "" {
			fmt.Fprintf(out, "   URL: %s\n", e.Thumbnail.Url)
		}
		fmt.Fprintln(out)
	}
	return nil
}
