package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"indexo/pkg/favorites"
	"indexo/pkg/loader"
	"indexo/pkg/services"
	"indexo/pkg/tui"
)

// newBrowseCmd creates a new command for browsing an index file in the terminal
func newBrowseCmd() *cobra.Command {
	var (
		server    string
		namespace string
	)

	cmd := &cobra.Command{
		Use:   "browse [id]",
		Short: "Browse an index file in the terminal",
		Long: `Browse the thumbnails of one index file: / searches, f toggles a favorite,
F shows favorites only, enter opens the lightbox and ←/→/esc move through it.
With --server the document is read from a running indexo server.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{quietAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}

			if server == "" {
				_, log, svc, err := openService(cmd.Context(), cmd)
				if err != nil {
					return err
				}
				defer log.Sync()
				defer svc.Close()

				return tui.Run(tui.Options{
					Context:   cmd.Context(),
					Loader:    tui.LoaderFunc(svc.Frames),
					IndexID:   id,
					Favorites: svc.Favorites(namespace),
				})
			}

			cfg, log, err := LoadConfig(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			fetcher := loader.HTTPFetcher{BaseURL: server, Client: &http.Client{Timeout: 30 * time.Second}}
			ld := loader.New(fetcher, loader.Options{
				OnMissingID: cfg.OnMissingID,
				DefaultPath: cfg.DefaultIndex,
			}, log.Named("loader"))

			favs := services.DiskFavorites(cfg.FavoritesDir, log).For(namespace)
			return tui.Run(tui.Options{
				Context:   cmd.Context(),
				Loader:    ld,
				IndexID:   id,
				Favorites: favs,
			})
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Read the index from this indexo server URL")
	cmd.Flags().StringVar(&namespace, "namespace", favorites.DefaultNamespace, "Favorites namespace")
	return cmd
}
