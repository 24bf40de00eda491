package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"indexo/pkg/config"
	"indexo/pkg/handlers"
	"indexo/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server serving the project list, the galleries and the plugin upload API.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, svc, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			return serveWebsite(ctx, cfg, svc, log)
		},
	}
}

// serveWebsite runs the web server until ctx is done, then drains it and
// closes the store
func serveWebsite(ctx context.Context, cfg *config.Config, svc *services.Service, log *zap.Logger) (err error) {
	h := handlers.New(svc, handlers.Options{
		SecretKey: cfg.SecretKey,
		ViewsDir:  cfg.ViewsDir,
		PublicDir: cfg.PublicDir,
	}, log.Named("http"))

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	cfg.PrintServerStartMessage()
	log.Info("Server started", zap.String("addr", server.Addr), zap.String("store", cfg.Store),
		zap.Bool("uploads_protected", cfg.UploadsProtected()))

	select {
	case err = <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = server.Shutdown(shutdownCtx)
	}

	return multierr.Append(err, svc.Close())
}
