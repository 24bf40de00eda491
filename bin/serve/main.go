package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"go.uber.org/multierr"

	"indexo/pkg/config"
	"indexo/pkg/handlers"
	"indexo/pkg/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run serves until the listener fails, closing the store and flushing the
// logger on the way out
func run() (err error) {
	// Load configuration
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize services
	svc, err := services.Open(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	defer func() {
		logger.Info("Closing index store")
		err = multierr.Append(err, svc.Close())
	}()

	h := handlers.New(svc, handlers.Options{
		SecretKey: cfg.SecretKey,
		ViewsDir:  cfg.ViewsDir,
		PublicDir: cfg.PublicDir,
	}, logger.Named("http"))

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), h.Routes()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
