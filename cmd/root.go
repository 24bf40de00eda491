package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"indexo/pkg/config"
	"indexo/pkg/services"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "indexo",
		Short: "Indexo serves and browses design export indexes",
		Long: `Indexo stores the frame and thumbnail indexes uploaded by the design plugin and
shows them as searchable galleries, in the browser or in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringP("secret-key", "s", "", "Set the SECRET_KEY required for uploads (overrides environment variable)")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Set the BUCKET_NAME for the gcs store (overrides environment variable)")
	rootCmd.PersistentFlags().StringP("port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().String("store", "", "Index store: sqlite or gcs")
	rootCmd.PersistentFlags().String("database", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: none, normal or debug")
	rootCmd.PersistentFlags().String("on-missing-id", "", "Without an index id: error or loadDefault")

	// Add commands to root
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListProjectsCmd())
	rootCmd.AddCommand(newShowProjectCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newBrowseCmd())

	return rootCmd
}

// quietAnnotation marks commands that own the terminal; they log to the log
// file only
const quietAnnotation = "indexo/quiet"

// LoadConfig loads configuration with respect to command line flags
func LoadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Quiet = cmd.Annotations[quietAnnotation] == "true"
	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openService loads configuration and opens the configured store
func openService(ctx context.Context, cmd *cobra.Command) (*config.Config, *zap.Logger, *services.Service, error) {
	cfg, log, err := LoadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := services.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	return cfg, log, svc, nil
}
