package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"indexo/pkg/models"
)

// newUploadCmd creates a new command for storing an index file from disk
func newUploadCmd() *cobra.Command {
	var meta models.Upload

	cmd := &cobra.Command{
		Use:   "upload [file.json]",
		Short: "Upload an index file",
		Long:  `Store an index document exported by the design plugin, as if it had been posted to the server.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, svc, err := openService(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer svc.Close()

			rec, err := svc.UploadFile(cmd.Context(), args[0], meta)
			if err != nil {
				return err
			}

			summary := rec.Summarize()
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", summary.FileName)
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", rec.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Frames: %d, thumbnails: %d\n", summary.FrameCount, summary.ThumbnailCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.ProjectID, "project-id", "", "Project the index belongs to")
	cmd.Flags().StringVar(&meta.FigmaFileKey, "file-key", "", "Design file key")
	cmd.Flags().StringVar(&meta.FileName, "name", "", "Display name (defaults to the file name)")
	return cmd
}
