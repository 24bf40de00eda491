package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"indexo/pkg/models"
	"indexo/pkg/services"
)

// newListProjectsCmd creates a new command for listing stored index files
func newListProjectsCmd() *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "list-projects",
		Short: "List all uploaded index files",
		Long:  `List uploaded index files grouped by design project, with frame and thumbnail counts.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, svc, err := openService(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer svc.Close()

			return listProjects(cmd.Context(), cmd.OutOrStdout(), svc, sortBy)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", services.SortByDate, "Sort order: date or name")
	return cmd
}

// listProjects prints index files grouped by project, keeping the first-seen
// order of projects
func listProjects(ctx context.Context, out io.Writer, svc *services.Service, sortBy string) error {
	summaries, err := svc.ListProjects(ctx, sortBy)
	if err != nil {
		return err
	}

	var order []string
	groups := make(map[string][]models.IndexSummary)
	for _, s := range summaries {
		if _, ok := groups[s.ProjectID]; !ok {
			order = append(order, s.ProjectID)
		}
		groups[s.ProjectID] = append(groups[s.ProjectID], s)
	}

	fmt.Fprintln(out, "Index Files:")
	fmt.Fprintln(out, "============")

	for _, project := range order {
		fmt.Fprintf(out, "Project: %s\n", project)
		for _, s := range groups[project] {
			fmt.Fprintf(out, "  - %s (frames: %d, thumbnails: %d)\n", s.FileName, s.FrameCount, s.ThumbnailCount)
			fmt.Fprintf(out, "    ID: %s\n", s.ID)
			fmt.Fprintf(out, "    Uploaded: %s\n", s.UploadedAt.Local().Format(time.DateTime))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Total: %d index files across %d projects\n", len(summaries), len(order))
	return nil
}
