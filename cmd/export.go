package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"indexo/pkg/models"
)

var exportFormats = []string{"json", "yaml", "toml"}

// newExportCmd creates a new command for exporting an index document
func newExportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [id] [format]",
		Short: "Export an index document",
		Long: `Export one index document in its normalized {frames: [...]} shape.
Supported formats: json, yaml, toml. With --out the document is written to
<out>/<file-name-slug>.<format>, otherwise to standard output.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "json"
			if len(args) > 1 {
				format = args[1]
			}

			_, log, svc, err := openService(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer svc.Close()

			rec, err := svc.Record(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := encodeDocument(models.NormalizeIndexData(rec.IndexData), format)
			if err != nil {
				return err
			}

			if outDir == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path := filepath.Join(outDir, exportFileName(rec.Summarize().FileName, rec.ID, format))
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the export to")
	return cmd
}

// encodeDocument renders doc in one of the export formats
func encodeDocument(doc models.IndexDocument, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("error marshaling data: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("error marshaling data: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.NewEncoder(io.Writer(&buf)).Encode(doc); err != nil {
			return nil, fmt.Errorf("error marshaling data: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q (supported: %v)", format, exportFormats)
	}
	return buf.Bytes(), nil
}

// exportFileName builds a file system safe name from the display name,
// falling back to the record id
func exportFileName(fileName, id, format string) string {
	base := slug.Make(fileName)
	if base == "" {
		base = id
	}
	return base + "." + format
}
