package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ExportResult describes a written sales export
type ExportResult struct {
	Path       string `json:"path"`
	Rows       int    `json:"rows"`
	ArchiveKey string `json:"archive_key,omitempty"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

// NewExportCommand creates the export command
func NewExportCommand(ro *RootOptions) *cobra.Command {
	var (
		outDir  string
		archive bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every sale to a dated CSV file",
		Long: `Write every sale to Royale_Sales_Report_<YYYY-MM-DD>.csv, newest first.

With --archive the same report is also uploaded to the configured
object storage and a download link is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(ro, cmd, outDir, archive)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: shop.export_dir, then .)")
	cmd.Flags().BoolVar(&archive, "archive", false, "also upload the report to object storage")
	return cmd
}

func runExport(ro *RootOptions, cmd *cobra.Command, outDir string, archive bool) error {
	s, err := ro.openShop(cmd, archive)
	if err != nil {
		return err
	}
	defer s.close()
	ctx := cmd.Context()

	if outDir == "" {
		outDir = s.cfg.Shop.ExportDir
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create output directory", err)
	}

	out := ro.formatter(cmd)
	out.VerboseLog("exporting from %s", s.cfg.Database.Path)

	now := s.now()
	path := filepath.Join(outDir, s.reports.ExportFilename(now))
	file, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create export file", err)
	}
	rows, err := s.reports.ExportSalesCSV(ctx, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	result := ExportResult{Path: path, Rows: rows}
	s.logger.Info("Sales exported", zap.String("path", path), zap.Int("rows", rows))

	if archive {
		archived, err := s.reports.ArchiveSalesCSV(ctx, now)
		if err != nil {
			return WrapExitError(ExitFailure, "export written but archive upload failed", err)
		}
		result.ArchiveKey = archived.Key
		result.ArchiveURL = archived.URL
	}

	return out.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "wrote %d sales to %s\n", result.Rows, result.Path)
		if result.ArchiveURL != "" {
			fmt.Fprintf(w, "archived as %s\n%s\n", result.ArchiveKey, result.ArchiveURL)
		}
	})
}
