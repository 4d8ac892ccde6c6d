package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alfredjeanlab/casos/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the case list as JSONL",
	GroupID: "system",
	Long: `Export the case list as JSONL: a header line, then one record per case.

Without destination flags the export is written to stdout. --s3 and --git use
the export_s3_* and export_git_* settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		toS3, _ := cmd.Flags().GetBool("s3")
		toGit, _ := cmd.Flags().GetBool("git")
		full, _ := cmd.Flags().GetBool("full")
		filter, err := listRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := export.Options{Filter: *filter, PageSize: filter.PageSize, Full: full, Mode: currentMode()}

		var dests []export.Destination
		if output != "" && output != "-" {
			dests = append(dests, export.NewFileDestination(output))
		}
		if toS3 {
			if cfg.ExportS3Bucket == "" {
				return fmt.Errorf("--s3 needs export_s3_bucket (CASOS_EXPORT_S3_BUCKET)")
			}
			d, err := export.NewS3Destination(ctx, cfg.ExportS3Bucket, cfg.ExportS3Key, cfg.ExportS3Region, cfg.ExportS3Endpoint, currentMode)
			if err != nil {
				return err
			}
			dests = append(dests, d)
		}
		if toGit {
			if cfg.ExportGitRepo == "" {
				return fmt.Errorf("--git needs export_git_repo (CASOS_EXPORT_GIT_REPO)")
			}
			dests = append(dests, export.NewGitDestination(cfg.ExportGitRepo, cfg.ExportGitFile, cfg.ExportGitBranch))
		}

		if len(dests) == 0 {
			return export.ExportJSONL(ctx, casosClient, stdout, opts)
		}
		n, err := export.Export(ctx, casosClient, dests, opts)
		metricsManager.RecordExport(n, err)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		for _, d := range dests {
			fmt.Fprintf(os.Stderr, "exported %d bytes to %s\n", n, d)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", `write to a file ("-" for stdout)`)
	exportCmd.Flags().Bool("s3", false, "upload to the configured S3 bucket")
	exportCmd.Flags().Bool("git", false, "commit to the configured git repository")
	exportCmd.Flags().Bool("full", false, "export full case files instead of list rows")
	addListFlags(exportCmd)
}
