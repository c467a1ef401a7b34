package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blueprints/internal/fileutil"
	"blueprints/internal/migrate"
	"blueprints/internal/preview"
	"blueprints/internal/repository"
	"blueprints/internal/textutil"
)

func newResizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resize",
		Short: "Rescale previews that are not the configured size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			resizer := preview.NewResizer(cfg.Catalog.PreviewWidth, cfg.Catalog.PreviewHeight, cfg.Catalog.PreviewTolerance, logger)
			summary, err := resizer.ResizeTree(cmd.Context(), cfg.BlueprintsPath())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checked %d previews: %d resized, %d failed\n",
				summary.Checked, summary.Resized, summary.Failed)
			return nil
		},
	}
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Write per-folder blueprint.json files from series blueprints.json lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			summary, err := migrate.New(migrate.Options{
				BlueprintsDir: cfg.BlueprintsPath(),
				LockPath:      cfg.LockPath(),
				DryRun:        dryRun,
				Overwrite:     overwrite,
			}, logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			verb := "Migrated"
			if dryRun {
				verb = "Would migrate"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s across %d series (%d already present, %d missing folders, %d corrupt)\n",
				verb, summary.Migrated, plural(summary.Migrated, "Blueprint", "Blueprints"), summary.Series,
				summary.Present, summary.Missing, summary.Corrupt)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing blueprint.json files")
	return cmd
}

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Series folder utilities",
	}
	seriesCmd.AddCommand(newSeriesInitCommand(ctx))
	return seriesCmd
}

func newSeriesInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init <Name (Year)>",
		Short: "Create an empty Series folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(args, " "))
			folder, err := textutil.SeriesFolders(name)
			if err != nil {
				return fmt.Errorf("series name %q: %w", name, err)
			}
			layout := repository.Layout{Root: cfg.BlueprintsPath()}
			dir := layout.SeriesDir(folder)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create series folder: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s/%s\n", folder.Letter, folder.Name)

			indexPath := layout.SeriesIndexPath(folder)
			if fileutil.Exists(indexPath) {
				return nil
			}
			if _, err := fileutil.WriteJSON(indexPath, []any{}); err != nil {
				return fmt.Errorf("write blank series index: %w", err)
			}
			fmt.Fprintf(out, "Created blank %s\n", repository.SeriesIndexName)
			return nil
		},
	}
}
