package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"blueprints/internal/config"
	"blueprints/internal/index"
)

func newAggregator(cfg *config.Config, readmes bool, ctx *commandContext) (*index.Aggregator, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return index.NewAggregator(index.Options{
		BlueprintsDir: cfg.BlueprintsPath(),
		MasterIndex:   cfg.MasterIndexPath(),
		LockPath:      cfg.LockPath(),
		RawBaseURL:    cfg.Catalog.RawBaseURL,
		Readmes:       readmes,
	}, logger), nil
}

func newAggregateCommand(ctx *commandContext) *cobra.Command {
	var readmes bool

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Rebuild every series blueprints.json and the master index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			aggregator, err := newAggregator(cfg, readmes, ctx)
			if err != nil {
				return err
			}
			summary, err := aggregator.Rebuild(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d %s across %d series (%d files updated)\n",
				summary.Blueprints, plural(summary.Blueprints, "Blueprint", "Blueprints"), summary.Series, summary.Written)
			if summary.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d unreadable %s; run `blueprints check` for details\n",
					summary.Skipped, plural(summary.Skipped, "entry", "entries"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&readmes, "readmes", false, "Also regenerate every Series README.md")
	return cmd
}

func newReadmeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "readme",
		Short: "Regenerate every Series README.md",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			aggregator, err := newAggregator(cfg, true, ctx)
			if err != nil {
				return err
			}
			summary, err := aggregator.WriteReadmes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checked %d Series READMEs (%d updated)\n", summary.Series, summary.Written)
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List Series and their Blueprint counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			catalog, err := index.Scan(cfg.BlueprintsPath(), logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(catalog.Series) == 0 {
				fmt.Fprintln(out, "No Series found")
				return nil
			}

			rows := make([][]string, 0, len(catalog.Series))
			total := 0
			for _, series := range catalog.Series {
				latest := "-"
				if n := len(series.Entries); n > 0 {
					latest = strconv.Itoa(series.Entries[n-1].ID)
				}
				total += len(series.Entries)
				rows = append(rows, []string{series.Folder.Letter, series.Folder.Name, strconv.Itoa(len(series.Entries)), latest})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Letter", "Series", "Blueprints", "Latest ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				shouldColorize(out),
			))
			fmt.Fprintf(out, "%d %s, %d %s\n",
				len(catalog.Series), plural(len(catalog.Series), "Series", "Series"),
				total, plural(total, "Blueprint", "Blueprints"))
			return nil
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently ingested submissions from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("ledger is disabled; set [ledger] enabled = true")
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No submissions recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				issue := "-"
				if entry.IssueNumber > 0 {
					issue = "#" + strconv.Itoa(entry.IssueNumber)
				}
				rows = append(rows, []string{
					entry.RecordedAt.Local().Format(time.DateTime),
					issue,
					entry.Letter + "/" + entry.Series,
					strconv.Itoa(entry.BlueprintID),
					entry.Creator,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Recorded", "Issue", "Series", "ID", "Creator"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				shouldColorize(out),
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of submissions to show")
	return cmd
}
