package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"blueprints/internal/integrity"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the tree for structural problems",
		Long:  "Runs every integrity check and prints one row per violation. Exits non-zero when any check fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			report, err := integrity.NewChecker(cfg.BlueprintsPath(), logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if report.OK() {
				fmt.Fprintln(out, colorText(colorize, text.FgGreen, fmt.Sprintf(
					"All checks passed (%d series, %d %s)",
					report.Series, report.Blueprints, plural(report.Blueprints, "Blueprint", "Blueprints"))))
				return nil
			}

			rows := make([][]string, 0, len(report.Violations))
			for _, v := range report.Violations {
				rows = append(rows, []string{v.Check, v.Path, v.Message})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Path", "Problem"}, rows, nil, colorize))

			counts := report.ByCheck()
			checks := make([]string, 0, len(counts))
			for check := range counts {
				checks = append(checks, check)
			}
			sort.Strings(checks)
			summary := make([][]string, 0, len(checks))
			for _, check := range checks {
				summary = append(summary, []string{check, fmt.Sprint(counts[check])})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Violations"}, summary, []columnAlignment{alignLeft, alignRight}, colorize))
			fmt.Fprintln(out, colorText(colorize, text.FgRed, fmt.Sprintf("%d %s found",
				len(report.Violations), plural(len(report.Violations), "violation", "violations"))))
			return report.Err()
		},
	}
}
