package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blueprints/internal/config"
	"blueprints/internal/notifications"
	"blueprints/internal/submission"
)

const payloadEnv = "ISSUE_BODY"

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var payloadPath string
	var mode string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Ingest an issue submission into the tree",
		Long: "Reads the submission from --payload (a file, or - for stdin) or the ISSUE_BODY\n" +
			"environment variable. In materialize mode the Blueprint folder is written;\n" +
			"in notify mode the submission is only announced on Discord.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(mode) == "" {
				mode = cfg.Submission.Mode
			}
			payload, err := readPayload(cmd.InOrStdin(), payloadPath)
			if err != nil {
				return err
			}
			return runSubmission(cmd, ctx, strings.ToLower(strings.TrimSpace(mode)), payload)
		},
	}

	cmd.Flags().StringVarP(&payloadPath, "payload", "p", "", "Submission payload file (- reads stdin)")
	cmd.Flags().StringVar(&mode, "mode", "", "Submission mode: materialize or notify (default from config)")
	return cmd
}

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	var payloadPath string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Announce an issue submission on Discord without writing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), payloadPath)
			if err != nil {
				return err
			}
			return runSubmission(cmd, ctx, config.ModeNotify, payload)
		},
	}

	cmd.Flags().StringVarP(&payloadPath, "payload", "p", "", "Submission payload file (- reads stdin)")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.DiscordWebhook == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Discord webhook not configured; nothing sent")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	switch path {
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		return data, nil
	case "":
		value, ok := os.LookupEnv(payloadEnv)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, errors.New("no submission payload: pass --payload or set " + payloadEnv)
		}
		return []byte(value), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return data, nil
	}
}

func runSubmission(cmd *cobra.Command, ctx *commandContext, mode string, payload []byte) error {
	cfg, logger, err := ctx.setup()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch mode {
	case config.ModeNotify:
		pipeline := submission.FromConfig(cfg, nil, logger, cmd.ErrOrStderr())
		sub, err := pipeline.Notify(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if cfg.Notifications.DiscordWebhook == "" {
			fmt.Fprintf(out, "Parsed submission for %s; Discord webhook not configured\n", sub.Fields.SeriesFullName())
			return nil
		}
		fmt.Fprintf(out, "Announced submission for %s\n", sub.Fields.SeriesFullName())
		return nil
	case config.ModeMaterialize:
		store, err := ctx.openLedger()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}
		pipeline := submission.FromConfig(cfg, store, logger, cmd.ErrOrStderr())
		result, err := pipeline.Materialize(cmd.Context(), payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created Blueprint %s/%s/%d\n", result.Path.Series.Letter, result.Path.Series.Name, result.Path.ID)
		return nil
	default:
		return fmt.Errorf("unknown submission mode %q (want %s or %s)", mode, config.ModeMaterialize, config.ModeNotify)
	}
}
