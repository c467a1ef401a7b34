package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateSubmission(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.RepositoryRoot == "" {
		return errors.New("paths.repository_root must be set")
	}
	if filepath.Clean(c.Paths.BlueprintsDir) == "." {
		return errors.New("paths.blueprints_dir must name a subdirectory of the repository")
	}
	if filepath.Clean(c.Paths.MasterIndex) == filepath.Clean(c.Paths.BlueprintsDir) {
		return errors.New("paths.master_index must not equal paths.blueprints_dir")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	parsed, err := url.Parse(c.Catalog.RawBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("catalog.raw_base_url must be an absolute URL, got %q", c.Catalog.RawBaseURL)
	}
	if c.Catalog.PreviewWidth <= 0 || c.Catalog.PreviewHeight <= 0 {
		return errors.New("catalog.preview_width and catalog.preview_height must be positive")
	}
	if c.Catalog.PreviewTolerance < 0 {
		return errors.New("catalog.preview_tolerance must be >= 0")
	}
	return nil
}

func (c *Config) validateSubmission() error {
	switch c.Submission.Mode {
	case ModeMaterialize, ModeNotify:
	default:
		return fmt.Errorf("submission.mode must be %q or %q, got %q", ModeMaterialize, ModeNotify, c.Submission.Mode)
	}
	if c.Submission.FetchTimeout < 0 {
		return errors.New("submission.fetch_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	if c.Notifications.MergeIntervalHours < 0 || (c.Notifications.MergeIntervalHours > 0 && 24%c.Notifications.MergeIntervalHours != 0) {
		return errors.New("notifications.merge_interval_hours must divide 24")
	}
	if hook := c.Notifications.DiscordWebhook; hook != "" && !strings.HasPrefix(hook, "http") {
		return fmt.Errorf("notifications.discord_webhook must be an http(s) URL, got %q", hook)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
