package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeSubmission()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.RepositoryRoot) == "" {
		c.Paths.RepositoryRoot = defaultRepositoryRoot
	}
	if c.Paths.RepositoryRoot, err = expandPath(strings.TrimSpace(c.Paths.RepositoryRoot)); err != nil {
		return fmt.Errorf("paths.repository_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.BlueprintsDir) == "" {
		c.Paths.BlueprintsDir = defaultBlueprintsDir
	}
	if strings.TrimSpace(c.Paths.MasterIndex) == "" {
		c.Paths.MasterIndex = defaultMasterIndex
	}
	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = defaultLockFile
	}
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.RawBaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.RawBaseURL), "/")
	if c.Catalog.RawBaseURL == "" {
		c.Catalog.RawBaseURL = defaultRawBaseURL
	}
}

func (c *Config) normalizeSubmission() {
	if value, ok := os.LookupEnv("SUBMISSION_MODE"); ok && strings.TrimSpace(value) != "" {
		c.Submission.Mode = value
	}
	c.Submission.Mode = strings.ToLower(strings.TrimSpace(c.Submission.Mode))
	if c.Submission.Mode == "" {
		c.Submission.Mode = defaultSubmissionMode
	}
	if value, ok := os.LookupEnv("ISSUE_CREATOR"); ok && strings.TrimSpace(value) != "" {
		c.Submission.DefaultCreator = strings.TrimSpace(value)
	}
	c.Submission.DefaultCreator = strings.TrimSpace(c.Submission.DefaultCreator)
	if c.Submission.DefaultCreator == "" {
		c.Submission.DefaultCreator = defaultCreator
	}
	if c.Submission.FetchTimeout == 0 {
		c.Submission.FetchTimeout = defaultFetchTimeout
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.DiscordWebhook == "" {
		if value, ok := os.LookupEnv("DISCORD_WEBHOOK"); ok {
			c.Notifications.DiscordWebhook = value
		}
	}
	c.Notifications.DiscordWebhook = strings.TrimSpace(c.Notifications.DiscordWebhook)
	if value, ok := os.LookupEnv("DISCORD_USERNAME"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.Username = value
	}
	c.Notifications.Username = strings.TrimSpace(c.Notifications.Username)
	if c.Notifications.Username == "" {
		c.Notifications.Username = defaultDiscordUsername
	}
	if value, ok := os.LookupEnv("DISCORD_AVATAR"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.AvatarURL = value
	}
	c.Notifications.AvatarURL = strings.TrimSpace(c.Notifications.AvatarURL)
	if value, ok := os.LookupEnv("ISSUE_CREATOR_ICON_URL"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.AuthorIconURL = value
	}
	c.Notifications.AuthorIconURL = strings.TrimSpace(c.Notifications.AuthorIconURL)
	if c.Notifications.AuthorIconURL == "" {
		c.Notifications.AuthorIconURL = defaultAuthorIconURL
	}
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.MergeIntervalHours == 0 {
		c.Notifications.MergeIntervalHours = defaultMergeIntervalHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
}
