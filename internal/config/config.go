package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFileName is the project-local configuration file picked up when no
// explicit path is given.
const DefaultFileName = "blueprints.toml"

// Submission modes.
const (
	ModeMaterialize = "materialize"
	ModeNotify      = "notify"
)

// Paths locates the catalog inside the repository working tree.
type Paths struct {
	RepositoryRoot string `toml:"repository_root"`
	BlueprintsDir  string `toml:"blueprints_dir"`
	MasterIndex    string `toml:"master_index"`
	LockFile       string `toml:"lock_file"`
}

// Catalog contains settings describing published catalog content.
type Catalog struct {
	RawBaseURL       string `toml:"raw_base_url"`
	PreviewWidth     int    `toml:"preview_width"`
	PreviewHeight    int    `toml:"preview_height"`
	PreviewTolerance int    `toml:"preview_tolerance"`
}

// Submission contains settings for ingesting issue submissions.
type Submission struct {
	Mode           string `toml:"mode"`
	DefaultCreator string `toml:"default_creator"`
	FetchTimeout   int    `toml:"fetch_timeout"`
}

// Ledger contains settings for the optional submission ledger database.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for Discord webhook notifications.
type Notifications struct {
	DiscordWebhook     string `toml:"discord_webhook"`
	Username           string `toml:"username"`
	AvatarURL          string `toml:"avatar_url"`
	AuthorIconURL      string `toml:"author_icon_url"`
	RequestTimeout     int    `toml:"request_timeout"`
	MergeIntervalHours int    `toml:"merge_interval_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Configuration sections by subsystem:
//   - Paths: repository root and catalog file locations
//   - Catalog: published URLs and preview geometry
//   - Submission: issue ingestion behaviour
//   - Ledger: SQLite record of ingested submissions
//   - Notifications: Discord webhook settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Submission    Submission    `toml:"submission"`
	Ledger        Ledger        `toml:"ledger"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A missing file is not an error;
// defaults and environment fallbacks are used instead.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultFileName
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// BlueprintsPath returns the absolute path of the blueprints tree.
func (c *Config) BlueprintsPath() string {
	return c.resolve(c.Paths.BlueprintsDir)
}

// MasterIndexPath returns the absolute path of the whole-catalog index.
func (c *Config) MasterIndexPath() string {
	return c.resolve(c.Paths.MasterIndex)
}

// LockPath returns the absolute path of the advisory lock file.
func (c *Config) LockPath() string {
	return c.resolve(c.Paths.LockFile)
}

// LedgerPath returns the absolute ledger database path, or "" when disabled.
func (c *Config) LedgerPath() string {
	if !c.Ledger.Enabled {
		return ""
	}
	return c.resolve(c.Ledger.Path)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.RepositoryRoot, p)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
