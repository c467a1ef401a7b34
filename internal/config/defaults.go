package config

const (
	defaultRepositoryRoot     = "."
	defaultBlueprintsDir      = "blueprints"
	defaultMasterIndex        = "master_blueprints.json"
	defaultLockFile           = ".blueprints.lock"
	defaultRawBaseURL         = "https://github.com/CollinHeist/TitleCardMaker-Blueprints/raw/master/blueprints"
	defaultPreviewWidth       = 1920
	defaultPreviewHeight      = 1080
	defaultPreviewTolerance   = 5
	defaultSubmissionMode     = ModeMaterialize
	defaultCreator            = "CollinHeist"
	defaultFetchTimeout       = 30
	defaultLedgerPath         = ".ledger/submissions.db"
	defaultDiscordUsername    = "MakerBot"
	defaultAuthorIconURL      = "https://raw.githubusercontent.com/CollinHeist/TitleCardMaker/master/.github/logo.png"
	defaultNotifyTimeout      = 10
	defaultMergeIntervalHours = 4
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RepositoryRoot: defaultRepositoryRoot,
			BlueprintsDir:  defaultBlueprintsDir,
			MasterIndex:    defaultMasterIndex,
			LockFile:       defaultLockFile,
		},
		Catalog: Catalog{
			RawBaseURL:       defaultRawBaseURL,
			PreviewWidth:     defaultPreviewWidth,
			PreviewHeight:    defaultPreviewHeight,
			PreviewTolerance: defaultPreviewTolerance,
		},
		Submission: Submission{
			Mode:           defaultSubmissionMode,
			DefaultCreator: defaultCreator,
			FetchTimeout:   defaultFetchTimeout,
		},
		Ledger: Ledger{
			Path: defaultLedgerPath,
		},
		Notifications: Notifications{
			Username:           defaultDiscordUsername,
			AuthorIconURL:      defaultAuthorIconURL,
			RequestTimeout:     defaultNotifyTimeout,
			MergeIntervalHours: defaultMergeIntervalHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
