package submission

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"blueprints/internal/assets"
	"blueprints/internal/blueprint"
	"blueprints/internal/config"
	"blueprints/internal/issue"
	"blueprints/internal/ledger"
	"blueprints/internal/logging"
	"blueprints/internal/notifications"
	"blueprints/internal/preview"
	"blueprints/internal/repository"
	"blueprints/internal/services"
	"blueprints/internal/textutil"
)

// Fetcher downloads submission assets.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchFiles(ctx context.Context, urls []string) ([]assets.File, error)
}

// Writer materializes a Blueprint folder.
type Writer interface {
	Write(ctx context.Context, req repository.Request) (repository.Path, error)
}

// Ledger remembers ingested submissions.
type Ledger interface {
	Seen(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, entry ledger.Entry) error
}

// PreviewNormalizer rescales preview images.
type PreviewNormalizer interface {
	Resize(data []byte, name string) ([]byte, bool, error)
}

// Dependencies wires a Pipeline. Ledger, Preview and Notifier may be nil.
type Dependencies struct {
	Builder         *blueprint.Builder
	Fetcher         Fetcher
	Writer          Writer
	Ledger          Ledger
	Preview         PreviewNormalizer
	Notifier        notifications.Service
	FallbackCreator string
	// CreatorIconURL is used for the notification author when the payload
	// carries no avatar.
	CreatorIconURL string
	Logger         *slog.Logger
	Diagnostics    io.Writer
}

// Pipeline processes submissions.
type Pipeline struct {
	deps   Dependencies
	logger *slog.Logger
}

// Result describes a materialized submission.
type Result struct {
	SubmissionID string
	Key          string
	Fields       issue.Fields
	Path         repository.Path
}

// New returns a Pipeline.
func New(deps Dependencies) *Pipeline {
	if deps.Builder == nil {
		deps.Builder = blueprint.NewBuilder()
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = io.Discard
	}
	return &Pipeline{deps: deps, logger: logging.NewComponentLogger(deps.Logger, "submission")}
}

// Materialize ingests a submission payload into the tree.
func (p *Pipeline) Materialize(ctx context.Context, payload []byte) (*Result, error) {
	submissionID := uuid.NewString()
	ctx = services.WithSubmissionID(ctx, submissionID)

	ctx = services.WithStage(ctx, "extract")
	sub, err := p.decode(ctx, payload)
	if err != nil {
		return nil, err
	}
	ctx = services.WithSeries(ctx, sub.Fields.SeriesFullName())
	key := SubmissionKey(sub, payload)

	if p.deps.Ledger != nil {
		seen, err := p.deps.Ledger.Seen(ctx, key)
		if err != nil {
			return nil, services.Wrap(services.ErrWrite, "ledger", "lookup", key, err)
		}
		if seen {
			return nil, services.Wrap(services.ErrDuplicateSubmission, "ledger", "lookup", key, nil)
		}
	}

	ctx = services.WithStage(ctx, "build")
	record, err := p.deps.Builder.Build(sub.Fields)
	if err != nil {
		p.dump(ctx, payload, err)
		return nil, err
	}

	ctx = services.WithStage(ctx, "fetch")
	logger := logging.WithContext(ctx, p.logger)
	previewData, err := p.deps.Fetcher.Fetch(ctx, sub.Fields.PreviewURL)
	if err != nil {
		return nil, err
	}
	fonts, err := p.deps.Fetcher.FetchFiles(ctx, sub.Fields.FileURLs)
	if err != nil {
		return nil, err
	}
	logger.Info("assets fetched", logging.Int("preview_bytes", len(previewData)), logging.Int("font_files", len(fonts)))

	if p.deps.Preview != nil {
		resized, changed, err := p.deps.Preview.Resize(previewData, record.Preview)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "preview left at original size", "preview_resize_failed",
				logging.String(logging.FieldErrorHint, "run the resize command after replacing the preview"),
				logging.Error(err),
			)
		case changed:
			previewData = resized
			logger.Info("preview resized", logging.Int("bytes", len(previewData)))
		}
	}

	ctx = services.WithStage(ctx, "write")
	path, err := p.deps.Writer.Write(ctx, repository.Request{
		SeriesName: sub.Fields.SeriesName,
		SeriesYear: sub.Fields.SeriesYear,
		Blueprint:  record,
		Preview:    previewData,
		Fonts:      fonts,
	})
	if err != nil {
		return nil, err
	}

	if p.deps.Ledger != nil {
		entry := ledger.Entry{
			Key:           key,
			IssueNumber:   sub.Number,
			Series:        path.Series.Name,
			Letter:        path.Series.Letter,
			BlueprintID:   path.ID,
			Creator:       record.Creator,
			CorrelationID: submissionID,
		}
		if err := p.deps.Ledger.Record(ctx, entry); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "submission not recorded in ledger", "ledger_record_failed",
				logging.String(logging.FieldImpact, "blueprint written but a later duplicate will not be detected"),
				logging.Error(err),
			)
		}
	}

	logging.WithContext(ctx, p.logger).Info("submission materialized",
		logging.Int(logging.FieldBlueprintID, path.ID),
		logging.String(logging.FieldPath, path.Dir),
		logging.String("creator", record.Creator),
	)
	return &Result{SubmissionID: submissionID, Key: key, Fields: sub.Fields, Path: path}, nil
}

// Notify announces a submission without writing to the tree.
func (p *Pipeline) Notify(ctx context.Context, payload []byte) (*issue.Submission, error) {
	ctx = services.WithSubmissionID(ctx, uuid.NewString())
	ctx = services.WithStage(ctx, "notify")
	sub, err := p.decode(ctx, payload)
	if err != nil {
		return nil, err
	}
	if p.deps.Notifier == nil {
		return sub, nil
	}
	icon := sub.AuthorIconURL
	if icon == "" {
		icon = p.deps.CreatorIconURL
	}
	err = p.deps.Notifier.NotifySubmission(ctx, notifications.Submission{
		SeriesName:     sub.Fields.SeriesName,
		SeriesYear:     sub.Fields.SeriesYear,
		Description:    sub.Fields.Description,
		Creator:        sub.Fields.Creator,
		CreatorIconURL: icon,
		PreviewURL:     sub.Fields.PreviewURL,
	})
	if err != nil {
		return sub, fmt.Errorf("notify submission: %w", err)
	}
	logging.WithContext(services.WithSeries(ctx, sub.Fields.SeriesFullName()), p.logger).Info("submission announced")
	return sub, nil
}

func (p *Pipeline) decode(ctx context.Context, payload []byte) (*issue.Submission, error) {
	sub, err := issue.DecodePayload(payload, p.deps.FallbackCreator)
	if err != nil {
		p.dump(ctx, payload, err)
		return nil, err
	}
	if _, err := textutil.SeriesFolders(sub.Fields.SeriesFullName()); err != nil {
		err = services.Wrap(services.ErrMalformedInput, "extract", "series name", "", err)
		p.dump(ctx, payload, err)
		return nil, err
	}
	return sub, nil
}

// dump echoes a rejected payload for diagnosis.
func (p *Pipeline) dump(ctx context.Context, payload []byte, cause error) {
	if !errors.Is(cause, services.ErrMalformedInput) {
		return
	}
	logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "unable to parse submission", "malformed_submission",
		logging.String(logging.FieldErrorHint, "check the issue body against the submission template"),
		logging.Error(cause),
	)
	_, _ = fmt.Fprintf(p.deps.Diagnostics, "Unable to parse Blueprint from submission: %v\npayload=%s\n", cause, strconv.Quote(string(payload)))
}

// SubmissionKey identifies a submission for duplicate detection: the issue
// number when known, otherwise a digest of the payload.
func SubmissionKey(sub *issue.Submission, payload []byte) string {
	if sub != nil && sub.Number > 0 {
		return "issue-" + strconv.Itoa(sub.Number)
	}
	sum := sha256.Sum256(payload)
	return "sha256-" + hex.EncodeToString(sum[:8])
}

// FromConfig wires a Pipeline from configuration. store may be nil when the
// ledger is disabled.
func FromConfig(cfg *config.Config, store *ledger.Store, logger *slog.Logger, diagnostics io.Writer) *Pipeline {
	deps := Dependencies{
		Builder:         blueprint.NewBuilder(),
		Fetcher:         assets.NewFetcher(logger, time.Duration(cfg.Submission.FetchTimeout)*time.Second),
		Preview:         preview.NewResizer(cfg.Catalog.PreviewWidth, cfg.Catalog.PreviewHeight, cfg.Catalog.PreviewTolerance, logger),
		Notifier:        notifications.NewService(cfg),
		FallbackCreator: cfg.Submission.DefaultCreator,
		CreatorIconURL:  cfg.Notifications.AuthorIconURL,
		Logger:          logger,
		Diagnostics:     diagnostics,
	}
	if store != nil {
		deps.Ledger = store
		deps.Writer = repository.NewWriter(cfg.BlueprintsPath(), cfg.LockPath(), store, logger)
	} else {
		deps.Writer = repository.NewWriter(cfg.BlueprintsPath(), cfg.LockPath(), nil, logger)
	}
	return New(deps)
}
