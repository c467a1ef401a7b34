package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"blueprints/internal/logging"
	"blueprints/internal/services"
)

// DefaultTimeout bounds a single asset download.
const DefaultTimeout = 30 * time.Second

const errorBodyLimit = 4 << 10

// FetchError is a non-success HTTP response.
type FetchError struct {
	URL    string
	Status int
	// Body is the beginning of the response body, kept for diagnostics.
	Body string
}

func (e *FetchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d: %s", e.URL, e.Status, e.Body)
}

func (e *FetchError) Unwrap() error {
	return services.ErrFetch
}

// File is one named asset ready to be written into a Blueprint folder.
type File struct {
	Name string
	Data []byte
}

// Fetcher downloads assets over HTTP.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher returns a Fetcher with the given timeout. A non-positive timeout
// selects DefaultTimeout.
func NewFetcher(logger *slog.Logger, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "assets"),
	}
}

// Fetch downloads rawURL and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, services.Wrap(services.ErrFetch, "fetch", "build request", "empty url", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "build request", rawURL, err)
	}

	f.logger.Debug("downloading asset", logging.String("url", rawURL))
	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "get", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &FetchError{URL: rawURL, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "read body", rawURL, err)
	}
	f.logger.Debug("asset downloaded",
		logging.String("url", rawURL),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

// FetchFiles downloads every URL. Archives are expanded into their members;
// any other download becomes one file named after the last URL path segment.
// Nothing is returned unless every download succeeds.
func (f *Fetcher) FetchFiles(ctx context.Context, urls []string) ([]File, error) {
	var files []File
	seen := make(map[string]struct{})
	for _, rawURL := range urls {
		data, err := f.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		name := NameFromURL(rawURL)
		batch := []File{{Name: name, Data: data}}
		if IsArchive(data) {
			batch, err = ExpandArchive(name, data)
			if err != nil {
				return nil, err
			}
			f.logger.Info("expanded font archive",
				logging.String("url", rawURL),
				logging.Int("files", len(batch)),
			)
		} else if name == "" {
			return nil, services.Wrap(services.ErrFetch, "fetch", "name asset", "cannot derive a file name from "+rawURL, nil)
		}
		for _, file := range batch {
			if _, dup := seen[file.Name]; dup {
				return nil, services.Wrap(services.ErrUnpack, "fetch", "collect files", "duplicate file "+file.Name, nil)
			}
			seen[file.Name] = struct{}{}
			files = append(files, file)
		}
	}
	return files, nil
}

// NameFromURL returns the unescaped last path segment of rawURL.
func NameFromURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}
