package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"blueprints/internal/ledger"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRawBaseURL verifies that preview links will be absolute http(s) URLs.
func CheckRawBaseURL(raw string) Result {
	const name = "Raw base URL"

	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%q is not an absolute http(s) url", raw)}
	}
	return Result{Name: name, Passed: true, Detail: parsed.String()}
}

// CheckLedger opens the ledger database and runs a read against it.
func CheckLedger(ctx context.Context, path string) Result {
	const name = "Submission ledger"

	store, err := ledger.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: read: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s (empty)", path)
	if len(entries) > 0 {
		detail = fmt.Sprintf("%s (last submission %s)", path, entries[0].RecordedAt.UTC().Format(time.RFC3339))
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckWebhook verifies the Discord webhook exists. A GET on a webhook URL
// returns its metadata without posting anything.
func CheckWebhook(ctx context.Context, webhook string) Result {
	const name = "Discord webhook"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, strings.TrimSpace(webhook), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return Result{Name: name, Detail: fmt.Sprintf("webhook rejected (%d); regenerate the webhook url", resp.StatusCode)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

func summarizeRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (webhook unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (webhook unreachable)"
	}
	return err.Error()
}
