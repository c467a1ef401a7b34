package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blueprints/internal/services"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	for _, key := range []string{"DISCORD_WEBHOOK", "SUBMISSION_MODE", "ISSUE_CREATOR", "ISSUE_BODY"} {
		t.Setenv(key, "")
	}
	configPath := filepath.Join(base, "blueprints.toml")
	content := fmt.Sprintf("[paths]\nrepository_root = %q\n\n[catalog]\nraw_base_url = %q\n\n[logging]\nlevel = \"error\"\n",
		base, "https://example.test/raw/blueprints")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func submissionBody(baseURL string) string {
	const fence = "```"
	return "### Series Name\n\nThe Wire\n\n" +
		"### Series Year\n\n2002\n\n" +
		"### Creator Username\n\nomar\n\n" +
		"### Blueprint Description\n\nBaltimore street signs.\n\n" +
		"### Blueprint\n\n" + fence + "json\n{\"fonts\": [{\"file\": \"Wire.ttf\"}]}\n" + fence + "\n\n" +
		"### Preview Title Card\n\n![preview](" + baseURL + "/preview.jpg)\n\n" +
		"### Zip of Font Files\n\n[Wire.ttf](" + baseURL + "/Wire.ttf)\n"
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, filepath.Join(env.baseDir, "blueprints"))

	target := filepath.Join(t.TempDir(), "nested", "blueprints.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected config init to refuse overwriting")
	}
}

func TestSeriesInitCreatesBlankIndex(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"series", "init", "The Wire (2002)"}, env.configPath)
	if err != nil {
		t.Fatalf("series init: %v", err)
	}
	requireContains(t, out, "Created W/The Wire (2002)")

	data, err := os.ReadFile(filepath.Join(env.baseDir, "blueprints", "W", "The Wire (2002)", "blueprints.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("unexpected blank index %q", data)
	}

	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check on empty series: %v\n%s", err, out)
	}
	requireContains(t, out, "All checks passed")
}

func TestSubmitAggregateAndCheck(t *testing.T) {
	env := setupCLITestEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/preview.jpg":
			_, _ = w.Write([]byte("jpeg"))
		case "/Wire.ttf":
			_, _ = w.Write([]byte("font"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	payloadPath := filepath.Join(env.baseDir, "payload.md")
	if err := os.WriteFile(payloadPath, []byte(submissionBody(server.URL)), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	out, _, err := runCLI(t, []string{"submit", "--payload", payloadPath}, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	requireContains(t, out, "Created Blueprint W/The Wire (2002)/0")

	out, _, err = runCLI(t, []string{"aggregate", "--readmes"}, env.configPath)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	requireContains(t, out, "Indexed 1 Blueprint across 1 series")

	data, err := os.ReadFile(filepath.Join(env.baseDir, "master_blueprints.json"))
	if err != nil {
		t.Fatalf("read master index: %v", err)
	}
	var master []map[string]any
	if err := json.Unmarshal(data, &master); err != nil {
		t.Fatalf("decode master index: %v", err)
	}
	if len(master) != 1 || master[0]["series_full_name"] != "The Wire (2002)" {
		t.Fatalf("unexpected master index %s", data)
	}
	readme, err := os.ReadFile(filepath.Join(env.baseDir, "blueprints", "W", "The Wire (2002)", "README.md"))
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	requireContains(t, string(readme), "# The Wire (2002)")

	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "All checks passed (1 series, 1 Blueprint)")

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "The Wire (2002)")

	stray := filepath.Join(env.baseDir, "blueprints", "W", "The Wire (2002)", "0", "notes.txt")
	if err := os.WriteFile(stray, []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}
	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if !errors.Is(err, services.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	requireContains(t, out, "orphan-asset")
	requireContains(t, out, "1 violation found")
}

func TestSubmitRejectsMalformedPayload(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("ISSUE_BODY", `"### Series Name\n\nNothing else"`)

	_, stderr, err := runCLI(t, []string{"submit"}, env.configPath)
	if !errors.Is(err, services.ErrMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	requireContains(t, stderr, "payload=")
	if _, statErr := os.Stat(filepath.Join(env.baseDir, "blueprints")); !os.IsNotExist(statErr) {
		t.Fatalf("malformed submission created the tree: %v", statErr)
	}
}

func TestSubmitRequiresPayload(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"submit"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "ISSUE_BODY") {
		t.Fatalf("expected missing payload error, got %v", err)
	}
}

func TestNotifyWithoutWebhookOnlyParses(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("ISSUE_BODY", submissionBody("https://cdn.example.test"))

	out, _, err := runCLI(t, []string{"notify"}, env.configPath)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	requireContains(t, out, "Parsed submission for The Wire (2002)")
}

func TestHistoryRequiresLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"history"}, env.configPath); err == nil {
		t.Fatal("expected history to fail without a ledger")
	}
}
