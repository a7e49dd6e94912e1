package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/techdocs/errors"
)

func writeConfig(t *testing.T, publishDir string) string {
	t.Helper()
	content := `
logging:
  level: error
techdocs:
  requestUrl: http://localhost:7007/api/techdocs
  publisher:
    type: local
    local:
      publishDirectory: ` + publishDir + "\n"
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPublishListFetch(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	bundle := t.TempDir()
	if err := os.MkdirAll(filepath.Join(bundle, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundle, "index.html"), []byte("<h1>api</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundle, "css", "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "--config", cfgPath, "publish", "--entity", "default/component/api", "--directory", bundle)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.Contains(out, "published 2 file(s) for default/component/api to local") {
		t.Errorf("publish output = %q", out)
	}
	if !strings.Contains(out, "docs url: http://localhost:7007/api/techdocs/static/docs/default/component/api/") {
		t.Errorf("publish output missing docs url: %q", out)
	}

	out, _, err = execute(t, "--config", cfgPath, "list", "default/component/api")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out != "css/site.css\nindex.html\n" {
		t.Errorf("list output = %q", out)
	}

	out, _, err = execute(t, "--config", cfgPath, "fetch", "default/component/api", "index.html")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if out != "<h1>api</h1>" {
		t.Errorf("fetch output = %q", out)
	}

	dest := filepath.Join(t.TempDir(), "site.css")
	if _, _, err := execute(t, "--config", cfgPath, "fetch", "default/component/api", "css/site.css", "-o", dest); err != nil {
		t.Fatalf("fetch -o failed: %v", err)
	}
	if got, _ := os.ReadFile(dest); string(got) != "body{}" {
		t.Errorf("fetched file = %q", got)
	}
}

func TestFetchNotFound(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	_, _, err := execute(t, "--config", cfgPath, "fetch", "default/component/missing", "index.html")
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPublishRequiresEntity(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	if _, _, err := execute(t, "--config", cfgPath, "publish"); err == nil {
		t.Fatal("expected missing --entity error")
	}
}

func TestCheck(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	out, stderr, err := execute(t, "--config", cfgPath, "check")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "local backend ready") {
		t.Errorf("check output = %q", out)
	}
	if !strings.Contains(stderr, "TechDocs Publisher") {
		t.Errorf("summary not written to stderr: %q", stderr)
	}
}

func TestCheckNotReady(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeConfig(t, filepath.Join(file, "docs"))
	if _, _, err := execute(t, "--config", cfgPath, "check"); err == nil || !strings.Contains(err.Error(), "not ready") {
		t.Errorf("expected not ready error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "techdocs ") {
		t.Errorf("version output = %q", out)
	}
}

func TestPublishNotReady(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeConfig(t, filepath.Join(file, "docs"))
	bundle := t.TempDir()
	if err := os.WriteFile(filepath.Join(bundle, "index.html"), []byte("<h1>api</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "--config", cfgPath, "publish", "--entity", "default/component/api", "--directory", bundle)
	if err == nil || !strings.Contains(err.Error(), "local backend not ready") {
		t.Fatalf("expected not ready error, got %v", err)
	}
	if out != "" {
		t.Errorf("publish should not run on an unready backend, output = %q", out)
	}
}

func TestFetchToFileLeavesNothingOnFailure(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	destDir := t.TempDir()

	_, _, err := execute(t, "--config", cfgPath, "fetch", "default/component/missing", "index.html", "-o", filepath.Join(destDir, "index.html"))
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed fetch left files behind: %v", entries)
	}
}
