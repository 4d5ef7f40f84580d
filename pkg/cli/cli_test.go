package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/genfun/internal/manifest"
	"github.com/funvibe/genfun/internal/store"
	"github.com/funvibe/genfun/internal/trace"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genfun.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestRunCheck(t *testing.T) {
	path := writeManifest(t, `
generics:
  - name: print
    primitive: true
  - name: summary
`)
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"check", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "2 generics") {
		t.Errorf("output missing summary: %s", out)
	}
	if !strings.Contains(out, "primitive generic") {
		t.Errorf("output missing primitive flag: %s", out)
	}
}

func TestRunCheckInvalidManifest(t *testing.T) {
	path := writeManifest(t, "generics:\n  - primitive: true\n")
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"check", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "name is required") {
		t.Errorf("stderr = %s", stderr.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "unknown command") {
		t.Errorf("stderr = %s", stderr.String())
	}
}

func TestRunNoArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
}

func TestRunMethodsAndCalls(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	s, err := store.Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.RecordRegistration("summary", "lm", "local"); err != nil {
		t.Fatalf("RecordRegistration: %v", err)
	}
	s.Emit(trace.Event{CallID: "c1", Kind: trace.KindDispatch, Generic: "summary"})
	s.Emit(trace.Event{CallID: "c1", Kind: trace.KindMatch, Generic: "summary", Class: "lm"})
	s.Close()

	var stdout, stderr bytes.Buffer
	if code := Run([]string{"methods", "-db", dbPath, "summary"}, &stdout, &stderr); code != 0 {
		t.Fatalf("methods exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "summary.lm") {
		t.Errorf("methods output = %s", stdout.String())
	}

	stdout.Reset()
	if code := Run([]string{"calls", "-db", dbPath}, &stdout, &stderr); code != 0 {
		t.Fatalf("calls exit code %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "summary") || !strings.Contains(out, "c1") {
		t.Errorf("calls output = %s", out)
	}
}

func TestAuditRemoteBindings(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	s, err := store.Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditRemoteBindings(s, []manifest.RemoteMethod{
		{Generic: "summary", Class: "lm", Target: "localhost:4000", Method: "stats.Models/Summarize"},
		{Generic: "summary", Class: "glm", Target: "localhost:4000", Method: "stats.Models/Summarize"},
	}, quiet)
	s.Close()

	// the methods command must list what serve exposes
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"methods", "-db", dbPath, "summary"}, &stdout, &stderr); code != 0 {
		t.Fatalf("methods exit code %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"summary.lm", "summary.glm", "remote:localhost:4000"} {
		if !strings.Contains(out, want) {
			t.Errorf("methods output missing %q:\n%s", want, out)
		}
	}
}

func TestRunMethodsUnknownGeneric(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"methods", "-db", dbPath, "nosuch"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "no methods recorded") {
		t.Errorf("output = %s", stdout.String())
	}
}

func TestRunGenWithoutBindEntries(t *testing.T) {
	path := writeManifest(t, "generics:\n  - name: f\n")
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"gen", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "nothing to generate") {
		t.Errorf("output = %s", stdout.String())
	}
}

func TestRunServeRequiresServices(t *testing.T) {
	path := writeManifest(t, "generics:\n  - name: f\n")
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"serve", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "no services") {
		t.Errorf("stderr = %s", stderr.String())
	}
}
