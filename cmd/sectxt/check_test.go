package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/sectxt/internal/config"
)

const validDocument = "# Our security policy\n" +
	"Contact: mailto:security@example.com\n" +
	"\n" +
	"\n" +
	"Contact: tel:+1 201 555 0123\n" +
	"Bogus line\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestCheckCmd tests the check command end to end, offline.
func TestCheckCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints report and canonical document", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		stdout, _, err := executeCommand(t, "", "check", "--offline", "--no-history", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Contact: mailto:security@example.com",
			"Contact: tel:+1-201-555-0123",
			"Expires: ",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("output missing %q:\n%s", want, stdout)
			}
		}
		if strings.Contains(stdout, "\nBogus line\n") {
			t.Errorf("invalid line kept:\n%s", stdout)
		}
	})

	t.Run("writes the canonical document with -o", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		output := filepath.Join(t.TempDir(), "clean.txt")
		if _, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "-o", output, input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(output) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		doc := string(data)
		if !strings.HasPrefix(doc, "# Our security policy\nContact: mailto:security@example.com\n\nContact: tel:+1-201-555-0123\n") {
			t.Errorf("unexpected document:\n%s", doc)
		}
		if strings.Contains(doc, "\n\n\n") {
			t.Errorf("double blank line in document:\n%s", doc)
		}
	})

	t.Run("reads stdin", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCommand(t, validDocument, "check", "--offline", "--no-history")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Contact: mailto:security@example.com") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("missing contact fails", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", "Policy: https://example.com/policy\n")
		output := filepath.Join(t.TempDir(), "clean.txt")
		_, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "-o", output, input)
		if !errors.Is(err, errChecksFailed) {
			t.Fatalf("expected errChecksFailed, got %v", err)
		}
		if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
			t.Error("output must not be written for a rejected document")
		}
	})

	t.Run("json report for several files", func(t *testing.T) {
		t.Parallel()

		a := writeFile(t, "a.txt", validDocument)
		b := writeFile(t, "b.txt", "Contact: mailto:other@example.org\n")
		stdout, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "--json", a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []map[string]any
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, stdout)
		}
		if len(runs) != 2 {
			t.Fatalf("got %d runs, want 2", len(runs))
		}
		if runs[0]["source"] != a || runs[1]["source"] != b {
			t.Errorf("runs out of order: %v, %v", runs[0]["source"], runs[1]["source"])
		}
	})

	t.Run("report file keeps text summary on stdout", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		reportPath := filepath.Join(t.TempDir(), "reports", "report.md")
		stdout, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "--markdown", "--report", reportPath, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(reportPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		if !strings.HasPrefix(string(data), "# ") {
			t.Errorf("report is not Markdown:\n%s", data)
		}
		if stdout == "" {
			t.Error("expected a text summary on stdout")
		}
	})

	t.Run("output needs a single input", func(t *testing.T) {
		t.Parallel()

		a := writeFile(t, "a.txt", validDocument)
		b := writeFile(t, "b.txt", validDocument)
		_, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "-o", "out.txt", a, b)
		if !errors.Is(err, errOutputNeedsSingleInput) {
			t.Errorf("expected errOutputNeedsSingleInput, got %v", err)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		_, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "--json", "--markdown", input)
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("keyring required with key", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		_, _, err := executeCommand(t, "", "check", "--offline", "--no-history", "--key", "ABCD", input)
		if !errors.Is(err, config.ErrKeyringRequired) {
			t.Errorf("expected ErrKeyringRequired, got %v", err)
		}
	})
}

// TestBuildConfigPrecedence tests that the file applies and flags win.
func TestBuildConfigPrecedence(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, ".sectxt", "max_age_days: 90\nconcurrency: 2\n")

	cmd := NewRootCmd()
	check, _, err := cmd.Find([]string{"check"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := check.ParseFlags([]string{"--config", cfgPath, "--concurrency", "5"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg, err := buildConfig(check, []string{"security.txt"})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.MaxAgeDays != 90 {
		t.Errorf("MaxAgeDays = %d, want 90 from the file", cfg.MaxAgeDays)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5 from the flag", cfg.Concurrency)
	}
	if !filepath.IsAbs(cfg.Inputs[0]) {
		t.Errorf("input not made absolute: %s", cfg.Inputs[0])
	}
}
