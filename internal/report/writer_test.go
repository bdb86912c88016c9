package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sectxt/internal/model"
)

// createTestRun creates a run with sample diagnostics for testing.
func createTestRun() *model.Run {
	run := model.NewRun("/srv/www/.well-known/security.txt")
	result := model.NewResult()
	result.Document = "Contact: mailto:security@example.com\nExpires: 2024-12-30T00:00:00Z\n"
	result.Expires = time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	result.KeyFingerprint = "0123456789ABCDEF0123456789ABCDEF01234567"
	result.LinesRead = 4
	result.LinesKept = 2
	result.Add(model.NewDiagnostic(2, "Contact", model.CodeInvalidMailto, model.SeverityError, `malformed email address "mailto:x"`))
	result.Add(model.NewDiagnostic(3, "Contact", model.CodeTelRepaired, model.SeverityWarning, "telephone number rewritten"))
	result.Add(model.NewDiagnostic(0, "Canonical", model.CodeMissingCanonical, model.SeverityInfo, "no Canonical field"))
	run.Result = result
	return run
}

func createFailedRun() *model.Run {
	run := model.NewRun("broken.txt")
	run.Result = model.NewResult()
	run.Result.Add(model.NewDiagnostic(0, "", model.CodeMissingContact, model.SeverityError, "the document has no valid Contact field"))
	run.Error = errors.New("no valid Contact field")
	return run
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and diagnostics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"security.txt: /srv/www/.well-known/security.txt",
			"Status:   REPAIRED",
			"Expires:  2024-12-30T00:00:00Z",
			"Key:      0123456789ABCDEF0123456789ABCDEF01234567",
			"Removed (1):",
			"[x] line 2: Contact: malformed email address",
			"Warnings (1):",
			"Notes (1):",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "->") {
			t.Error("recommendations should only appear in verbose mode")
		}
		if strings.Contains(output, "Contact: mailto:security@example.com\n") {
			t.Error("document should not be printed by default")
		}
	})

	t.Run("verbose adds recommendations and document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true), WithShowDocument(true))
		if _, err := w.Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "-> "+model.Recommendation(model.CodeInvalidMailto)) {
			t.Errorf("expected recommendation in output:\n%s", output)
		}
		if !strings.Contains(output, "Contact: mailto:security@example.com\n") {
			t.Errorf("expected document in output:\n%s", output)
		}
	})

	t.Run("failed run shows the error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteAll([]*model.Run{createTestRun(), createFailedRun()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Status:   FAILED") || !strings.Contains(output, "Error:    no valid Contact field") {
			t.Errorf("expected failure details:\n%s", output)
		}
		if !strings.Contains(output, "2 file(s) checked, 1 failed") {
			t.Errorf("expected tally:\n%s", output)
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("single run is an object", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Source string `json:"source"`
			Result struct {
				Expires     time.Time `json:"expires"`
				Diagnostics []struct {
					Code     string `json:"code"`
					Severity string `json:"severity"`
				} `json:"diagnostics"`
			} `json:"result"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if decoded.Source != "/srv/www/.well-known/security.txt" {
			t.Errorf("source = %q", decoded.Source)
		}
		if len(decoded.Result.Diagnostics) != 3 || decoded.Result.Diagnostics[0].Severity != "ERROR" {
			t.Errorf("diagnostics = %+v", decoded.Result.Diagnostics)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("batch is an array with error messages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteAll([]*model.Run{createTestRun(), createFailedRun()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("got %d entries", len(decoded))
		}
		if decoded[1]["error"] != "no valid Contact field" {
			t.Errorf("error = %v", decoded[1]["error"])
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).WriteAll([]*model.Run{createTestRun(), createFailedRun()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# security.txt Report",
		"## `/srv/www/.well-known/security.txt`",
		"| Property",
		"Diagnostics",
		"```mermaid",
		"[!CAUTION]",
		"Contact: mailto:security@example.com",
		"## `broken.txt`",
		"no valid Contact field",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, output)
		}
	}
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(createTestRun())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("n = %d, want %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected output in both writers")
	}
}

// TestTruncateString tests truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
