package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sectxt/internal/expiry"
	"github.com/nao1215/sectxt/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII markers rather than ANSI
// colors so the output survives pipes, files and CI logs unchanged.
type SimpleWriter struct {
	baseWriter

	// showDocument appends the canonical document to the report.
	showDocument bool

	// verbose adds a remediation hint under each diagnostic.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowDocument prints the canonical document after the diagnostics.
func WithShowDocument(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showDocument = show
	}
}

// WithVerbose enables remediation hints.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one run.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder
	w.writeRun(&sb, run)
	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs each run followed by a one-line tally.
func (w *SimpleWriter) WriteAll(runs []*model.Run) (int, error) {
	var sb strings.Builder
	failed := 0
	for _, run := range runs {
		w.writeRun(&sb, run)
		if run.Failed() {
			failed++
		}
	}
	fmt.Fprintf(&sb, "%d file(s) checked, %d failed\n", len(runs), failed)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.Run) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "security.txt: %s\n", run.Source)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Status:   %s\n", status(run))
	if msg := errorText(run); msg != "" {
		fmt.Fprintf(sb, "Error:    %s\n", msg)
	}

	result := run.Result
	if result != nil {
		if !result.Expires.IsZero() {
			fmt.Fprintf(sb, "Expires:  %s\n", expiry.Format(result.Expires))
		}
		if result.KeyFingerprint != "" {
			fmt.Fprintf(sb, "Key:      %s\n", result.KeyFingerprint)
		}
		fmt.Fprintf(sb, "Lines:    %d read, %d kept\n", result.LinesRead, result.LinesKept)
	}
	if run.WasSigned {
		sb.WriteString("Input:    clearsigned (signature removed)\n")
	}
	if len(run.Signed) > 0 {
		sb.WriteString("Signed:   yes\n")
	}
	sb.WriteString("\n")

	if result == nil {
		return
	}

	sections := []struct {
		severity model.Severity
		title    string
		marker   string
	}{
		{model.SeverityError, "Removed", "x"},
		{model.SeverityWarning, "Warnings", "!"},
		{model.SeverityInfo, "Notes", "i"},
	}
	for _, s := range sections {
		diags := result.BySeverity(s.severity)
		if len(diags) == 0 {
			continue
		}
		fmt.Fprintf(sb, "%s (%d):\n", s.title, len(diags))
		for _, d := range diags {
			fmt.Fprintf(sb, "  [%s] %s\n", s.marker, d.String())
			if w.verbose {
				if rec := model.Recommendation(d.Code); rec != "" {
					fmt.Fprintf(sb, "      -> %s\n", rec)
				}
			}
		}
		sb.WriteString("\n")
	}

	if w.showDocument && result.Document != "" {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString(result.Document)
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n\n")
	}
}
