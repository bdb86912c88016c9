package report

import (
	"io"

	"github.com/nao1215/sectxt/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface so that the CLI picks a format once
// and writes single runs and batches through the same API.
type Writer interface {
	// Write outputs the report of one run.
	Write(run *model.Run) (int, error)

	// WriteAll outputs the reports of several runs, in order.
	WriteAll(runs []*model.Run) (int, error)
}

// MultiWriter writes to multiple Writers.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all Writers, stopping at the first error.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(run) })
}

// WriteAll outputs the runs to all Writers, stopping at the first error.
func (m *MultiWriter) WriteAll(runs []*model.Run) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteAll(runs) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// status returns a one-word run status.
func status(run *model.Run) string {
	switch {
	case run.Failed():
		return "FAILED"
	case run.Result != nil && run.Result.Count(model.SeverityError) > 0:
		return "REPAIRED"
	case run.Result != nil && run.Result.Count(model.SeverityWarning) > 0:
		return "OK (with warnings)"
	default:
		return "OK"
	}
}

// errorText returns the run error message, if any.
func errorText(run *model.Run) string {
	if run.Error != nil {
		return run.Error.Error()
	}
	return run.ErrorMessage
}

// truncateString truncates a string to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
