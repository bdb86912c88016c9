package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sectxt/internal/model"
)

// JSONWriter outputs reports in JSON format.
// A single run is written as an object, a batch as an array.
//
// Design decision: We use standard encoding/json; the model types carry
// their own struct tags and nothing here needs streaming.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one run.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	return w.writeJSON(prepare(run))
}

// WriteAll outputs the runs as a JSON array.
func (w *JSONWriter) WriteAll(runs []*model.Run) (int, error) {
	for _, run := range runs {
		prepare(run)
	}
	return w.writeJSON(runs)
}

// prepare copies the run error into its serialized field.
func prepare(run *model.Run) *model.Run {
	if run.Error != nil {
		run.ErrorMessage = run.Error.Error()
	}
	return run
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output.
	data = append(data, '\n')
	return w.output.Write(data)
}
