package model

import "time"

// Result is the outcome of validating one document.
type Result struct {
	// Document is the canonical output body. Empty when the run failed.
	Document string `json:"document,omitempty"`

	// Expires is the resolved expiration written into the document.
	Expires time.Time `json:"expires"`

	// KeyFingerprint is the signing key used for cross-references, if any.
	KeyFingerprint string `json:"key_fingerprint,omitempty"`

	// Diagnostics lists every warning, error and advisory in input order.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// LinesRead and LinesKept count input lines and output lines.
	LinesRead int `json:"lines_read"`
	LinesKept int `json:"lines_kept"`
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{Diagnostics: make([]Diagnostic, 0)}
}

// Add appends a diagnostic.
func (r *Result) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Warnings returns warning and advisory messages in input order.
func (r *Result) Warnings() []string {
	return r.messages(func(s Severity) bool { return s != SeverityError })
}

// Errors returns the messages of dropped lines and fatal problems.
func (r *Result) Errors() []string {
	return r.messages(func(s Severity) bool { return s == SeverityError })
}

// BySeverity returns the diagnostics with the given severity.
func (r *Result) BySeverity(severity Severity) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics with the given severity.
func (r *Result) Count(severity Severity) int {
	return len(r.BySeverity(severity))
}

// RestoreSeverities sets Severity from SeverityText on every diagnostic.
// Severity is not serialized, so results read back from JSON need this.
func (r *Result) RestoreSeverities() {
	for i := range r.Diagnostics {
		r.Diagnostics[i].Severity = ParseSeverity(r.Diagnostics[i].SeverityText)
	}
}

func (r *Result) messages(keep func(Severity) bool) []string {
	out := make([]string, 0)
	for _, d := range r.Diagnostics {
		if keep(d.Severity) {
			out = append(out, d.String())
		}
	}
	return out
}
