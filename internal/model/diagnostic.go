package model

import (
	"fmt"
	"strings"
)

// Diagnostic is a message attached to a single input line, or to the whole
// document when Line is zero.
type Diagnostic struct {
	// Line is the 1-based input line number. Zero means the document itself.
	Line int `json:"line,omitempty"`

	// Field is the field name as written in the input, if any.
	Field string `json:"field,omitempty"`

	// Code identifies the problem.
	Code Code `json:"code"`

	// Severity tells whether the line was kept.
	Severity Severity `json:"-"`

	// SeverityText is the string form of Severity for JSON output.
	SeverityText string `json:"severity"`

	// Message is the human-readable explanation.
	Message string `json:"message"`

	// Value is the offending value, truncated by the report writers.
	Value string `json:"value,omitempty"`
}

// NewDiagnostic builds a diagnostic with SeverityText filled in.
func NewDiagnostic(line int, field string, code Code, severity Severity, message string) Diagnostic {
	return Diagnostic{
		Line:         line,
		Field:        field,
		Code:         code,
		Severity:     severity,
		SeverityText: severity.String(),
		Message:      message,
	}
}

// String renders the diagnostic the way it is printed on the console.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", d.Line)
	}
	if d.Field != "" {
		sb.WriteString(d.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	return sb.String()
}
