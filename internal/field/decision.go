package field

import "github.com/nao1215/sectxt/internal/model"

// Verdict is what happens to a line.
type Verdict int

const (
	// Accept keeps the line.
	Accept Verdict = iota
	// Warn keeps the (possibly rewritten) line and reports notes.
	Warn
	// Reject drops the line.
	Reject
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Warn:
		return "warn"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Note is a warning attached to a kept line, or the reason a line was dropped.
type Note struct {
	Code    model.Code
	Message string
}

// Decision is the outcome of validating one line.
type Decision struct {
	// Verdict tells whether the line is kept.
	Verdict Verdict

	// Output is the text to write when the line is kept.
	Output string

	// Notes explain a Warn or Reject verdict.
	Notes []Note
}

func accept(output string) Decision {
	return Decision{Verdict: Accept, Output: output}
}

func reject(code model.Code, message string) Decision {
	return Decision{Verdict: Reject, Notes: []Note{{Code: code, Message: message}}}
}

// withWarning returns d with a warning appended. Rejections are returned
// unchanged.
func (d Decision) withWarning(code model.Code, message string) Decision {
	if d.Verdict == Reject {
		return d
	}
	d.Verdict = Warn
	d.Notes = append(d.Notes, Note{Code: code, Message: message})
	return d
}

// Kept reports whether the line goes to the output.
func (d Decision) Kept() bool {
	return d.Verdict != Reject
}
