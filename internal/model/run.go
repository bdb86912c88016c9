package model

import "time"

// Run tracks one input file through the check and sign pipeline.
// Each pipeline step reads from and writes to the same Run.
type Run struct {
	// ID is assigned when the run is persisted.
	ID string `json:"id,omitempty"`

	// Source is the input path, or "-" for stdin.
	Source string `json:"source"`

	// StartedAt is when processing began.
	StartedAt time.Time `json:"started_at"`

	// Raw is the document as read. Not serialized.
	Raw []byte `json:"-"`

	// WasSigned is true if the input was a clearsigned message.
	WasSigned bool `json:"was_signed"`

	// Result holds the validation outcome once the validate step ran.
	Result *Result `json:"result,omitempty"`

	// Signed is the clearsigned output produced by the sign step.
	Signed []byte `json:"-"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// Error holds the last step error; ErrorMessage is its text for JSON.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a run for the given source.
func NewRun(source string) *Run {
	return &Run{
		Source:         source,
		StartedAt:      time.Now().UTC(),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether any step recorded an error.
func (r *Run) Failed() bool {
	return r.Error != nil
}
