package document

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/nao1215/sectxt/internal/crossref"
	"github.com/nao1215/sectxt/internal/expiry"
	"github.com/nao1215/sectxt/internal/field"
	"github.com/nao1215/sectxt/internal/model"
)

// runState is threaded through the fold. It only grows.
type runState struct {
	contactSeen   int
	expiresSeen   int
	languagesSeen int
	canonicalSeen int

	// out holds the accepted lines. pendingBlank defers a blank line
	// until a non-blank line follows, so blank runs collapse and the
	// output never ends with one.
	out          *bytebufferpool.ByteBuffer
	pendingBlank bool
	linesKept    int
}

func (s *runState) empty() bool {
	return s.out.Len() == 0
}

func (s *runState) writeBlank() {
	if !s.empty() {
		s.pendingBlank = true
	}
}

func (s *runState) writeLine(text string) {
	if s.pendingBlank {
		_ = s.out.WriteByte('\n') //nolint:errcheck // never fails
		s.linesKept++
		s.pendingBlank = false
	}
	_, _ = s.out.WriteString(text) //nolint:errcheck // never fails
	_ = s.out.WriteByte('\n')      //nolint:errcheck // never fails
	s.linesKept++
}

// ValidateAndFormat validates raw and returns the canonical document.
//
// Lines that fail validation are dropped and reported as error
// diagnostics; repaired lines are reported as warnings. The Expires field
// is always rewritten to the resolved expiration, or appended when
// missing. When no Contact survives, ErrMissingContact is returned
// together with a Result that carries the diagnostics but no Document.
//
// env.Expires is ignored and replaced with the resolved expiration. When
// env.Verifier is nil, one is built from cfg.SigningKey.
func ValidateAndFormat(ctx context.Context, raw []byte, cfg Config, env field.Env) (*model.Result, error) {
	if cfg.MaxAgeDays < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxAge, cfg.MaxAgeDays)
	}

	now := cfg.now()
	result := model.NewResult()
	result.Expires = expiry.Resolve(now, cfg.MaxAgeDays, cfg.keyExpiry())
	env.Expires = result.Expires
	if env.Verifier == nil {
		env.Verifier = crossref.New(cfg.SigningKey)
	}
	result.KeyFingerprint = env.Verifier.Fingerprint()

	body, wasSigned := Unwrap(raw)
	if wasSigned {
		result.Add(model.NewDiagnostic(0, "", model.CodeSignatureRemoved, model.SeverityInfo,
			"existing signature removed; the document must be signed again"))
	}

	state := &runState{out: bytebufferpool.Get()}
	defer bytebufferpool.Put(state.out)

	lines := SplitLines(body)
	result.LinesRead = len(lines)
	for i, text := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fold(ctx, state, result, field.Classify(i+1, text), env)
	}

	if err := finish(state, result, now, cfg); err != nil {
		return result, err
	}

	result.Document = state.out.String()
	result.LinesKept = state.linesKept
	return result, nil
}

// fold handles one line.
func fold(ctx context.Context, state *runState, result *model.Result, line field.Line, env field.Env) {
	switch line.Kind {
	case field.KindBlank:
		state.writeBlank()
		return
	case field.KindExpires:
		if state.expiresSeen > 0 {
			addDiagnostic(result, line, model.CodeDuplicateExpires, model.SeverityError,
				"duplicate Expires field removed")
			return
		}
		noteExpiresRewrite(result, line, env)
	case field.KindPreferredLanguages:
		if state.languagesSeen > 0 {
			addDiagnostic(result, line, model.CodeDuplicateLanguages, model.SeverityError,
				"duplicate Preferred-Languages field removed")
			return
		}
	}

	d := field.Validate(ctx, line, env)
	switch d.Verdict {
	case field.Reject:
		for _, n := range d.Notes {
			addDiagnostic(result, line, n.Code, model.SeverityError, n.Message)
		}
		return
	case field.Warn:
		for _, n := range d.Notes {
			addDiagnostic(result, line, n.Code, model.SeverityWarning, n.Message)
		}
	}

	state.writeLine(d.Output)
	switch line.Kind {
	case field.KindContact:
		state.contactSeen++
	case field.KindExpires:
		state.expiresSeen++
	case field.KindPreferredLanguages:
		state.languagesSeen++
	case field.KindCanonical:
		state.canonicalSeen++
	}
}

// noteExpiresRewrite records an advisory when the existing value differs
// from the resolved one.
func noteExpiresRewrite(result *model.Result, line field.Line, env field.Env) {
	old, err := expiry.Parse(line.Value)
	if err == nil && old.Equal(env.Expires) {
		return
	}
	addDiagnostic(result, line, model.CodeExpiresRewritten, model.SeverityInfo,
		fmt.Sprintf("Expires set to %s", expiry.Format(env.Expires)))
}

// finish applies the document-level checks after the scan.
func finish(state *runState, result *model.Result, now time.Time, cfg Config) error {
	if state.contactSeen == 0 {
		result.Add(model.NewDiagnostic(0, "", model.CodeMissingContact, model.SeverityError,
			"the document has no valid Contact field"))
		return ErrMissingContact
	}

	if state.expiresSeen == 0 {
		state.writeLine("Expires: " + expiry.Format(result.Expires))
		state.expiresSeen++
		result.Add(model.NewDiagnostic(0, "Expires", model.CodeExpiresSynthesized, model.SeverityInfo,
			fmt.Sprintf("Expires field added with %s", expiry.Format(result.Expires))))
	}

	if state.canonicalSeen == 0 {
		result.Add(model.NewDiagnostic(0, "Canonical", model.CodeMissingCanonical, model.SeverityInfo,
			"no Canonical field; consider adding the URL this file is served from"))
	}

	if key := cfg.keyExpiry(); key != nil {
		switch {
		case !key.After(now):
			result.Add(model.NewDiagnostic(0, "Expires", model.CodeKeyExpired, model.SeverityWarning,
				fmt.Sprintf("signing key expired at %s", expiry.Format(*key))))
		case expiry.BoundedByKey(now, cfg.MaxAgeDays, key):
			result.Add(model.NewDiagnostic(0, "Expires", model.CodeKeyExpiryBound, model.SeverityInfo,
				"Expires limited by the signing key's expiration"))
		}
	}
	return nil
}

func addDiagnostic(result *model.Result, line field.Line, code model.Code, severity model.Severity, message string) {
	d := model.NewDiagnostic(line.Number, line.Name, code, severity, message)
	d.Value = line.Value
	if !line.Kind.IsField() {
		d.Value = line.Text
	}
	result.Add(d)
}
