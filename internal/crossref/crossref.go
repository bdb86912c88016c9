// Package crossref compares Encryption references against the signing key.
//
// A mismatch never invalidates a line: a security.txt may legitimately
// point at a different encryption key than the one signing the file. The
// result is only ever used to emit a warning.
package crossref

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/openpgp" //nolint:staticcheck // only key parsing, no deprecated crypto operations
	"golang.org/x/crypto/openpgp/packet"

	"github.com/nao1215/sectxt/internal/model"
)

// Verifier holds the fingerprint of the configured signing key.
// The zero value and a nil *Verifier match everything.
type Verifier struct {
	fingerprint string
}

// New returns a Verifier for key. A nil key yields a Verifier that
// accepts every candidate.
func New(key *model.SigningKey) *Verifier {
	if key == nil {
		return &Verifier{}
	}
	return &Verifier{fingerprint: model.CanonicalFingerprint(key.Fingerprint)}
}

// Configured reports whether a signing key is set.
func (v *Verifier) Configured() bool {
	return v != nil && v.fingerprint != ""
}

// Fingerprint returns the canonical signing key fingerprint, or "".
func (v *Verifier) Fingerprint() string {
	if v == nil {
		return ""
	}
	return v.fingerprint
}

// MatchesFingerprint compares an inline fingerprint, case-insensitively.
func (v *Verifier) MatchesFingerprint(candidate string) bool {
	if !v.Configured() {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(candidate), v.fingerprint)
}

// MatchesDocument reports whether a fetched key document contains the
// signing key. OpenPGP key rings (armored or binary) are parsed and every
// primary and subkey fingerprint is compared. Documents that do not parse
// (HTML pages, keys using algorithms the parser does not know) are
// searched for the fingerprint text instead.
func (v *Verifier) MatchesDocument(body []byte) bool {
	if !v.Configured() {
		return true
	}

	if fps, ok := ExtractFingerprints(body); ok {
		for _, fp := range fps {
			if fp == v.fingerprint {
				return true
			}
		}
		return false
	}
	return strings.Contains(squash(body), v.fingerprint)
}

// ExtractFingerprints parses body as an OpenPGP key ring and returns the
// uppercase fingerprints of all keys in it. ok is false when body is not a
// key ring the parser understands.
func ExtractFingerprints(body []byte) (fingerprints []string, ok bool) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(body))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(body))
		if err != nil {
			return nil, false
		}
	}

	for _, e := range entities {
		fingerprints = append(fingerprints, hexFingerprint(e.PrimaryKey))
		for _, sub := range e.Subkeys {
			fingerprints = append(fingerprints, hexFingerprint(sub.PublicKey))
		}
	}
	return fingerprints, len(fingerprints) > 0
}

func hexFingerprint(pk *packet.PublicKey) string {
	return fmt.Sprintf("%X", pk.Fingerprint[:])
}

// squash uppercases s and drops whitespace and colons so that grouped
// fingerprints ("ABCD EF01 ...") become searchable.
func squash(body []byte) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ':' {
			return -1
		}
		return unicode.ToUpper(r)
	}, string(body))
}
