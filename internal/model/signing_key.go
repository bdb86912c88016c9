package model

import (
	"strings"
	"time"
)

// FingerprintLength is the number of hex characters in a v4 OpenPGP fingerprint.
const FingerprintLength = 40

// SigningKey identifies the key that is going to sign the document.
// It is resolved once per run and never modified afterwards.
type SigningKey struct {
	// Fingerprint is the 40 character uppercase hex fingerprint.
	Fingerprint string `json:"fingerprint"`

	// ExpiresAt is the key expiration. Nil means the key never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CanonicalFingerprint uppercases a fingerprint and strips the spaces and
// colons people paste from gpg output.
func CanonicalFingerprint(s string) string {
	r := strings.NewReplacer(" ", "", ":", "", "\t", "")
	return strings.ToUpper(r.Replace(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")))
}
