package model

// Severity classifies a diagnostic.
//
// Design decision: We use iota-based constants for cheap comparisons and a
// String method for human-readable output, the same way findings are ranked
// in the report writers.
type Severity int

const (
	// SeverityInfo marks advisory notes that never change the output.
	// Example: the document carries no Canonical field.
	SeverityInfo Severity = iota

	// SeverityWarning marks lines that were kept but deserve attention.
	// Examples: a repaired tel: URI, a redirect, a fingerprint mismatch.
	SeverityWarning

	// SeverityError marks lines that were dropped from the output, or a
	// run that produced no document at all.
	SeverityError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity is the inverse of String. Unknown text yields SeverityInfo.
func ParseSeverity(text string) Severity {
	switch text {
	case "WARNING":
		return SeverityWarning
	case "ERROR":
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Code identifies the kind of problem a diagnostic reports.
type Code string

// Diagnostic codes emitted by the validators and the assembler.
const (
	CodeInvalidLine         Code = "invalid_line"
	CodeDuplicateExpires    Code = "duplicate_expires"
	CodeDuplicateLanguages  Code = "duplicate_languages"
	CodeInvalidLanguages    Code = "invalid_languages"
	CodeInvalidMailto       Code = "invalid_mailto"
	CodeInvalidTel          Code = "invalid_tel"
	CodeTelLocalNumber      Code = "tel_local_number"
	CodeTelRepaired         Code = "tel_repaired"
	CodeUnsupportedScheme   Code = "unsupported_scheme"
	CodeNotHTTPS            Code = "not_https"
	CodeFetchFailed         Code = "fetch_failed"
	CodeRedirected          Code = "redirected"
	CodeNotChecked          Code = "not_checked"
	CodeInvalidFingerprint  Code = "invalid_fingerprint"
	CodeInvalidDNS          Code = "invalid_dns"
	CodeFingerprintMismatch Code = "fingerprint_mismatch"
	CodeExpiresSynthesized  Code = "expires_synthesized"
	CodeExpiresRewritten    Code = "expires_rewritten"
	CodeMissingCanonical    Code = "missing_canonical"
	CodeMissingContact      Code = "missing_contact"
	CodeKeyExpiryBound      Code = "key_expiry_bound"
	CodeKeyExpired          Code = "key_expired"
	CodeSignatureRemoved    Code = "signature_removed"
)

// recommendations maps diagnostic codes to remediation advice.
// Codes without advice are left out and yield an empty string.
var recommendations = map[Code]string{
	CodeInvalidLine:         "Remove the line or turn it into a comment with a leading '#'.",
	CodeDuplicateExpires:    "Keep a single Expires field; the first one is rewritten on every run.",
	CodeDuplicateLanguages:  "Merge all languages into a single Preferred-Languages field.",
	CodeInvalidLanguages:    "List language tags separated by commas, e.g. 'en, fr-ca'.",
	CodeInvalidMailto:       "Use a complete address such as 'mailto:security@example.com'.",
	CodeInvalidTel:          "Use a global number with digits and hyphens, e.g. 'tel:+1-201-555-0123'.",
	CodeTelLocalNumber:      "Local numbers with ';phone-context=' are not supported; use the global form.",
	CodeTelRepaired:         "Replace spaces in phone numbers with hyphens in the source file.",
	CodeUnsupportedScheme:   "Contact accepts mailto:, tel: and https:; Encryption accepts https:, openpgp4fpr: and dns:.",
	CodeNotHTTPS:            "Serve the referenced resource over https://.",
	CodeFetchFailed:         "Make sure the URL is reachable and answers 200 OK.",
	CodeRedirected:          "Point the field at the final location to avoid the redirect.",
	CodeNotChecked:          "Run without --offline to verify the URL.",
	CodeInvalidFingerprint:  "An openpgp4fpr: URI carries exactly 40 hexadecimal characters.",
	CodeInvalidDNS:          "Use 'dns:<56 hex>._openpgpkey.<domain>?type=OPENPGPKEY'.",
	CodeFingerprintMismatch: "Reference the key that signs the file, or sign with the referenced key.",
	CodeMissingCanonical:    "Add a Canonical field with the URL this file is served from.",
	CodeMissingContact:      "Add at least one Contact field.",
	CodeKeyExpired:          "Extend the signing key's expiration or choose another key.",
	CodeSignatureRemoved:    "Re-sign the document with 'sectxt sign'.",
}

// Recommendation returns the remediation advice for a code, or "" when the
// code has none.
func Recommendation(code Code) string {
	return recommendations[code]
}
