package field

// Kind is the classification of a line.
type Kind int

// Line kinds. The field kinds follow RFC 9116 section 2.5.
const (
	KindInvalid Kind = iota
	KindBlank
	KindComment
	KindAcknowledgments
	KindCanonical
	KindContact
	KindEncryption
	KindExpires
	KindHiring
	KindPolicy
	KindPreferredLanguages
)

// fieldNames maps field kinds to their canonical spelling.
var fieldNames = map[Kind]string{
	KindAcknowledgments:    "Acknowledgments",
	KindCanonical:          "Canonical",
	KindContact:            "Contact",
	KindEncryption:         "Encryption",
	KindExpires:            "Expires",
	KindHiring:             "Hiring",
	KindPolicy:             "Policy",
	KindPreferredLanguages: "Preferred-Languages",
}

// String returns the canonical field name, or a description for the
// non-field kinds.
func (k Kind) String() string {
	if name, ok := fieldNames[k]; ok {
		return name
	}
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	default:
		return "invalid"
	}
}

// IsField reports whether k is one of the recognized fields.
func (k Kind) IsField() bool {
	_, ok := fieldNames[k]
	return ok
}

// IsSimpleHTTPS reports whether k is a field whose only rule is "an https
// URL that can be fetched".
func (k Kind) IsSimpleHTTPS() bool {
	switch k {
	case KindAcknowledgments, KindCanonical, KindHiring, KindPolicy:
		return true
	default:
		return false
	}
}
