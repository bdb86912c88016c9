package document

import (
	"strings"

	"github.com/nao1215/sectxt/internal/field"
)

// URLs returns the https URLs whose status the validators will ask for,
// and the subset whose body they may read (Encryption key documents).
// Both lists are in input order and may hold duplicates.
func URLs(raw []byte) (statusURLs, bodyURLs []string) {
	body, _ := Unwrap(raw)
	for i, text := range SplitLines(body) {
		line := field.Classify(i+1, text)
		if !line.Kind.IsField() || !isHTTPS(line.Value) {
			continue
		}
		switch {
		case line.Kind == field.KindContact, line.Kind.IsSimpleHTTPS():
			statusURLs = append(statusURLs, line.Value)
		case line.Kind == field.KindEncryption:
			statusURLs = append(statusURLs, line.Value)
			bodyURLs = append(bodyURLs, line.Value)
		}
	}
	return statusURLs, bodyURLs
}

func isHTTPS(value string) bool {
	const prefix = "https:"
	return len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix)
}
