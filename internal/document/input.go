package document

import (
	"bytes"
	"strings"

	"golang.org/x/crypto/openpgp/clearsign" //nolint:staticcheck // only the cleartext framing is used
)

// Unwrap returns the cleartext of a clearsigned message and true, or raw
// unchanged and false. The signature is not verified.
func Unwrap(raw []byte) ([]byte, bool) {
	if !bytes.Contains(raw, []byte("-----BEGIN PGP SIGNED MESSAGE-----")) {
		return raw, false
	}
	block, _ := clearsign.Decode(raw)
	if block == nil {
		return raw, false
	}
	return block.Plaintext, true
}

// SplitLines normalizes CRLF and lone CR to LF and splits the input.
// A final newline does not produce an extra empty line.
func SplitLines(raw []byte) []string {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
