package field

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/miekg/dns"

	"github.com/nao1215/sectxt/internal/model"
)

var (
	// fingerprintPattern matches a v4 OpenPGP fingerprint.
	fingerprintPattern = regexp.MustCompile(`^[0-9A-Fa-f]{40}$`)

	// dnsOwnerPattern matches an OPENPGPKEY owner name (RFC 7929): the
	// SHA2-256 hash of the local part truncated to 28 octets, then the
	// _openpgpkey label, then the domain.
	dnsOwnerPattern = regexp.MustCompile(`^(?i)([0-9a-f]{56})\._openpgpkey\.(.+)$`)
)

func validateEncryption(ctx context.Context, line Line, env Env) Decision {
	switch {
	case hasScheme(line.Value, "https"):
		return validateKeyURL(ctx, line, env)
	case hasScheme(line.Value, "openpgp4fpr"):
		return validateFingerprint(line, env)
	case hasScheme(line.Value, "dns"):
		return validateDNS(line)
	default:
		return reject(model.CodeUnsupportedScheme,
			fmt.Sprintf("unsupported encryption scheme in %q (use https:, openpgp4fpr: or dns:)", line.Value))
	}
}

// validateKeyURL checks that the key document is reachable and, when a
// signing key is configured, that it mentions the key.
func validateKeyURL(ctx context.Context, line Line, env Env) Decision {
	d := checkURL(ctx, line, env)
	verifier := env.verifier()
	if !d.Kept() || !verifier.Configured() {
		return d
	}
	for _, n := range d.Notes {
		if n.Code == model.CodeNotChecked {
			return d
		}
	}

	body, err := env.fetcher().FetchBody(ctx, line.Value)
	if err != nil {
		return d.withWarning(model.CodeFingerprintMismatch,
			fmt.Sprintf("could not read key document %s: %v", line.Value, err))
	}
	if !verifier.MatchesDocument(body) {
		return d.withWarning(model.CodeFingerprintMismatch,
			fmt.Sprintf("key document %s does not contain fingerprint %s", line.Value, verifier.Fingerprint()))
	}
	return d
}

func validateFingerprint(line Line, env Env) Decision {
	fpr := line.Value[len("openpgp4fpr:"):]
	if !fingerprintPattern.MatchString(fpr) {
		return reject(model.CodeInvalidFingerprint,
			fmt.Sprintf("fingerprint must be %d hexadecimal characters, got %q", model.FingerprintLength, fpr))
	}

	d := accept(line.Text)
	if verifier := env.verifier(); !verifier.MatchesFingerprint(fpr) {
		return d.withWarning(model.CodeFingerprintMismatch,
			fmt.Sprintf("fingerprint %s does not match signing key %s", fpr, verifier.Fingerprint()))
	}
	return d
}

// validateDNS checks a dns: URI (RFC 4501) naming an OPENPGPKEY record.
// The record itself is never looked up.
func validateDNS(line Line) Decision {
	rest := line.Value[len("dns:"):]
	name, query, _ := strings.Cut(rest, "?")

	m := dnsOwnerPattern.FindStringSubmatch(name)
	if m == nil {
		return reject(model.CodeInvalidDNS,
			fmt.Sprintf("expected 56 hexadecimal characters followed by ._openpgpkey.<domain>, got %q", name))
	}
	if labels, ok := dns.IsDomainName(m[2]); !ok || labels < 2 {
		return reject(model.CodeInvalidDNS, fmt.Sprintf("invalid domain %q", m[2]))
	}

	if query == "" {
		return accept(line.Text)
	}
	for _, param := range strings.Split(query, ";") {
		key, value, _ := strings.Cut(param, "=")
		switch strings.ToLower(key) {
		case "type":
			if dns.StringToType[strings.ToUpper(value)] != dns.TypeOPENPGPKEY {
				return reject(model.CodeInvalidDNS, fmt.Sprintf("record type must be OPENPGPKEY, got %q", value))
			}
		case "class":
			if dns.StringToClass[strings.ToUpper(value)] != dns.ClassINET {
				return reject(model.CodeInvalidDNS, fmt.Sprintf("record class must be IN, got %q", value))
			}
		default:
			return reject(model.CodeInvalidDNS, fmt.Sprintf("unknown dns: parameter %q", key))
		}
	}
	return accept(line.Text)
}
