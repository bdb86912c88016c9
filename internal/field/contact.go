package field

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/nao1215/sectxt/internal/model"
)

// mailtoPattern matches "mailto:local@domain.tld". The TLD is either 2 to 20
// letters or an "xn--" punycode label, verified separately.
var mailtoPattern = regexp.MustCompile(`^(?i)mailto:[[:alnum:]._%+-]+@[[:alnum:].-]+\.([[:alpha:]]{2,20}|xn--[[:alnum:]-]+)$`)

// telPattern matches a repaired telephone number.
var telPattern = regexp.MustCompile(`^\+?[0-9-]+$`)

func validateContact(ctx context.Context, line Line, env Env) Decision {
	switch {
	case hasScheme(line.Value, "mailto"):
		return validateMailto(line)
	case hasScheme(line.Value, "tel"):
		return validateTel(line)
	case hasScheme(line.Value, "https"):
		return checkURL(ctx, line, env)
	default:
		return reject(model.CodeUnsupportedScheme,
			fmt.Sprintf("unsupported contact scheme in %q (use mailto:, tel: or https:)", line.Value))
	}
}

func validateMailto(line Line) Decision {
	m := mailtoPattern.FindStringSubmatch(line.Value)
	if m == nil {
		return reject(model.CodeInvalidMailto, fmt.Sprintf("malformed email address %q", line.Value))
	}
	if tld := strings.ToLower(m[1]); strings.HasPrefix(tld, "xn--") {
		if _, err := idna.Punycode.ToUnicode(tld); err != nil {
			return reject(model.CodeInvalidMailto, fmt.Sprintf("invalid punycode top-level domain %q", tld))
		}
	}
	return accept(line.Text)
}

func validateTel(line Line) Decision {
	number := strings.TrimSpace(line.Value[len("tel:"):])
	if strings.Contains(strings.ToLower(number), ";phone-context=") {
		return reject(model.CodeTelLocalNumber, "local numbers with phone-context are not allowed")
	}

	repaired := strings.Join(strings.Fields(number), "-")
	if !telPattern.MatchString(repaired) || !strings.ContainsAny(repaired, "0123456789") {
		return reject(model.CodeInvalidTel, fmt.Sprintf("invalid telephone number %q", number))
	}

	value := line.Value[:len("tel:")] + repaired
	if repaired != number {
		return accept(line.Render(value)).withWarning(model.CodeTelRepaired,
			fmt.Sprintf("telephone number rewritten to %s", repaired))
	}
	return accept(line.Text)
}
