package field

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sectxt/internal/crossref"
	"github.com/nao1215/sectxt/internal/expiry"
	"github.com/nao1215/sectxt/internal/fetch"
	"github.com/nao1215/sectxt/internal/model"
)

// Env carries the capabilities validators may consult.
type Env struct {
	// Fetcher answers URL status and body requests. Nil behaves like
	// fetch.Offline.
	Fetcher fetch.Fetcher

	// Verifier cross-checks fingerprints against the signing key.
	// Nil means no key is configured.
	Verifier *crossref.Verifier

	// Expires is the resolved expiration written into the Expires field.
	Expires time.Time
}

func (e Env) fetcher() fetch.Fetcher {
	if e.Fetcher == nil {
		return fetch.Offline{}
	}
	return e.Fetcher
}

func (e Env) verifier() *crossref.Verifier {
	if e.Verifier == nil {
		return crossref.New(nil)
	}
	return e.Verifier
}

// Validate decides what to do with a single classified line.
//
// Validate only looks at the line itself. Once-only fields are enforced
// by the caller, which must not pass a second Expires or
// Preferred-Languages line here. Blank lines are accepted as-is; whether
// they are written is also the caller's business.
func Validate(ctx context.Context, line Line, env Env) Decision {
	switch line.Kind {
	case KindBlank:
		return accept("")
	case KindComment:
		return accept(line.Text)
	case KindExpires:
		return accept(line.Render(expiry.Format(env.Expires)))
	case KindContact:
		return validateContact(ctx, line, env)
	case KindEncryption:
		return validateEncryption(ctx, line, env)
	case KindPreferredLanguages:
		return validateLanguages(line)
	case KindAcknowledgments, KindCanonical, KindHiring, KindPolicy:
		if !hasScheme(line.Value, "https") {
			return reject(model.CodeNotHTTPS, fmt.Sprintf("%s must be an https URL", line.Kind))
		}
		return checkURL(ctx, line, env)
	default:
		return reject(model.CodeInvalidLine, "unrecognized field or malformed line")
	}
}

// hasScheme reports whether value starts with "scheme:" in any case.
func hasScheme(value, scheme string) bool {
	prefix := scheme + ":"
	return len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix)
}

// checkURL validates an https URL and asks the fetcher whether it answers 200.
func checkURL(ctx context.Context, line Line, env Env) Decision {
	u, err := url.Parse(line.Value)
	if err != nil || !strings.EqualFold(u.Scheme, "https") || u.Host == "" {
		return reject(model.CodeNotHTTPS, fmt.Sprintf("malformed https URL %q", line.Value))
	}

	status, err := env.fetcher().FetchStatus(ctx, line.Value)
	switch {
	case errors.Is(err, fetch.ErrOffline):
		return accept(line.Text).withWarning(model.CodeNotChecked,
			fmt.Sprintf("%s was not checked (offline)", line.Value))
	case err != nil:
		return reject(model.CodeFetchFailed, fmt.Sprintf("fetching %s: %v", line.Value, err))
	case !status.OK():
		return reject(model.CodeFetchFailed, fmt.Sprintf("%s returned status %d", line.Value, status.Code))
	case status.Redirected:
		return accept(line.Text).withWarning(model.CodeRedirected,
			fmt.Sprintf("%s redirected to %s", line.Value, status.FinalURL))
	default:
		return accept(line.Text)
	}
}
