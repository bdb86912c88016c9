package fetch

import "errors"

var (
	// ErrUnexpectedStatus is returned by FetchBody for any status other than 200.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInsecureRedirect is returned when an https URL redirects to plain http.
	ErrInsecureRedirect = errors.New("redirect from https to http")

	// ErrTooManyRedirects is returned after maxRedirects hops.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrOnionWithoutTor is returned for .onion URLs when no Tor client is configured.
	ErrOnionWithoutTor = errors.New("onion URL requires Tor (use --tor or --tor-proxy)")

	// ErrOffline is returned by the Offline fetcher for every request.
	ErrOffline = errors.New("network checks disabled")
)
