package tor

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but does not speak SOCKS5
	// without authentication.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy without authentication")

	// ErrProxyUnreachable is returned when no TCP connection can be made to the proxy.
	ErrProxyUnreachable = errors.New("cannot connect to Tor proxy")

	// ErrNotRunning is returned when a client is requested from a stopped embedded daemon.
	ErrNotRunning = errors.New("embedded Tor daemon is not running")
)
