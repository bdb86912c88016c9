package tor

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 handshake in CheckConnection.
// The check only greets the local proxy, so a short timeout is enough.
const checkProxyTimeout = 2 * time.Second

// Client dials through a Tor SOCKS5 proxy.
// It is used only for security.txt references whose host is a .onion
// address; every other URL goes through the direct client in fetch.
//
// Design decision: We only need HTTP(S) through Tor, so the client exposes
// an *http.Client and nothing else. Raw TCP connections and the control
// port are left out because no field of a security.txt points at them.
type Client struct {
	// proxyAddress is the SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer shared by every HTTP client built from
	// this Client.
	dialer proxy.Dialer

	// timeout is the request timeout of the HTTP clients built by
	// NewHTTPClient.
	timeout time.Duration
}

// NewClient creates a client for the SOCKS5 proxy at proxyAddress.
//
// The proxyAddress must be in "host:port" format (e.g. "127.0.0.1:9050").
// The address format is validated but the proxy is not contacted.
// Call CheckConnection to verify that it is running.
//
// Design decision: The constructor stays offline so that `sectxt check`
// can build a client for --tor-proxy even when the document has no onion
// references and Tor is not running.
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress checks for a non-empty host and a port in 1..65535.
// net.SplitHostPort also accepts bracketed IPv6 hosts such as "[::1]:9050".
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// CheckConnection performs a SOCKS5 greeting against the proxy and returns
// nil when it accepts unauthenticated clients.
//
// It returns ErrProxyUnreachable when nothing listens on the address and
// ErrProxyNotSOCKS5 when the listener does not answer like a SOCKS5 proxy.
func (c *Client) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProxyUnreachable, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyUnreachable, err)
	}

	// version 5, one method, "no authentication"
	if _, err := conn.Write([]byte{0x05, 0x01, 0x00}); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyUnreachable, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return ErrProxyNotSOCKS5
	}
	if resp[0] != 0x05 || resp[1] != 0x00 {
		return ErrProxyNotSOCKS5
	}
	return nil
}

// NewHTTPClient returns an HTTP client whose connections go through Tor.
// TLS certificates are verified: a security.txt reference served over
// https must present a valid certificate on onion services as well.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := c.dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return c.dialer.Dial(network, addr)
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		// Compressed sizes leak content over Tor circuits.
		DisableCompression: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}
}
