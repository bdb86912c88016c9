package tor

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// EmbeddedTor manages a Tor daemon started by tornago for the lifetime of
// one command (`sectxt check --tor`).
//
// Design decision: The daemon is started only on request. Most security.txt
// files reference no onion services, and bootstrapping takes between
// several seconds and a few minutes depending on the network.
//
// Note: Only the SOCKS port is used. The control port is opened by tornago
// but sectxt never talks to it.
type EmbeddedTor struct {
	// process is the running daemon, nil before Start and after Stop.
	process *tornago.TorProcess

	// socksAddr is the SOCKS5 address assigned by the OS at startup.
	socksAddr string

	// startupTimeout is the maximum time to wait for Tor to bootstrap.
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor instance.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		e.startupTimeout = timeout
	}
}

// NewEmbeddedTor creates a manager. Call Start to launch the daemon.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: 3 * time.Minute}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon on OS-assigned ports and blocks until it has
// bootstrapped or the startup timeout expired.
//
// tornago does not take a context, so cancellation is checked once the
// daemon is up. A cancelled start stops the daemon again and returns
// ctx.Err().
func (e *EmbeddedTor) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if ctx.Err() != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return ctx.Err()
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts the daemon down. It is safe to call on a stopped instance.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	return err
}

// SocksAddr returns the SOCKS5 address of the running daemon, or "".
// The format is "host:port" (e.g. "127.0.0.1:42715").
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// IsRunning reports whether the daemon was started and not stopped.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// NewClient returns a Client bound to the embedded daemon.
// It returns ErrNotRunning before Start or after Stop.
func (e *EmbeddedTor) NewClient(timeout time.Duration) (*Client, error) {
	if !e.IsRunning() {
		return nil, ErrNotRunning
	}
	return NewClient(e.socksAddr, timeout)
}
