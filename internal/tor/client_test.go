package tor

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 30*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q", client.ProxyAddress())
		}
	})

	invalid := []string{"", "127.0.0.1", ":9050", "127.0.0.1:0", "127.0.0.1:70000", "127.0.0.1:abc"}
	for _, addr := range invalid {
		t.Run("rejects "+addr, func(t *testing.T) {
			t.Parallel()

			_, err := NewClient(addr, time.Second)
			if !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
			}
		})
	}
}

// fakeProxy accepts one connection, reads the greeting and writes reply.
func fakeProxy(t *testing.T, reply []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		_, _ = conn.Write(reply)
	}()

	return ln.Addr().String()
}

// TestCheckConnection tests the SOCKS5 greeting check.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("accepts SOCKS5 without auth", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(fakeProxy(t, []byte{0x05, 0x00}), time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := client.CheckConnection(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("rejects proxy requiring auth", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(fakeProxy(t, []byte{0x05, 0xFF}), time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := client.CheckConnection(context.Background()); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("rejects non SOCKS server", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(fakeProxy(t, []byte("HT")), time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := client.CheckConnection(context.Background()); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("unreachable proxy", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := client.CheckConnection(context.Background()); !errors.Is(err, ErrProxyUnreachable) {
			t.Errorf("expected ErrProxyUnreachable, got %v", err)
		}
	})
}

// TestNewHTTPClient tests the Tor HTTP client configuration.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hc := client.NewHTTPClient()
	if hc.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", hc.Timeout)
	}
	if hc.Transport == nil {
		t.Error("expected a custom transport")
	}
}

// TestEmbeddedTor tests the manager without starting a daemon.
func TestEmbeddedTor(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor(WithStartupTimeout(time.Minute))
	if e.startupTimeout != time.Minute {
		t.Errorf("expected 1m startup timeout, got %v", e.startupTimeout)
	}
	if e.IsRunning() {
		t.Error("new manager must not be running")
	}
	if err := e.Stop(); err != nil {
		t.Errorf("Stop on stopped manager: %v", err)
	}
	if _, err := e.NewClient(time.Second); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}
