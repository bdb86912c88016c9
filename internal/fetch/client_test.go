package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTLSServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	return server
}

// TestClientFetchStatus tests status checks against a local TLS server.
func TestClientFetchStatus(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/policy", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/policy", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/ua", func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != "sectxt-test" {
			w.WriteHeader(http.StatusForbidden)
		}
	})
	server := newTLSServer(t, mux)

	client := NewClient(WithHTTPClient(server.Client()), WithUserAgent("sectxt-test"))

	t.Run("200 is OK", func(t *testing.T) {
		t.Parallel()

		status, err := client.FetchStatus(context.Background(), server.URL+"/policy")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.OK() || status.Redirected {
			t.Errorf("unexpected status: %+v", status)
		}
	})

	t.Run("uppercase scheme without redirect is not redirected", func(t *testing.T) {
		t.Parallel()

		rawURL := "HTTPS" + strings.TrimPrefix(server.URL, "https") + "/policy"
		status, err := client.FetchStatus(context.Background(), rawURL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.OK() || status.Redirected {
			t.Errorf("expected plain 200, got %+v", status)
		}
	})

	t.Run("redirect is reported", func(t *testing.T) {
		t.Parallel()

		status, err := client.FetchStatus(context.Background(), server.URL+"/old")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.OK() || !status.Redirected {
			t.Errorf("expected redirected 200, got %+v", status)
		}
		if !strings.HasSuffix(status.FinalURL, "/policy") {
			t.Errorf("unexpected final URL %q", status.FinalURL)
		}
	})

	t.Run("404 is returned as status", func(t *testing.T) {
		t.Parallel()

		status, err := client.FetchStatus(context.Background(), server.URL+"/gone")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.OK() || status.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %+v", status)
		}
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		status, err := client.FetchStatus(context.Background(), server.URL+"/ua")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.OK() {
			t.Errorf("expected 200, got %d", status.Code)
		}
	})
}

// TestClientInsecureRedirect tests that https never downgrades to http.
func TestClientInsecureRedirect(t *testing.T) {
	t.Parallel()

	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(plain.Close)

	secure := newTLSServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, plain.URL, http.StatusFound)
	}))

	client := NewClient(WithHTTPClient(secure.Client()))
	_, err := client.FetchStatus(context.Background(), secure.URL)
	if !errors.Is(err, ErrInsecureRedirect) {
		t.Errorf("expected ErrInsecureRedirect, got %v", err)
	}
}

// TestClientFetchBody tests body retrieval.
func TestClientFetchBody(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/key.asc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := newTLSServer(t, mux)

	t.Run("reads body", func(t *testing.T) {
		t.Parallel()

		client := NewClient(WithHTTPClient(server.Client()))
		body, err := client.FetchBody(context.Background(), server.URL+"/key.asc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "0123456789" {
			t.Errorf("unexpected body %q", body)
		}
	})

	t.Run("truncates at max body size", func(t *testing.T) {
		t.Parallel()

		client := NewClient(WithHTTPClient(server.Client()), WithMaxBodySize(4))
		body, err := client.FetchBody(context.Background(), server.URL+"/key.asc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "0123" {
			t.Errorf("expected truncated body, got %q", body)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		t.Parallel()

		client := NewClient(WithHTTPClient(server.Client()))
		_, err := client.FetchBody(context.Background(), server.URL+"/missing")
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})
}

// TestClientOnionWithoutTor tests that onion URLs never leak to the clearnet.
func TestClientOnionWithoutTor(t *testing.T) {
	t.Parallel()

	client := NewClient()
	_, err := client.FetchStatus(context.Background(), "https://example.onion/security.txt")
	if !errors.Is(err, ErrOnionWithoutTor) {
		t.Errorf("expected ErrOnionWithoutTor, got %v", err)
	}
}

// TestOffline tests the offline fetcher.
func TestOffline(t *testing.T) {
	t.Parallel()

	var f Fetcher = Offline{}
	if _, err := f.FetchStatus(context.Background(), "https://example.com"); !errors.Is(err, ErrOffline) {
		t.Errorf("expected ErrOffline, got %v", err)
	}
	if _, err := f.FetchBody(context.Background(), "https://example.com"); !errors.Is(err, ErrOffline) {
		t.Errorf("expected ErrOffline, got %v", err)
	}
}
