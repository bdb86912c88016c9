package fetch

import (
	"context"
	"net/http"
)

// Status is the outcome of a status check.
type Status struct {
	// Code is the HTTP status of the final response.
	Code int

	// Redirected is true when the final response came from another URL.
	Redirected bool

	// FinalURL is the URL of the final response.
	FinalURL string
}

// OK reports whether the final response was 200.
func (s Status) OK() bool {
	return s.Code == http.StatusOK
}

// Fetcher is implemented by Client, Offline and Cache.
type Fetcher interface {
	// FetchStatus requests url and reports the final status.
	FetchStatus(ctx context.Context, url string) (Status, error)

	// FetchBody requests url and returns the body of a 200 response.
	FetchBody(ctx context.Context, url string) ([]byte, error)
}

// Offline is a Fetcher that never touches the network.
type Offline struct{}

// FetchStatus always returns ErrOffline.
func (Offline) FetchStatus(context.Context, string) (Status, error) {
	return Status{}, ErrOffline
}

// FetchBody always returns ErrOffline.
func (Offline) FetchBody(context.Context, string) ([]byte, error) {
	return nil, ErrOffline
}
