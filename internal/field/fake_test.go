package field

import (
	"context"
	"errors"

	"github.com/nao1215/sectxt/internal/fetch"
)

// fakeFetcher answers from fixed maps. Unknown URLs fail.
type fakeFetcher struct {
	statuses map[string]fetch.Status
	bodies   map[string][]byte
}

func (f fakeFetcher) FetchStatus(_ context.Context, url string) (fetch.Status, error) {
	if s, ok := f.statuses[url]; ok {
		return s, nil
	}
	return fetch.Status{}, errors.New("connection refused")
}

func (f fakeFetcher) FetchBody(_ context.Context, url string) ([]byte, error) {
	if b, ok := f.bodies[url]; ok {
		return b, nil
	}
	return nil, fetch.ErrUnexpectedStatus
}

func okStatus(url string) fetch.Status {
	return fetch.Status{Code: 200, FinalURL: url}
}
