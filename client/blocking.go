package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Blocking is a Requester backed by one shared net/http client.
type Blocking struct {
	url       string
	http      *http.Client
	transport *http.Transport
}

// NewBlocking creates a Blocking client with a keep-alive pool sized to
// cfg.MaxConns.
func NewBlocking(cfg Config) *Blocking {
	conns := cfg.maxConns()

	transport := &http.Transport{
		MaxIdleConns:        conns,
		MaxIdleConnsPerHost: conns,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Blocking{
		url:       cfg.URL,
		transport: transport,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// Get sends number and returns the result field of the response.
func (b *Blocking) Get(ctx context.Context, number int) (int, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, requestURL(b.url, number), nil,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: build request for %d: %w",
			ErrRequestFailed, number, err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: get %d: %w", ErrRequestFailed, number, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read response for %d: %w",
			ErrRequestFailed, number, err)
	}

	if err := checkStatus(number, resp.StatusCode); err != nil {
		return 0, err
	}

	return decode(number, body)
}

// Close drops the idle connections held by the pool.
func (b *Blocking) Close() error {
	b.transport.CloseIdleConnections()

	return nil
}
