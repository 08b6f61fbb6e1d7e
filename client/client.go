// Package client issues single multiply requests against the benchmark
// server. Two variants share the Requester contract: Blocking occupies the
// calling goroutine's thread for the whole round trip through net/http,
// Suspending goes through fasthttp and is meant to be fanned out as
// goroutines that park on the netpoller while waiting.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrRequestFailed wraps every network, status or decoding failure.
var ErrRequestFailed = errors.New("request failed")

// DefaultMaxConns bounds the connection pool of both variants.
const DefaultMaxConns = 100

// Requester performs one multiply call. Implementations are safe for
// concurrent use and hold a single connection pool for their lifetime.
type Requester interface {
	Get(ctx context.Context, number int) (int, error)
	Close() error
}

// Config holds the parameters shared by both client variants.
type Config struct {
	// URL of the multiply route, without a query string.
	URL string
	// Timeout bounds each request. Zero waits forever.
	Timeout time.Duration
	// MaxConns caps pooled connections to the server.
	MaxConns int
}

func (c Config) maxConns() int {
	if c.MaxConns > 0 {
		return c.MaxConns
	}

	return DefaultMaxConns
}

type response struct {
	Result *int `json:"result"`
}

func requestURL(base string, number int) string {
	return base + "?number=" + strconv.Itoa(number)
}

func decode(number int, body []byte) (int, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: decode response for %d: %w",
			ErrRequestFailed, number, err)
	}

	if resp.Result == nil {
		return 0, fmt.Errorf("%w: response for %d has no result field",
			ErrRequestFailed, number)
	}

	return *resp.Result, nil
}

func checkStatus(number, code int) error {
	if code < 200 || code > 299 {
		return fmt.Errorf("%w: get %d: unexpected status %d",
			ErrRequestFailed, number, code)
	}

	return nil
}
