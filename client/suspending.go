package client

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// connWaitTimeout is how long a request queues for a free connection when
// no request timeout is configured.
const connWaitTimeout = time.Hour

// Suspending is a Requester backed by one shared fasthttp client.
type Suspending struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewSuspending creates a Suspending client. Requests beyond cfg.MaxConns
// wait for a pooled connection instead of failing.
func NewSuspending(cfg Config) *Suspending {
	wait := connWaitTimeout
	if cfg.Timeout > 0 {
		wait = cfg.Timeout
	}

	return &Suspending{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		client: &fasthttp.Client{
			Name:               "dispatchbench",
			MaxConnsPerHost:    cfg.maxConns(),
			MaxConnWaitTimeout: wait,
			ReadTimeout:        cfg.Timeout,
			WriteTimeout:       cfg.Timeout,
		},
	}
}

// Get sends number and returns the result field of the response. The call
// fails as soon as ctx is done; the connection is given up at the earlier
// of the ctx deadline and the request timeout.
func (s *Suspending) Get(ctx context.Context, number int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: get %d: %w", ErrRequestFailed, number, err)
	}

	done := make(chan outcome, 1)

	// The goroutine owns req and resp so they outlive an early return.
	go func() {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)

		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(requestURL(s.url, number))
		req.Header.SetMethod(fasthttp.MethodGet)

		value, err := s.do(ctx, number, req, resp)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && ctx.Err() != nil {
			return 0, fmt.Errorf("%w: get %d: %w",
				ErrRequestFailed, number, ctx.Err())
		}

		return out.value, out.err
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: get %d: %w",
			ErrRequestFailed, number, ctx.Err())
	}
}

type outcome struct {
	value int
	err   error
}

func (s *Suspending) do(
	ctx context.Context,
	number int,
	req *fasthttp.Request,
	resp *fasthttp.Response,
) (int, error) {
	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}

	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	var err error
	if deadline.IsZero() {
		err = s.client.Do(req, resp)
	} else {
		err = s.client.DoDeadline(req, resp, deadline)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: get %d: %w", ErrRequestFailed, number, err)
	}

	if err := checkStatus(number, resp.StatusCode()); err != nil {
		return 0, err
	}

	return decode(number, resp.Body())
}

// Close drops the idle connections held by the pool.
func (s *Suspending) Close() error {
	s.client.CloseIdleConnections()

	return nil
}
