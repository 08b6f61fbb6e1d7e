// Package clienttest runs an in-process multiply server that records the
// requests it receives, for tests of the request client and strategies.
package clienttest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Server doubles the number query parameter and tracks concurrency.
type Server struct {
	srv *httptest.Server

	delay       time.Duration
	gate        int64
	gateTimeout time.Duration
	hang        chan struct{}

	mu   sync.Mutex
	seen []int

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	conns       atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithDelay holds every response for d.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithGate holds every request until n requests are in flight at once or
// timeout passes, whichever comes first.
func WithGate(n int, timeout time.Duration) Option {
	return func(s *Server) {
		s.gate = int64(n)
		s.gateTimeout = timeout
	}
}

// WithHang never answers until the test finishes.
func WithHang() Option {
	return func(s *Server) { s.hang = make(chan struct{}) }
}

// NewServer starts a Server that is shut down when t finishes.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /multiply", s.multiply)

	s.srv = httptest.NewUnstartedServer(mux)
	s.srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			s.conns.Add(1)
		}
	}
	s.srv.Start()
	t.Cleanup(s.srv.Close)

	if s.hang != nil {
		// Registered after Close so it runs first and unblocks handlers.
		t.Cleanup(func() { close(s.hang) })
	}

	return s
}

// UnreachableURL returns a multiply URL nothing listens on.
func UnreachableURL(t testing.TB) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/multiply"
	srv.Close()

	return url
}

// URL returns the multiply route of the server.
func (s *Server) URL() string {
	return s.srv.URL + "/multiply"
}

// Seen returns the numbers received so far, sorted ascending.
func (s *Server) Seen() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := slices.Clone(s.seen)
	slices.Sort(seen)

	return seen
}

// MaxInFlight returns the highest number of requests handled at once.
func (s *Server) MaxInFlight() int {
	return int(s.maxInFlight.Load())
}

// Conns returns how many connections clients have opened.
func (s *Server) Conns() int {
	return int(s.conns.Load())
}

func (s *Server) multiply(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.URL.Query().Get("number"))
	if err != nil {
		http.Error(w, "number must be an integer", http.StatusUnprocessableEntity)

		return
	}

	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	for {
		peak := s.maxInFlight.Load()
		if current <= peak || s.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	s.mu.Lock()
	s.seen = append(s.seen, number)
	s.mu.Unlock()

	if s.hang != nil {
		<-s.hang

		return
	}

	if s.gate > 0 {
		deadline := time.Now().Add(s.gateTimeout)
		for s.maxInFlight.Load() < s.gate && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"result": number * 2})
}
