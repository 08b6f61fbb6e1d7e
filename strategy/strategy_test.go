package strategy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/weiihann/dispatchbench/client"
	"github.com/weiihann/dispatchbench/client/clienttest"
	"github.com/weiihann/dispatchbench/harness"
	"github.com/weiihann/dispatchbench/workload"
)

func queries(t *testing.T, n int) []int {
	t.Helper()

	q, err := workload.Queries(n)
	if err != nil {
		t.Fatalf("Queries(%d) failed: %v", n, err)
	}

	return q
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"threads_recreate", ThreadsRecreate},
		{"Threads-Reuse", ThreadsReuse},
		{"THREADS_MAP", ThreadsMap},
		{"async-for", AsyncFor},
		{"async-map", AsyncMap},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", tt.input, err)

			continue
		}

		if got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	for _, name := range []string{"", "threads", "async map", "sync_for"} {
		if _, err := ParseKind(name); !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("ParseKind(%q) err = %v, want ErrUnknownStrategy",
				name, err)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("Kind(42) = %q, want Kind(42)", got)
	}

	if got := len(Kinds()); got != 5 {
		t.Errorf("len(Kinds()) = %d, want 5", got)
	}
}

func TestLookupBindings(t *testing.T) {
	tests := []struct {
		kind    Kind
		opts    Options
		impl    Kind
		mode    harness.Mode
		chunked bool
	}{
		{ThreadsRecreate, Options{}, ThreadsRecreate, harness.Blocking, true},
		{ThreadsReuse, Options{}, ThreadsReuse, harness.Blocking, true},
		{ThreadsMap, Options{}, ThreadsMap, harness.Blocking, false},
		{AsyncFor, Options{}, AsyncFor, harness.Suspending, false},
		// async_map has always dispatched to the async_for routine.
		{AsyncMap, Options{}, AsyncFor, harness.Suspending, false},
		{AsyncMap, Options{NativeAsyncMap: true}, AsyncMap, harness.Suspending, false},
	}

	for _, tt := range tests {
		s, err := Lookup(tt.kind, tt.opts)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", tt.kind, err)
		}

		if s.Kind != tt.kind {
			t.Errorf("%s: kind = %s", tt.kind, s.Kind)
		}
		if s.Impl != tt.impl {
			t.Errorf("%s (native=%v): impl = %s, want %s",
				tt.kind, tt.opts.NativeAsyncMap, s.Impl, tt.impl)
		}
		if s.Mode != tt.mode {
			t.Errorf("%s: mode = %s, want %s", tt.kind, s.Mode, tt.mode)
		}
		if s.Chunked != tt.chunked {
			t.Errorf("%s: chunked = %v, want %v", tt.kind, s.Chunked, tt.chunked)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup(Kind(99), Options{}); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("err = %v, want ErrUnknownStrategy", err)
	}
}

func allStrategies(t *testing.T) []Strategy {
	t.Helper()

	var all []Strategy

	for _, kind := range Kinds() {
		s, err := Lookup(kind, Options{NativeAsyncMap: true})
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", kind, err)
		}

		all = append(all, s)
	}

	return all
}

func TestExecuteIssuesEveryQuery(t *testing.T) {
	const n = 23

	for _, s := range allStrategies(t) {
		t.Run(s.Kind.String(), func(t *testing.T) {
			srv := clienttest.NewServer(t)

			err := s.Execute(context.Background(),
				client.Config{URL: srv.URL()}, queries(t, n), 5)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if got, want := srv.Seen(), queries(t, n); !slices.Equal(got, want) {
				t.Errorf("server saw %v, want %v", got, want)
			}
		})
	}
}

func TestExecuteEmpty(t *testing.T) {
	for _, s := range allStrategies(t) {
		t.Run(s.Kind.String(), func(t *testing.T) {
			srv := clienttest.NewServer(t)

			err := s.Execute(context.Background(),
				client.Config{URL: srv.URL()}, nil, 5)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if got := len(srv.Seen()); got != 0 {
				t.Errorf("server saw %d requests, want 0", got)
			}
		})
	}
}

func TestChunkedBound(t *testing.T) {
	const chunk = 3

	for _, kind := range []Kind{ThreadsRecreate, ThreadsReuse} {
		t.Run(kind.String(), func(t *testing.T) {
			srv := clienttest.NewServer(t,
				clienttest.WithDelay(5*time.Millisecond))

			s, err := Lookup(kind, Options{})
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}

			err = s.Execute(context.Background(),
				client.Config{URL: srv.URL()}, queries(t, 20), chunk)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if got := srv.MaxInFlight(); got < 1 || got > chunk {
				t.Errorf("max in flight = %d, want 1..%d", got, chunk)
			}
		})
	}
}

func TestUnchunkedFanOut(t *testing.T) {
	const n = 10

	for _, kind := range []Kind{ThreadsMap, AsyncFor, AsyncMap} {
		t.Run(kind.String(), func(t *testing.T) {
			srv := clienttest.NewServer(t,
				clienttest.WithGate(n, 5*time.Second))

			s, err := Lookup(kind, Options{NativeAsyncMap: true})
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}

			// A chunk size of 1 is ignored by unchunked routines.
			err = s.Execute(context.Background(),
				client.Config{URL: srv.URL()}, queries(t, n), 1)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if got := srv.MaxInFlight(); got != n {
				t.Errorf("max in flight = %d, want %d", got, n)
			}
		})
	}
}

func TestExecuteUnreachable(t *testing.T) {
	url := clienttest.UnreachableURL(t)

	for _, s := range allStrategies(t) {
		t.Run(s.Kind.String(), func(t *testing.T) {
			err := s.Execute(context.Background(),
				client.Config{URL: url, Timeout: time.Second}, queries(t, 4), 2)
			if !errors.Is(err, client.ErrRequestFailed) {
				t.Errorf("err = %v, want ErrRequestFailed", err)
			}
		})
	}
}

func TestChunkedZeroChunk(t *testing.T) {
	for _, run := range []Func{RunThreadsRecreate, RunThreadsReuse} {
		err := run(context.Background(), &recorder{}, queries(t, 3), 0)
		if !errors.Is(err, workload.ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	}
}

// recorder is an in-process Requester that logs call boundaries.
type recorder struct {
	mu     sync.Mutex
	events []event
	fail   map[int]error
	delay  time.Duration
}

type event struct {
	number int
	done   bool
}

func (r *recorder) Get(_ context.Context, number int) (int, error) {
	r.log(event{number: number})
	time.Sleep(r.delay)
	r.log(event{number: number, done: true})

	if err := r.fail[number]; err != nil {
		return 0, err
	}

	return number * 2, nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) log(e event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func TestChunkBarrier(t *testing.T) {
	const chunk = 2

	for _, run := range map[string]Func{
		"threads_recreate": RunThreadsRecreate,
		"threads_reuse":    RunThreadsReuse,
	} {
		r := &recorder{delay: time.Millisecond}

		if err := run(context.Background(), r, queries(t, 7), chunk); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		// Every start must come after all completions of earlier chunks.
		completed := map[int]bool{}

		for _, e := range r.events {
			if e.done {
				completed[e.number] = true

				continue
			}

			for prev := 0; prev < e.number/chunk*chunk; prev++ {
				if !completed[prev] {
					t.Errorf("query %d started before %d completed",
						e.number, prev)
				}
			}
		}
	}
}

func TestRoutinesPropagateFailure(t *testing.T) {
	boom := errors.New("boom")

	routines := map[string]Func{
		"threads_recreate": RunThreadsRecreate,
		"threads_reuse":    RunThreadsReuse,
		"threads_map":      RunThreadsMap,
		"async_for":        RunAsyncFor,
		"async_map":        RunAsyncMap,
	}

	for name, run := range routines {
		t.Run(name, func(t *testing.T) {
			r := &recorder{fail: map[int]error{3: boom}}

			err := run(context.Background(), r, queries(t, 6), 2)
			if !errors.Is(err, boom) {
				t.Errorf("err = %v, want %v", err, boom)
			}
		})
	}
}

func TestRunDeadlineAgainstHungServer(t *testing.T) {
	for _, s := range allStrategies(t) {
		t.Run(s.Kind.String(), func(t *testing.T) {
			srv := clienttest.NewServer(t, clienttest.WithHang())

			var out strings.Builder

			runner := harness.NewRunner(s.Kind.String(), &out,
				slog.New(slog.NewTextHandler(io.Discard, nil)))

			start := time.Now()

			_, err := runner.Run(context.Background(),
				harness.RunConfig{Timeout: 200 * time.Millisecond}, s.Mode,
				func(ctx context.Context) error {
					return s.Execute(ctx, client.Config{URL: srv.URL()},
						queries(t, 6), 2)
				})
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("err = %v, want DeadlineExceeded", err)
			}

			if elapsed := time.Since(start); elapsed > 3*time.Second {
				t.Errorf("run took %s with a 200ms deadline", elapsed)
			}

			if strings.Contains(out.String(), "Elapsed time") {
				t.Errorf("failed run reported completion:\n%s", out.String())
			}
		})
	}
}
