// Package strategy holds the dispatch strategies that drive the request
// client over a query sequence with different concurrency shapes, and the
// single table binding each strategy Kind to its routine.
package strategy

import (
	"context"
	"fmt"

	"github.com/weiihann/dispatchbench/client"
	"github.com/weiihann/dispatchbench/harness"
)

// Func drives r over every query. chunkSize is zero for routines that do
// not chunk.
type Func func(
	ctx context.Context,
	r client.Requester,
	queries []int,
	chunkSize int,
) error

type routine struct {
	mode    harness.Mode
	chunked bool
	run     Func
}

var routines = map[Kind]routine{
	ThreadsRecreate: {harness.Blocking, true, RunThreadsRecreate},
	ThreadsReuse:    {harness.Blocking, true, RunThreadsReuse},
	ThreadsMap:      {harness.Blocking, false, RunThreadsMap},
	AsyncFor:        {harness.Suspending, false, RunAsyncFor},
	AsyncMap:        {harness.Suspending, false, RunAsyncMap},
}

// Options adjusts how kinds are bound to routines.
type Options struct {
	// NativeAsyncMap binds AsyncMap to its own map-based routine. By
	// default AsyncMap runs the AsyncFor routine, as it always has.
	NativeAsyncMap bool
}

func bind(kind Kind, opts Options) Kind {
	if kind == AsyncMap && !opts.NativeAsyncMap {
		return AsyncFor
	}

	return kind
}

// Strategy is a Kind bound to the routine that runs for it.
type Strategy struct {
	Kind    Kind
	Impl    Kind
	Mode    harness.Mode
	Chunked bool
	Run     Func
}

// Lookup resolves kind to its bound Strategy.
func Lookup(kind Kind, opts Options) (Strategy, error) {
	impl := bind(kind, opts)

	rt, ok := routines[impl]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, kind)
	}

	return Strategy{
		Kind:    kind,
		Impl:    impl,
		Mode:    rt.mode,
		Chunked: rt.chunked,
		Run:     rt.run,
	}, nil
}

// NewRequester opens the client variant matching mode.
func NewRequester(mode harness.Mode, cfg client.Config) client.Requester {
	if mode == harness.Suspending {
		return client.NewSuspending(cfg)
	}

	return client.NewBlocking(cfg)
}

// Execute opens one session for the run, drives the bound routine over
// queries and closes the session.
func (s Strategy) Execute(
	ctx context.Context,
	cfg client.Config,
	queries []int,
	chunkSize int,
) error {
	r := NewRequester(s.Mode, cfg)
	defer r.Close()

	if !s.Chunked {
		chunkSize = 0
	}

	return s.Run(ctx, r, queries, chunkSize)
}
