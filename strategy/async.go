package strategy

import (
	"context"

	"github.com/weiihann/dispatchbench/client"
	"golang.org/x/sync/errgroup"
)

// RunAsyncFor starts one goroutine per query in a loop and waits for all
// of them. The first failure cancels the requests not yet sent.
func RunAsyncFor(
	ctx context.Context,
	r client.Requester,
	queries []int,
	_ int,
) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, number := range queries {
		g.Go(func() error {
			_, err := r.Get(ctx, number)
			return err
		})
	}

	return g.Wait()
}

// RunAsyncMap launches the same tasks as RunAsyncFor, created by mapping a
// launch function over the queries, then gathers them in order.
func RunAsyncMap(
	ctx context.Context,
	r client.Requester,
	queries []int,
	_ int,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	launch := func(number int) <-chan error {
		done := make(chan error, 1)

		go func() {
			_, err := r.Get(ctx, number)
			if err != nil {
				cancel()
			}
			done <- err
		}()

		return done
	}

	return gather(transform(queries, launch))
}

func transform[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}

	return out
}

// gather waits for every task and returns the first error in task order.
func gather(tasks []<-chan error) error {
	var first error

	for _, task := range tasks {
		if err := <-task; err != nil && first == nil {
			first = err
		}
	}

	return first
}
