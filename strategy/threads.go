package strategy

import (
	"context"

	"github.com/weiihann/dispatchbench/client"
	"github.com/weiihann/dispatchbench/pool"
	"github.com/weiihann/dispatchbench/workload"
)

// RunThreadsRecreate creates a pool sized to chunkSize for every chunk and
// tears it down before the next chunk starts.
func RunThreadsRecreate(
	ctx context.Context,
	r client.Requester,
	queries []int,
	chunkSize int,
) error {
	chunks, err := workload.Chunks(queries, chunkSize)
	if err != nil {
		return err
	}

	for chunk := range chunks {
		p, err := pool.New(chunkSize)
		if err != nil {
			return err
		}

		futures := submitAll(ctx, p, r, chunk)
		p.Close()

		if err := pool.Wait(futures); err != nil {
			return err
		}
	}

	return nil
}

// RunThreadsReuse keeps one pool sized to chunkSize for the whole run and
// waits for each chunk to finish before submitting the next.
func RunThreadsReuse(
	ctx context.Context,
	r client.Requester,
	queries []int,
	chunkSize int,
) error {
	chunks, err := workload.Chunks(queries, chunkSize)
	if err != nil {
		return err
	}

	p, err := pool.New(chunkSize)
	if err != nil {
		return err
	}
	defer p.Close()

	for chunk := range chunks {
		if err := pool.Wait(submitAll(ctx, p, r, chunk)); err != nil {
			return err
		}
	}

	return nil
}

// RunThreadsMap maps every query onto a pool with one worker per query.
func RunThreadsMap(
	ctx context.Context,
	r client.Requester,
	queries []int,
	_ int,
) error {
	if len(queries) == 0 {
		return nil
	}

	p, err := pool.New(len(queries))
	if err != nil {
		return err
	}
	defer p.Close()

	return pool.Map(p, queries, func(number int) error {
		_, err := r.Get(ctx, number)
		return err
	})
}

func submitAll(
	ctx context.Context,
	p *pool.Pool,
	r client.Requester,
	chunk []int,
) []*pool.Future {
	futures := make([]*pool.Future, 0, len(chunk))

	for _, number := range chunk {
		futures = append(futures, p.Submit(func() error {
			_, err := r.Get(ctx, number)
			return err
		}))
	}

	return futures
}
