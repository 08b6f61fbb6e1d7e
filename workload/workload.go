// Package workload builds the query sequence sent by every dispatch
// strategy and splits it into fixed-size, order-preserving chunks.
package workload

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidArgument is returned for request counts or chunk sizes that
// cannot describe a workload.
var ErrInvalidArgument = errors.New("invalid argument")

// Queries returns the ordered sequence 0..n-1.
func Queries(n int) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: request count %d is negative",
			ErrInvalidArgument, n)
	}

	queries := make([]int, n)
	for i := range queries {
		queries[i] = i
	}

	return queries, nil
}

// Chunks returns a lazy sequence of consecutive sub-slices of seq, each of
// length size except possibly the last. Every range over the returned
// sequence starts again from the beginning of seq.
func Chunks(seq []int, size int) (iter.Seq[[]int], error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size %d must be at least 1",
			ErrInvalidArgument, size)
	}

	return func(yield func([]int) bool) {
		for i := 0; i < len(seq); i += size {
			end := min(i+size, len(seq))
			if !yield(seq[i:end:end]) {
				return
			}
		}
	}, nil
}
