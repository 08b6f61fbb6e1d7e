package workload

import (
	"errors"
	"slices"
	"testing"
)

func TestQueries(t *testing.T) {
	for _, n := range []int{0, 1, 5, 100} {
		got, err := Queries(n)
		if err != nil {
			t.Fatalf("Queries(%d) failed: %v", n, err)
		}

		if len(got) != n {
			t.Fatalf("len(Queries(%d)) = %d, want %d", n, len(got), n)
		}

		for i, v := range got {
			if v != i {
				t.Errorf("Queries(%d)[%d] = %d, want %d", n, i, v, i)
			}
		}
	}
}

func TestQueriesNegative(t *testing.T) {
	_, err := Queries(-1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestChunksScenario(t *testing.T) {
	queries, err := Queries(5)
	if err != nil {
		t.Fatalf("Queries failed: %v", err)
	}

	chunks, err := Chunks(queries, 2)
	if err != nil {
		t.Fatalf("Chunks failed: %v", err)
	}

	got := slices.Collect(chunks)
	want := [][]int{{0, 1}, {2, 3}, {4}}

	if len(got) != len(want) {
		t.Fatalf("got %d chunks, want %d: %v", len(got), len(want), got)
	}

	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("chunk %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestChunksReconstruct(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
	}{
		{"empty", 0, 3},
		{"single", 1, 1},
		{"exact", 10, 5},
		{"remainder", 10, 3},
		{"larger chunk", 4, 100},
		{"unit chunk", 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := Queries(tt.n)
			if err != nil {
				t.Fatalf("Queries failed: %v", err)
			}

			chunks, err := Chunks(queries, tt.size)
			if err != nil {
				t.Fatalf("Chunks failed: %v", err)
			}

			var joined []int
			count := 0

			for chunk := range chunks {
				if len(chunk) == 0 || len(chunk) > tt.size {
					t.Errorf("chunk %d has length %d, size %d",
						count, len(chunk), tt.size)
				}

				joined = append(joined, chunk...)
				count++
			}

			if !slices.Equal(joined, queries) {
				t.Errorf("joined = %v, want %v", joined, queries)
			}

			if want := (tt.n + tt.size - 1) / tt.size; count != want {
				t.Errorf("chunks = %d, want %d", count, want)
			}
		})
	}
}

func TestChunksRestartable(t *testing.T) {
	queries := []int{0, 1, 2, 3}

	chunks, err := Chunks(queries, 3)
	if err != nil {
		t.Fatalf("Chunks failed: %v", err)
	}

	first := slices.Collect(chunks)
	second := slices.Collect(chunks)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("chunk counts = %d, %d, want 2, 2", len(first), len(second))
	}

	for i := range first {
		if !slices.Equal(first[i], second[i]) {
			t.Errorf("range %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestChunksZeroSize(t *testing.T) {
	_, err := Chunks([]int{1, 2, 3}, 0)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
