// Package report formats timing records into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/weiihann/dispatchbench/harness"
)

// Generate writes a markdown comparison table for the given records.
func Generate(w io.Writer, records []harness.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to report")
	}

	fastest := findFastest(records)

	fmt.Fprintln(w, "## Dispatch Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Strategy | Impl | Mode | Requests | Chunk "+
		"| Elapsed | Speedup |")
	fmt.Fprintln(w, "|----------|------|------|----------|-------"+
		"|---------|---------|")

	for _, r := range records {
		speedup := 1.0
		if fastest > 0 && r.Elapsed > 0 {
			speedup = float64(r.Elapsed) / float64(fastest)
		}

		fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %.2fx |\n",
			r.Strategy,
			r.Impl,
			r.Mode,
			r.Requests,
			formatChunk(r.ChunkSize),
			formatElapsed(r.Elapsed),
			speedup,
		)
	}

	return nil
}

// GenerateJSON writes records as JSON to w.
func GenerateJSON(w io.Writer, records []harness.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}

func findFastest(records []harness.Record) time.Duration {
	var fastest time.Duration

	for _, r := range records {
		if r.Elapsed > 0 && (fastest == 0 || r.Elapsed < fastest) {
			fastest = r.Elapsed
		}
	}

	return fastest
}

func formatChunk(size int) string {
	if size == 0 {
		return "-"
	}

	return fmt.Sprintf("%d", size)
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.6fs", d.Seconds())
}
