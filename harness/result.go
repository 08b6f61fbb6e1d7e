// Package harness times dispatch strategy runs and reports their wall-clock
// duration.
package harness

import "time"

// Record holds the timing of one successful strategy run.
type Record struct {
	Strategy  string        `json:"strategy"`
	Impl      string        `json:"impl"`
	Mode      string        `json:"mode"`
	Requests  int           `json:"requests"`
	ChunkSize int           `json:"chunk_size,omitempty"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}
