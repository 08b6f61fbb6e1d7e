package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// TimestampLayout formats the start and end lines of a report.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// RunConfig holds parameters for a single timed run.
type RunConfig struct {
	// Impl names the routine actually bound to the strategy.
	Impl      string
	Requests  int
	ChunkSize int
	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration
}

// Runner times one strategy and writes its report to Out.
type Runner struct {
	Name   string
	Out    io.Writer
	Logger *slog.Logger

	now func() time.Time
}

// NewRunner creates a Runner for the named strategy.
func NewRunner(name string, out io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		Name:   name,
		Out:    out,
		Logger: logger.With(slog.String("strategy", name)),
		now:    time.Now,
	}
}

// Run invokes fn under mode and reports its elapsed wall time. The start
// line is written before fn runs. If fn fails its error is returned and no
// elapsed or end line is written.
func (r *Runner) Run(
	ctx context.Context,
	cfg RunConfig,
	mode Mode,
	fn func(context.Context) error,
) (*Record, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	r.Logger.InfoContext(ctx, "starting run",
		slog.String("impl", cfg.Impl),
		slog.String("mode", mode.String()),
		slog.Int("requests", cfg.Requests),
		slog.Int("chunk_size", cfg.ChunkSize),
	)

	start := r.clock()
	fmt.Fprintf(r.Out, "Start: %s\n", start.Format(TimestampLayout))

	err := func() error {
		defer mode.enter()()

		return fn(ctx)
	}()

	if err != nil {
		r.Logger.ErrorContext(ctx, "run failed",
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("strategy %s: %w", r.Name, err)
	}

	end := r.clock()
	elapsed := end.Sub(start)

	fmt.Fprintf(r.Out, "Elapsed time: %.6f seconds\n", elapsed.Seconds())
	fmt.Fprintf(r.Out, "End: %s\n", end.Format(TimestampLayout))

	r.Logger.InfoContext(ctx, "run finished",
		slog.Duration("wall_time", elapsed),
	)

	return &Record{
		Strategy:  r.Name,
		Impl:      cfg.Impl,
		Mode:      mode.String(),
		Requests:  cfg.Requests,
		ChunkSize: cfg.ChunkSize,
		Start:     start,
		End:       end,
		Elapsed:   elapsed,
	}, nil
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}

	return r.now()
}
