// Package main provides the CLI entry point for dispatchbench, a tool that
// times client-side request-dispatch strategies against a multiply server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/dispatchbench/client"
	"github.com/weiihann/dispatchbench/config"
	"github.com/weiihann/dispatchbench/harness"
	"github.com/weiihann/dispatchbench/report"
	"github.com/weiihann/dispatchbench/strategy"
	"github.com/weiihann/dispatchbench/workload"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runConfig struct {
	chunk          int
	requests       int
	host           string
	port           string
	timeout        time.Duration
	deadline       time.Duration
	maxConns       int
	nativeAsyncMap bool
	outputJSON     bool
}

func (c runConfig) options() strategy.Options {
	return strategy.Options{NativeAsyncMap: c.nativeAsyncMap}
}

// progress returns where run progress lines go. JSON output keeps stdout
// for the records alone.
func (c runConfig) progress(cmd *cobra.Command) io.Writer {
	if c.outputJSON {
		return cmd.ErrOrStderr()
	}

	return cmd.OutOrStdout()
}

func (c runConfig) endpoint() config.Endpoint {
	return config.Endpoint{Host: c.host, Port: c.port}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	var cfg runConfig

	root := &cobra.Command{
		Use:   "dispatchbench <test_name>",
		Short: "Time client-side request-dispatch strategies",
		Long: `Dispatchbench sends the integers 0..requests-1 to a multiply server
using one of several concurrency strategies and reports the elapsed wall
time of the whole run.

Strategies: threads_recreate, threads_reuse, threads_map, async_for,
async_map. Names are case-insensitive and accept hyphens.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := strategy.ParseKind(args[0])
			if err != nil {
				logger.WarnContext(cmd.Context(), "unknown strategy",
					slog.String("error", err.Error()),
				)
				fmt.Fprintln(cmd.OutOrStdout(), "Unknown test")

				return nil
			}

			records, err := runBenchmark(
				cmd.Context(), logger, cfg.progress(cmd), cfg,
				[]strategy.Kind{kind},
			)
			if err != nil {
				return err
			}

			if cfg.outputJSON {
				return report.GenerateJSON(cmd.OutOrStdout(), records)
			}

			return nil
		},
	}

	endpoint := config.FromEnv()

	flags := root.PersistentFlags()
	flags.IntVarP(&cfg.chunk, "chunk", "c", 100,
		"Chunk size and worker count for chunked strategies")
	flags.IntVarP(&cfg.requests, "requests", "r", 100,
		"Number of requests to send")
	flags.StringVar(&cfg.host, "host", endpoint.Host,
		"Server host (env "+config.HostEnv+")")
	flags.StringVar(&cfg.port, "port", endpoint.Port,
		"Server port (env "+config.PortEnv+")")
	flags.DurationVar(&cfg.timeout, "timeout", 0,
		"Per-request timeout (0 = wait forever)")
	flags.DurationVar(&cfg.deadline, "deadline", 0,
		"Deadline for a whole strategy run (0 = none)")
	flags.IntVar(&cfg.maxConns, "max-conns", client.DefaultMaxConns,
		"Maximum pooled connections to the server")
	flags.BoolVar(&cfg.nativeAsyncMap, "native-async-map", false,
		"Run async_map with its own map-based routine instead of async_for")
	flags.BoolVar(&cfg.outputJSON, "json", false,
		"Output timing records as JSON")

	root.AddCommand(newCompareCmd(logger, &cfg))
	root.AddCommand(newStrategiesCmd(&cfg))

	return root
}

func newCompareCmd(logger *slog.Logger, cfg *runConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [test_name...]",
		Short: "Run several strategies and compare their elapsed time",
		Long: `Run the named strategies (all of them when none are given) over the
same query sequence, one after another, and print a comparison table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := strategy.Kinds()

			if len(args) > 0 {
				kinds = make([]strategy.Kind, 0, len(args))

				for _, name := range args {
					kind, err := strategy.ParseKind(name)
					if err != nil {
						return err
					}

					kinds = append(kinds, kind)
				}
			}

			records, err := runBenchmark(
				cmd.Context(), logger, cfg.progress(cmd), *cfg, kinds,
			)
			if err != nil {
				return err
			}

			if cfg.outputJSON {
				return report.GenerateJSON(cmd.OutOrStdout(), records)
			}

			fmt.Fprintln(cmd.OutOrStdout())

			return report.Generate(cmd.OutOrStdout(), records)
		},
	}
}

func newStrategiesCmd(cfg *runConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the known strategies and the routine bound to each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, kind := range strategy.Kinds() {
				s, err := strategy.Lookup(kind, cfg.options())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%-18s impl=%-18s mode=%s\n",
					s.Kind, s.Impl, s.Mode)
			}

			return nil
		},
	}
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg runConfig,
	kinds []strategy.Kind,
) ([]harness.Record, error) {
	queries, err := workload.Queries(cfg.requests)
	if err != nil {
		return nil, err
	}

	url := cfg.endpoint().URL()
	fmt.Fprintf(out, "Going to make calls to the url: %s\n", url)

	clientCfg := client.Config{
		URL:      url,
		Timeout:  cfg.timeout,
		MaxConns: cfg.maxConns,
	}

	records := make([]harness.Record, 0, len(kinds))

	for _, kind := range kinds {
		s, err := strategy.Lookup(kind, cfg.options())
		if err != nil {
			return nil, err
		}

		chunk := 0
		if s.Chunked {
			chunk = cfg.chunk
		}

		runner := harness.NewRunner(kind.String(), out, logger)

		record, err := runner.Run(ctx, harness.RunConfig{
			Impl:      s.Impl.String(),
			Requests:  len(queries),
			ChunkSize: chunk,
			Timeout:   cfg.deadline,
		}, s.Mode, func(ctx context.Context) error {
			return s.Execute(ctx, clientCfg, queries, chunk)
		})
		if err != nil {
			return nil, err
		}

		records = append(records, *record)
	}

	return records, nil
}
