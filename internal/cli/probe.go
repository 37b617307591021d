package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/impaktor/internal/metrics"
	"github.com/impaktor/internal/probe"
	"github.com/impaktor/internal/stats"
	"github.com/impaktor/pkg/impaktor"
)

type probeOptions struct {
	count   int
	rate    float64
	token   string
	metrics bool
	address string
	query   []string
}

func newProbeCmd(root *rootOptions) *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe PATH",
		Short: "Send paced GET calls and summarize the outcomes",
		Long: `Send a series of GET calls to one path, one at a time and no faster
than --rate per second, then print outcome counts and latency percentiles.

With --metrics the call counters and latency histogram are served for
Prometheus while the probe runs.

Example:
  impaktor probe health --count 50 --rate 10
  impaktor probe users --query page=1 --metrics --metrics-address :9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "Number of calls (defaults to probe.count)")
	cmd.Flags().Float64VarP(&opts.rate, "rate", "r", 0, "Calls per second (defaults to probe.rate)")
	cmd.Flags().StringVarP(&opts.token, "token", "t", "", "Bearer token (defaults to the configured auth_token)")
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Serve Prometheus metrics while probing")
	cmd.Flags().StringVar(&opts.address, "metrics-address", "", "Metrics listen address (defaults to metrics.address)")

	return cmd
}

func runProbe(cmd *cobra.Command, root *rootOptions, opts *probeOptions, path string) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if opts.count > 0 {
		cfg.Probe.Count = opts.count
	}
	if opts.rate > 0 {
		cfg.Probe.Rate = opts.rate
	}
	if opts.metrics {
		cfg.Metrics.Enabled = true
	}
	if opts.address != "" {
		cfg.Metrics.Address = opts.address
	}

	query, err := parsePairs("query", opts.query)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, "")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(reg)
	recorder := stats.NewRecorder()

	client, err := newClient(cfg, logger, impaktor.WithObserver(collector, recorder))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics, reg, logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(ctx)
		}()
	}

	token := opts.token
	if token == "" {
		token = cfg.AuthToken
	}

	runner, err := probe.NewRunner(client, probe.Config{
		Request: impaktor.Request{
			Verb:      impaktor.VerbGet,
			Path:      path,
			Query:     query,
			AuthToken: token,
		},
		Count: cfg.Probe.Count,
		Rate:  cfg.Probe.Rate,
	}, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "probing %s at %.1f calls/s\n", path, cfg.Probe.Rate)

	_, runErr := runner.Run(cmd.Context(), func(r probe.Result) {
		line := fmt.Sprintf("#%-4d %s", r.Seq, r.Outcome.Kind())
		if !r.Outcome.IsSuccessful() {
			line += "  " + r.Outcome.Reason()
		}
		fmt.Fprintln(out, line)
	})

	fmt.Fprintln(out)
	if _, err := recorder.Summary().WriteTo(out); err != nil {
		return err
	}
	return runErr
}
