// Package probe issues a paced series of calls against one endpoint.
package probe

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/impaktor/pkg/impaktor"
	"github.com/impaktor/pkg/outcome"
)

// Config describes one probe run.
type Config struct {
	Request impaktor.Request
	Count   int
	Rate    float64 // Calls per second
}

// Result is the outcome of one probe call.
type Result struct {
	Seq     int
	Outcome outcome.Outcome[json.RawMessage, impaktor.APIError]
}

// Runner sends calls one at a time, never faster than the configured rate.
type Runner struct {
	client  *impaktor.Client
	limiter *rate.Limiter
	cfg     Config
	logger  *zap.Logger
}

// NewRunner validates cfg and creates a Runner.
func NewRunner(client *impaktor.Client, cfg Config, logger *zap.Logger) (*Runner, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("probe count must be positive, got %d", cfg.Count)
	}
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("probe rate must be positive, got %v", cfg.Rate)
	}
	if cfg.Request.Verb == "" {
		cfg.Request.Verb = impaktor.VerbGet
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run issues the calls, passing each result to fn as it resolves. It stops
// early with an error when ctx is done, or when its deadline leaves no room
// for the next call, and returns how many calls were made.
func (r *Runner) Run(ctx context.Context, fn func(Result)) (int, error) {
	r.logger.Info("probe started",
		zap.String("verb", string(r.cfg.Request.Verb)),
		zap.String("path", r.cfg.Request.Path),
		zap.Int("count", r.cfg.Count),
		zap.Float64("rate", r.cfg.Rate),
	)

	for i := 0; i < r.cfg.Count; i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Info("probe interrupted", zap.Int("sent", i), zap.Error(err))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return i, ctxErr
			}
			// The next slot falls after the deadline.
			return i, fmt.Errorf("probe interrupted: %w", err)
		}

		res := impaktor.Call[json.RawMessage, impaktor.APIError](ctx, r.client, r.cfg.Request)
		if fn != nil {
			fn(Result{Seq: i + 1, Outcome: res})
		}
	}

	r.logger.Info("probe finished", zap.Int("sent", r.cfg.Count))
	return r.cfg.Count, nil
}
