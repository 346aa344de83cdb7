// Package stage wraps pipeline stage logic with a uniform reliability and
// observability contract: input/output validation, bounded retry with
// exponential backoff, per-attempt timeouts, and one execution log per call.
package stage

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/telemetry"
)

// Input is a stage input: validatable and traceable to its run.
type Input interface {
	Validate() error
	RunID() uuid.UUID
}

// Output is a stage output shape.
type Output interface {
	Validate() error
}

// Logic is one stage's core computation. The executor owns everything
// around it: validation, retries, timing, and the execution log.
type Logic[I Input, O Output] interface {
	Name() string
	Run(ctx context.Context, trail *Trail, in I) (O, error)
}

// Config tunes the executor's retry and accounting behavior.
type Config struct {
	// MaxAttempts is the total attempt budget per call, including the first.
	MaxAttempts int
	// Retry delay before attempt n (n starting at 1) is
	// BackoffBase^(n-1) * BackoffUnit.
	BackoffBase float64
	BackoffUnit time.Duration
	// AttemptTimeout bounds each attempt's wall clock. A timed-out attempt
	// counts as transient and is retried.
	AttemptTimeout time.Duration

	// Token pricing for generative-text cost accounting, USD per 1K tokens.
	InputCostPer1K  float64
	OutputCostPer1K float64
}

// Executor runs stage logic under Config. One Executor serves all stages
// of an engine; per-invocation state lives in the Trail and ExecutionLog.
type Executor struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer

	attempts metric.Int64Counter
	retries  metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// New builds an Executor. Metric instruments come from the global meter
// provider, which is a no-op unless telemetry was initialized.
func New(cfg Config, logger *slog.Logger) *Executor {
	meter := telemetry.Meter("universalnews/stage")
	attempts, _ := meter.Int64Counter("unews.stage.attempts",
		metric.WithDescription("Stage attempts, including retries."))
	retries, _ := meter.Int64Counter("unews.stage.retries",
		metric.WithDescription("Stage retry attempts."))
	failures, _ := meter.Int64Counter("unews.stage.failures",
		metric.WithDescription("Stage calls that ended in error."))
	duration, _ := meter.Float64Histogram("unews.stage.duration",
		metric.WithDescription("Stage call duration in seconds."),
		metric.WithUnit("s"))

	return &Executor{
		cfg:      cfg,
		logger:   logger,
		tracer:   telemetry.Tracer("universalnews/stage"),
		attempts: attempts,
		retries:  retries,
		failures: failures,
		duration: duration,
	}
}

// Execute runs one stage call under the full contract.
//
// Malformed input fails immediately with a validation error and zero
// attempts. Validation errors raised by the logic propagate without retry.
// Any other failure — including a per-attempt timeout — is transient and
// retried with exponential backoff until the attempt budget is exhausted.
// Output is validated before being returned; a malformed output is a stage
// bug and is not retried.
//
// The returned ExecutionLog is complete whether or not an error occurred.
func Execute[I Input, O Output](ctx context.Context, ex *Executor, logic Logic[I, O], in I) (O, model.ExecutionLog, error) {
	var zero O

	name := logic.Name()
	runID := in.RunID()
	trail := NewTrail()
	start := time.Now()

	elog := model.ExecutionLog{
		Stage:          name,
		DistributionID: runID,
		StartedAt:      start.UTC(),
	}

	attrs := metric.WithAttributes(attribute.String("stage", name))
	ctx, span := ex.tracer.Start(ctx, "stage."+name, trace.WithAttributes(
		attribute.String("stage", name),
		attribute.String("distribution_id", runID.String()),
	))
	defer span.End()

	logger := ex.logger.With("stage", name, "distribution_id", runID)
	logger.Info("stage starting")

	finish := func(retriesUsed int, err error) (O, model.ExecutionLog, error) {
		end := time.Now()
		elog.CompletedAt = end.UTC()
		elog.Duration = end.Sub(start)
		elog.Retries = retriesUsed
		elog.Success = err == nil
		elog.Reasoning, elog.Decisions = trail.steps()
		elog.LLMCalls, elog.TotalTokens, elog.CostUSD = trail.usage(ex.cfg.InputCostPer1K, ex.cfg.OutputCostPer1K)

		span.SetAttributes(attribute.Int("retries", retriesUsed))
		ex.duration.Record(ctx, elog.Duration.Seconds(), attrs)

		if err != nil {
			elog.Error = err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			ex.failures.Add(ctx, 1, attrs)
			logger.Error("stage failed", "error", err, "duration", elog.Duration, "retries", retriesUsed)
			return zero, elog, fmt.Errorf("stage %s: %w", name, err)
		}
		logger.Info("stage completed", "duration", elog.Duration, "retries", retriesUsed,
			"llm_calls", elog.LLMCalls, "cost_usd", elog.CostUSD)
		return zero, elog, nil
	}

	if err := in.Validate(); err != nil {
		_, elog, ferr := finish(0, fmt.Errorf("invalid input: %w", err))
		return zero, elog, ferr
	}

	var out O
	var lastErr error
	attempt := 0
	for ; attempt < ex.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := ex.backoff(ctx, attempt-1); err != nil {
				lastErr = err
				break
			}
			ex.retries.Add(ctx, 1, attrs)
			logger.Info("retrying", "attempt", attempt+1, "max_attempts", ex.cfg.MaxAttempts)
		}
		ex.attempts.Add(ctx, 1, attrs)

		attemptCtx, cancel := context.WithTimeout(ctx, ex.cfg.AttemptTimeout)
		out, lastErr = logic.Run(attemptCtx, trail, in)
		cancel()

		if lastErr == nil {
			break
		}
		if model.IsValidation(lastErr) {
			// Contract violation, not a transient fault.
			break
		}
		if ctx.Err() != nil {
			// The run itself was cancelled; stop retrying and surface it.
			lastErr = ctx.Err()
			break
		}
		logger.Warn("attempt failed", "attempt", attempt+1, "error", lastErr)
	}

	retriesUsed := attempt
	if retriesUsed >= ex.cfg.MaxAttempts {
		retriesUsed = ex.cfg.MaxAttempts - 1
	}

	if lastErr == nil {
		if err := out.Validate(); err != nil {
			lastErr = fmt.Errorf("invalid output: %w", err)
		}
	}
	if lastErr != nil {
		_, elog, ferr := finish(retriesUsed, lastErr)
		return zero, elog, ferr
	}

	_, elog, _ = finish(retriesUsed, nil)
	return out, elog, nil
}

// backoff waits BackoffBase^attempt units, or returns early with the
// context's error if the run is cancelled mid-wait.
func (ex *Executor) backoff(ctx context.Context, attempt int) error {
	d := time.Duration(math.Pow(ex.cfg.BackoffBase, float64(attempt)) * float64(ex.cfg.BackoffUnit))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
