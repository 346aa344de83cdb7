package stage_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

type testInput struct {
	id      uuid.UUID
	invalid bool
}

func (in testInput) Validate() error {
	if in.invalid {
		return model.Invalidf("payload", "malformed")
	}
	return nil
}

func (in testInput) RunID() uuid.UUID { return in.id }

type testOutput struct {
	value   string
	invalid bool
}

func (out testOutput) Validate() error {
	if out.invalid {
		return model.Invalidf("value", "malformed")
	}
	return nil
}

// scriptedLogic returns the scripted errors in order, then succeeds.
type scriptedLogic struct {
	errs   []error
	calls  int
	output testOutput
}

func (l *scriptedLogic) Name() string { return "scripted" }

func (l *scriptedLogic) Run(ctx context.Context, trail *stage.Trail, in testInput) (testOutput, error) {
	i := l.calls
	l.calls++
	if i < len(l.errs) && l.errs[i] != nil {
		return testOutput{}, l.errs[i]
	}
	return l.output, nil
}

func testExecutor(t *testing.T) *stage.Executor {
	t.Helper()
	return stage.New(stage.Config{
		MaxAttempts:     3,
		BackoffBase:     2,
		BackoffUnit:     time.Millisecond,
		AttemptTimeout:  100 * time.Millisecond,
		InputCostPer1K:  0.01,
		OutputCostPer1K: 0.03,
	}, slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError})))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestExecute_SuccessFirstAttempt(t *testing.T) {
	ex := testExecutor(t)
	logic := &scriptedLogic{output: testOutput{value: "ok"}}

	out, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.value)
	assert.Equal(t, 1, logic.calls)
	assert.True(t, elog.Success)
	assert.Zero(t, elog.Retries)
	assert.False(t, elog.CompletedAt.Before(elog.StartedAt))
}

func TestExecute_TransientFailuresThenSuccess(t *testing.T) {
	ex := testExecutor(t)
	transient := errors.New("upstream hiccup")
	logic := &scriptedLogic{errs: []error{transient, transient}, output: testOutput{value: "ok"}}

	start := time.Now()
	out, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New()})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.value)
	assert.Equal(t, 3, logic.calls)
	assert.Equal(t, 2, elog.Retries)
	// Backoff schedule: 2^0 + 2^1 units before the two retries.
	assert.GreaterOrEqual(t, elapsed, 3*time.Millisecond)
}

func TestExecute_RetriesExhausted(t *testing.T) {
	ex := testExecutor(t)
	transient := errors.New("still down")
	logic := &scriptedLogic{errs: []error{transient, transient, transient}}

	_, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, logic.calls)
	assert.Equal(t, 2, elog.Retries)
	assert.False(t, elog.Success)
	assert.Contains(t, elog.Error, "still down")
}

func TestExecute_ValidationErrorNotRetried(t *testing.T) {
	ex := testExecutor(t)
	logic := &scriptedLogic{errs: []error{model.Invalidf("field", "bad domain value")}}

	_, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New()})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Equal(t, 1, logic.calls)
	assert.Zero(t, elog.Retries)
}

func TestExecute_MalformedInputFailsWithoutAttempt(t *testing.T) {
	ex := testExecutor(t)
	logic := &scriptedLogic{output: testOutput{value: "never"}}

	_, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New(), invalid: true})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Zero(t, logic.calls, "logic must not run on malformed input")
	assert.Zero(t, elog.Retries)
	assert.False(t, elog.Success)
}

func TestExecute_MalformedOutputNotRetried(t *testing.T) {
	ex := testExecutor(t)
	logic := &scriptedLogic{output: testOutput{invalid: true}}

	_, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New()})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "invalid output")
	assert.Equal(t, 1, logic.calls)
	assert.Zero(t, elog.Retries)
}

// blockingLogic ignores its script on the first call and blocks until the
// attempt deadline, then succeeds on the second call.
type blockingLogic struct {
	calls int
}

func (l *blockingLogic) Name() string { return "blocking" }

func (l *blockingLogic) Run(ctx context.Context, trail *stage.Trail, in testInput) (testOutput, error) {
	l.calls++
	if l.calls == 1 {
		<-ctx.Done()
		return testOutput{}, ctx.Err()
	}
	return testOutput{value: "eventually"}, nil
}

func TestExecute_AttemptTimeoutIsTransient(t *testing.T) {
	ex := stage.New(stage.Config{
		MaxAttempts:    3,
		BackoffBase:    2,
		BackoffUnit:    time.Millisecond,
		AttemptTimeout: 10 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError})))
	logic := &blockingLogic{}

	out, elog, err := stage.Execute(context.Background(), ex, logic, testInput{id: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "eventually", out.value)
	assert.Equal(t, 2, logic.calls)
	assert.Equal(t, 1, elog.Retries)
}

func TestExecute_ParentCancellationStopsRetrying(t *testing.T) {
	ex := testExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	logic := &scriptedLogic{errs: []error{errors.New("boom")}}

	cancel()
	_, _, err := stage.Execute(ctx, ex, logic, testInput{id: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, logic.calls, "no retry after the run is cancelled")
}

// usageLogic exercises trail accounting.
type usageLogic struct{}

func (usageLogic) Name() string { return "usage" }

func (usageLogic) Run(ctx context.Context, trail *stage.Trail, in testInput) (testOutput, error) {
	trail.Reason("considered three strategies")
	trail.Decide("picked strategy", "wide")
	trail.AddUsage(2, 1000, 500)
	return testOutput{value: "done"}, nil
}

func TestExecute_UsageAndTrailAccounting(t *testing.T) {
	ex := testExecutor(t)

	_, elog, err := stage.Execute(context.Background(), ex, usageLogic{}, testInput{id: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 2, elog.LLMCalls)
	assert.Equal(t, 1500, elog.TotalTokens)
	// 1000/1000*0.01 + 500/1000*0.03
	assert.InDelta(t, 0.025, elog.CostUSD, 1e-9)
	assert.Equal(t, []string{"considered three strategies", "picked strategy"}, elog.Reasoning)
	assert.Equal(t, "wide", elog.Decisions["picked strategy"])
}
