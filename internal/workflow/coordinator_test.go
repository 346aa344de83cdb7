package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

type fakeClassifier struct {
	calls    atomic.Int32
	analysis func(req model.AnalysisRequest) *model.Analysis
	err      error
	block    bool
}

func (f *fakeClassifier) Analyze(ctx context.Context, trail *stage.Trail, req model.AnalysisRequest) (*model.Analysis, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis(req), nil
}

type fakeComply struct {
	report func(req model.ComplianceRequest) *model.Report
}

func (f *fakeComply) Check(ctx context.Context, trail *stage.Trail, req model.ComplianceRequest) (*model.Report, error) {
	return f.report(req), nil
}

type fakeAllocator struct {
	channels []model.Channel
}

func (f *fakeAllocator) Allocate(ctx context.Context, trail *stage.Trail, req model.RoutingRequest) (*model.Mix, error) {
	mix := &model.Mix{DistributionID: req.DistributionID, Confidence: 0.8}
	for _, ch := range f.channels {
		mix.Allocations = append(mix.Allocations, model.Allocation{Channel: ch, Budget: 100})
		mix.TotalAllocated += 100
	}
	return mix, nil
}

type fakeTargeter struct {
	calls atomic.Int32
}

func (f *fakeTargeter) Target(ctx context.Context, trail *stage.Trail, req model.TargetingRequest) (*model.TargetingResult, error) {
	f.calls.Add(1)
	return &model.TargetingResult{
		DistributionID:   req.DistributionID,
		Targets:          []model.Target{{JournalistID: "j001", Name: "Sarah Chen", Relevance: 0.9}},
		TotalTargets:     1,
		AverageRelevance: 0.9,
	}, nil
}

type fakeDeployer struct {
	calls atomic.Int32
}

func (f *fakeDeployer) Deploy(ctx context.Context, trail *stage.Trail, req model.DeploymentRequest) (*model.DeploymentResult, error) {
	f.calls.Add(1)
	result := &model.DeploymentResult{DistributionID: req.DistributionID, DeployedAt: time.Now().UTC()}
	for _, alloc := range req.Mix.Allocations {
		result.Outcomes = append(result.Outcomes, model.Outcome{
			Channel: alloc.Channel,
			Status:  model.OutcomeSuccess,
			Reach:   1000,
		})
		result.Attempted++
		result.Succeeded++
		result.InitialReach += 1000
	}
	result.Overall = model.AggregateStatus(result.Succeeded, result.Attempted)
	return result, nil
}

func goodAnalysis(req model.AnalysisRequest) *model.Analysis {
	return &model.Analysis{
		DistributionID:  req.DistributionID,
		PrimaryIndustry: model.IndustryTechnology,
		Sentiment:       model.SentimentPositive,
		Newsworthiness:  0.8,
		ViralPotential:  0.6,
		Summary:         "solid launch story",
	}
}

func passingReport(req model.ComplianceRequest) *model.Report {
	return &model.Report{DistributionID: req.DistributionID, Compliant: true, CanProceed: true}
}

type harness struct {
	coordinator *Coordinator
	manager     *Manager
	targeter    *fakeTargeter
	deployer    *fakeDeployer
}

func newHarness(t *testing.T, classifier Classifier, comply *fakeComply, alloc *fakeAllocator, hook AnalyticsHook) *harness {
	t.Helper()
	executor := stage.New(stage.Config{
		MaxAttempts:    3,
		BackoffBase:    2,
		BackoffUnit:    time.Millisecond,
		AttemptTimeout: time.Second,
	}, slog.Default())
	manager := NewManager()
	targeter := &fakeTargeter{}
	deployer := &fakeDeployer{}
	coordinator := New(executor, manager, classifier, comply, alloc, targeter, deployer, hook,
		Config{AnalyticsDelayHours: 24, AnalyticsTimeout: time.Second}, slog.Default(), nil)
	return &harness{coordinator, manager, targeter, deployer}
}

func validRequest() model.Request {
	return model.Request{
		ID:             uuid.New(),
		OrganizationID: "org-1",
		UserID:         "user-1",
		Headline:       "Acme Ships A New Release",
		Content:        strings.Repeat("A meaningful paragraph about the release and its market context. ", 3),
		TargetBudget:   1000,
		Urgency:        model.UrgencyStandard,
		Requirements:   []model.Requirement{model.RequirementNone},
		CreatedAt:      time.Now().UTC(),
	}
}

func assertStepsPartition(t *testing.T, run model.Run) {
	t.Helper()
	for _, done := range run.StepsCompleted {
		assert.NotContains(t, run.StepsRemaining, done, "completed step also remaining")
	}
}

func TestExecute_HappyPathWithTargeting(t *testing.T) {
	classifier := &fakeClassifier{analysis: goodAnalysis}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire, model.ChannelOutreach}}
	h := newHarness(t, classifier, comply, alloc, nil)

	run, err := h.coordinator.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
	assert.GreaterOrEqual(t, run.Duration, time.Duration(0))
	assert.Empty(t, run.StepsRemaining)
	assert.Equal(t, model.AllSteps(), run.StepsCompleted)
	assertStepsPartition(t, run)

	require.NotNil(t, run.Analysis)
	require.NotNil(t, run.Compliance)
	require.NotNil(t, run.Mix)
	require.NotNil(t, run.Targeting)
	require.NotNil(t, run.Deployment)
	assert.Equal(t, model.OutcomeSuccess, run.Deployment.Overall)
	assert.Equal(t, int32(1), h.targeter.calls.Load())
	assert.Len(t, run.Logs, 5, "one execution log per executed stage")
}

func TestExecute_TargetingSkippedWithoutOutreach(t *testing.T) {
	classifier := &fakeClassifier{analysis: goodAnalysis}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire, model.ChannelSocial}}
	h := newHarness(t, classifier, comply, alloc, nil)

	run, err := h.coordinator.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, run.Status)
	assert.Zero(t, h.targeter.calls.Load())
	assert.Nil(t, run.Targeting)
	assert.NotContains(t, run.StepsCompleted, model.StepTargeting, "skipped, not completed")
	assert.NotContains(t, run.StepsRemaining, model.StepTargeting)
	assertStepsPartition(t, run)
}

func TestExecute_GateBlocksBeforeDeployment(t *testing.T) {
	classifier := &fakeClassifier{analysis: goodAnalysis}
	comply := &fakeComply{report: func(req model.ComplianceRequest) *model.Report {
		critical := model.Issue{
			Severity:    model.SeverityCritical,
			Requirement: model.RequirementHIPAA,
			Description: "forbidden channel selected: social_media",
		}
		return &model.Report{
			DistributionID: req.DistributionID,
			Compliant:      false,
			CanProceed:     false,
			Issues:         []model.Issue{critical},
			Critical:       []model.Issue{critical},
		}
	}}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, classifier, comply, alloc, nil)

	run, err := h.coordinator.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compliance gate")

	assert.Equal(t, model.StatusFailed, run.Status)
	assert.NotNil(t, run.CompletedAt, "failed runs still get a completion stamp")
	assert.GreaterOrEqual(t, run.Duration, time.Duration(0))
	assert.Zero(t, h.deployer.calls.Load(), "gate failure means zero deployment attempts")
	assert.Nil(t, run.Mix)
	assert.NotEmpty(t, run.Errors)
	assertStepsPartition(t, run)
}

func TestExecute_MalformedClassifierOutputFailsWithoutRetry(t *testing.T) {
	classifier := &fakeClassifier{analysis: func(req model.AnalysisRequest) *model.Analysis {
		a := goodAnalysis(req)
		a.Newsworthiness = 2.0
		return a
	}}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, classifier, comply, alloc, nil)

	run, err := h.coordinator.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	assert.Equal(t, model.StatusFailed, run.Status)
	assert.Equal(t, int32(1), classifier.calls.Load(), "contract violations are not retried")
	require.Len(t, run.Logs, 1)
	assert.Zero(t, run.Logs[0].Retries)
	assert.Zero(t, h.deployer.calls.Load())
}

func TestExecute_TransientClassifierErrorIsRetried(t *testing.T) {
	flaky := &flakyClassifier{failures: 2}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, flaky, comply, alloc, nil)

	run, err := h.coordinator.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, run.Status)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, 2, run.Logs[0].Retries)
}

type flakyClassifier struct {
	failures int
	calls    int
}

func (f *flakyClassifier) Analyze(ctx context.Context, trail *stage.Trail, req model.AnalysisRequest) (*model.Analysis, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("temporary upstream error")
	}
	return goodAnalysis(req), nil
}

func TestExecute_CancellationYieldsCancelled(t *testing.T) {
	classifier := &fakeClassifier{analysis: goodAnalysis, block: true}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, classifier, comply, alloc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	run, err := h.coordinator.Execute(ctx, validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.StatusCancelled, run.Status)
	assert.NotNil(t, run.CompletedAt)
}

func TestExecute_InvalidRequestCreatesNoRun(t *testing.T) {
	classifier := &fakeClassifier{analysis: goodAnalysis}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, classifier, comply, alloc, nil)

	req := validRequest()
	req.Headline = "short"

	_, err := h.coordinator.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Zero(t, h.manager.Len())
}

func TestExecute_AnalyticsHookFireAndForget(t *testing.T) {
	received := make(chan model.AnalyticsRequest, 1)
	hook := func(ctx context.Context, req model.AnalyticsRequest) {
		received <- req
	}
	classifier := &fakeClassifier{analysis: goodAnalysis}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, classifier, comply, alloc, hook)

	req := validRequest()
	run, err := h.coordinator.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, run.Status)

	select {
	case got := <-received:
		assert.Equal(t, req.ID, got.DistributionID)
		assert.Equal(t, 24, got.HoursSince)
	case <-time.After(time.Second):
		t.Fatal("analytics hook was not invoked")
	}
}

func TestExecute_PanickingAnalyticsHookDoesNotFailRun(t *testing.T) {
	hook := func(ctx context.Context, req model.AnalyticsRequest) {
		panic("analytics backend offline")
	}
	classifier := &fakeClassifier{analysis: goodAnalysis}
	comply := &fakeComply{report: passingReport}
	alloc := &fakeAllocator{channels: []model.Channel{model.ChannelNewswire}}
	h := newHarness(t, classifier, comply, alloc, hook)

	run, err := h.coordinator.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, run.Status)
	time.Sleep(20 * time.Millisecond) // let the hook goroutine run and recover
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager()
	id := uuid.New()
	run := model.NewRun(id, time.Now().UTC())
	m.Create(run)

	got, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, got.Status)

	m.Update(id, func(r *model.Run) { r.Status = model.StatusAnalyzing })
	got, _ = m.Get(id)
	assert.Equal(t, model.StatusAnalyzing, got.Status)

	// Snapshots are isolated from later mutations.
	snapshot, _ := m.Get(id)
	m.Update(id, func(r *model.Run) { r.Errors = append(r.Errors, "boom") })
	assert.Empty(t, snapshot.Errors)

	m.Drop(id)
	_, ok = m.Get(id)
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestManager_UnknownIDIsNoOp(t *testing.T) {
	m := NewManager()
	id := uuid.New()
	_, ok := m.Get(id)
	assert.False(t, ok)
	m.Update(id, func(r *model.Run) { t.Fatal("must not be called") })
	m.Drop(id)
}
