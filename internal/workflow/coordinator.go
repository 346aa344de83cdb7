// Package workflow drives the distribution pipeline: one coordinator
// executes the staged state machine for a run while the manager keeps the
// run records observable to concurrent readers.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
	"github.com/universalnewsoutlet-dev/universalnews/internal/telemetry"
)

// Classifier produces the content analysis for a distribution.
type Classifier interface {
	Analyze(ctx context.Context, trail *stage.Trail, req model.AnalysisRequest) (*model.Analysis, error)
}

// ComplianceValidator produces the compliance report that gates the run.
type ComplianceValidator interface {
	Check(ctx context.Context, trail *stage.Trail, req model.ComplianceRequest) (*model.Report, error)
}

// Allocator produces the channel mix.
type Allocator interface {
	Allocate(ctx context.Context, trail *stage.Trail, req model.RoutingRequest) (*model.Mix, error)
}

// TargetingProvider produces the journalist target list.
type TargetingProvider interface {
	Target(ctx context.Context, trail *stage.Trail, req model.TargetingRequest) (*model.TargetingResult, error)
}

// Deployer executes the channel mix.
type Deployer interface {
	Deploy(ctx context.Context, trail *stage.Trail, req model.DeploymentRequest) (*model.DeploymentResult, error)
}

// AnalyticsHook receives the post-deployment analytics request. It runs in
// its own goroutine with a bounded context and can never affect the run's
// terminal state.
type AnalyticsHook func(ctx context.Context, req model.AnalyticsRequest)

// Config tunes coordinator behavior outside the stage executor's scope.
type Config struct {
	AnalyticsDelayHours int
	AnalyticsTimeout    time.Duration
}

// Coordinator owns pipeline execution for distribution runs.
type Coordinator struct {
	executor  *stage.Executor
	manager   *Manager
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	cfg       Config
	classify  Classifier
	comply    ComplianceValidator
	allocate  Allocator
	target    TargetingProvider
	deploy    Deployer
	analytics AnalyticsHook
}

// New builds a Coordinator. All collaborators are required except the
// analytics hook; a nil clock means time.Now.
func New(
	executor *stage.Executor,
	manager *Manager,
	classify Classifier,
	comply ComplianceValidator,
	allocate Allocator,
	target TargetingProvider,
	deploy Deployer,
	analytics AnalyticsHook,
	cfg Config,
	logger *slog.Logger,
	now func() time.Time,
) *Coordinator {
	if now == nil {
		now = time.Now
	}
	if cfg.AnalyticsTimeout <= 0 {
		cfg.AnalyticsTimeout = 10 * time.Second
	}
	return &Coordinator{
		executor:  executor,
		manager:   manager,
		logger:    logger,
		tracer:    telemetry.Tracer("universalnews/workflow"),
		now:       now,
		cfg:       cfg,
		classify:  classify,
		comply:    comply,
		allocate:  allocate,
		target:    target,
		deploy:    deploy,
		analytics: analytics,
	}
}

// stageLogic adapts a collaborator method to the executor's Logic contract.
type stageLogic[I stage.Input, O stage.Output] struct {
	name string
	fn   func(context.Context, *stage.Trail, I) (O, error)
}

func (l stageLogic[I, O]) Name() string { return l.name }

func (l stageLogic[I, O]) Run(ctx context.Context, trail *stage.Trail, in I) (O, error) {
	return l.fn(ctx, trail, in)
}

// Execute drives one distribution through the full pipeline and returns a
// snapshot of the finished run. The snapshot always carries a terminal
// status and duration; the error reports why a run ended FAILED or
// CANCELLED, or why the request never produced a run at all.
func (c *Coordinator) Execute(ctx context.Context, req model.Request) (model.Run, error) {
	if err := req.Validate(); err != nil {
		return model.Run{}, fmt.Errorf("invalid distribution request: %w", err)
	}

	run := model.NewRun(req.ID, c.now())
	c.manager.Create(run)

	ctx, span := c.tracer.Start(ctx, "distribution.run", trace.WithAttributes(
		attribute.String("distribution_id", req.ID.String()),
	))
	defer span.End()

	logger := c.logger.With("distribution_id", req.ID)
	logger.Info("distribution started", "headline", req.Headline, "budget", req.TargetBudget)

	// Analysis.
	c.transition(req.ID, model.StatusAnalyzing, model.StepAnalysis)
	analysis, elog, err := stage.Execute(ctx, c.executor,
		stageLogic[model.AnalysisRequest, *model.Analysis]{model.StepAnalysis, c.classify.Analyze},
		model.AnalysisRequest{
			DistributionID:     req.ID,
			Headline:           req.Headline,
			Content:            req.Content,
			Summary:            req.Summary,
			ProvidedIndustries: req.TargetIndustries,
			ProvidedAudiences:  req.TargetAudiences,
		})
	c.record(req.ID, elog)
	if err != nil {
		return c.abort(ctx, span, req.ID, err)
	}
	c.manager.Update(req.ID, func(r *model.Run) {
		r.Analysis = analysis
		r.CompleteStep(model.StepAnalysis)
	})

	// Compliance.
	c.transition(req.ID, model.StatusAnalyzing, model.StepCompliance)
	report, elog, err := stage.Execute(ctx, c.executor,
		stageLogic[model.ComplianceRequest, *model.Report]{model.StepCompliance, c.comply.Check},
		model.ComplianceRequest{
			DistributionID: req.ID,
			Analysis:       analysis,
			Requirements:   req.Requirements,
		})
	c.record(req.ID, elog)
	if err != nil {
		return c.abort(ctx, span, req.ID, err)
	}
	c.manager.Update(req.ID, func(r *model.Run) {
		r.Compliance = report
		r.CompleteStep(model.StepCompliance)
	})

	// Gate: a blocked run fails cleanly with zero deployment attempts.
	if !report.CanProceed {
		return c.abort(ctx, span, req.ID, fmt.Errorf("compliance gate: %s", gateReason(report)))
	}

	// Allocation.
	c.transition(req.ID, model.StatusPlanning, model.StepRouting)
	mix, elog, err := stage.Execute(ctx, c.executor,
		stageLogic[model.RoutingRequest, *model.Mix]{model.StepRouting, c.allocate.Allocate},
		model.RoutingRequest{
			DistributionID: req.ID,
			Analysis:       analysis,
			TargetBudget:   req.TargetBudget,
			Urgency:        req.Urgency,
			ForcedChannels: req.TargetChannels,
			Report:         report,
		})
	c.record(req.ID, elog)
	if err != nil {
		return c.abort(ctx, span, req.ID, err)
	}
	c.manager.Update(req.ID, func(r *model.Run) {
		r.Mix = mix
		r.CompleteStep(model.StepRouting)
	})

	// Targeting runs only when the mix includes journalist outreach.
	var targeting *model.TargetingResult
	if mix.Includes(model.ChannelOutreach) {
		c.transition(req.ID, model.StatusPlanning, model.StepTargeting)
		targeting, elog, err = stage.Execute(ctx, c.executor,
			stageLogic[model.TargetingRequest, *model.TargetingResult]{model.StepTargeting, c.target.Target},
			model.TargetingRequest{
				DistributionID: req.ID,
				Analysis:       analysis,
				TargetCount:    model.DefaultTargetCount,
				Budget:         mix.BudgetFor(model.ChannelOutreach),
			})
		c.record(req.ID, elog)
		if err != nil {
			return c.abort(ctx, span, req.ID, err)
		}
		c.manager.Update(req.ID, func(r *model.Run) {
			r.Targeting = targeting
			r.CompleteStep(model.StepTargeting)
		})
	} else {
		logger.Info("skipping journalist targeting, outreach channel not in mix")
		c.manager.Update(req.ID, func(r *model.Run) {
			r.SkipStep(model.StepTargeting)
		})
	}

	// Deployment.
	c.transition(req.ID, model.StatusDeploying, model.StepDeployment)
	var targets []model.Target
	if targeting != nil {
		targets = targeting.Targets
	}
	deployment, elog, err := stage.Execute(ctx, c.executor,
		stageLogic[model.DeploymentRequest, *model.DeploymentResult]{model.StepDeployment, c.deploy.Deploy},
		model.DeploymentRequest{
			DistributionID: req.ID,
			Mix:            mix,
			Headline:       req.Headline,
			Content:        req.Content,
			MediaURLs:      req.MediaURLs,
			Targets:        targets,
		})
	c.record(req.ID, elog)
	if err != nil {
		return c.abort(ctx, span, req.ID, err)
	}
	c.manager.Update(req.ID, func(r *model.Run) {
		r.Deployment = deployment
		r.CompleteStep(model.StepDeployment)
		if deployment.Overall != model.OutcomeSuccess && deployment.ErrorSummary != "" {
			r.Warnings = append(r.Warnings, "deployment issues: "+deployment.ErrorSummary)
		}
	})

	// Analytics is fire-and-forget: emitted on its own context so the hook
	// outlives the run without ever blocking or failing it.
	c.manager.Update(req.ID, func(r *model.Run) { r.CurrentStep = model.StepAnalytics })
	c.emitAnalytics(req.ID)
	c.manager.Update(req.ID, func(r *model.Run) { r.CompleteStep(model.StepAnalytics) })

	c.manager.Update(req.ID, func(r *model.Run) {
		r.CurrentStep = "completed"
		r.Finalize(model.StatusCompleted, c.now())
	})
	snapshot, _ := c.manager.Get(req.ID)
	span.SetAttributes(attribute.String("status", string(snapshot.Status)))
	logger.Info("distribution completed",
		"duration", snapshot.Duration,
		"deployed_channels", deployment.Succeeded,
		"initial_reach", deployment.InitialReach)
	return snapshot, nil
}

// transition stamps the run's status and current step.
func (c *Coordinator) transition(id uuid.UUID, status model.Status, step string) {
	c.manager.Update(id, func(r *model.Run) {
		r.Status = status
		r.CurrentStep = step
	})
}

// record appends one stage execution log to the run.
func (c *Coordinator) record(id uuid.UUID, elog model.ExecutionLog) {
	c.manager.Update(id, func(r *model.Run) {
		r.Logs = append(r.Logs, elog)
	})
}

// abort finalizes the run as FAILED, or CANCELLED when the run's context
// was cancelled, and returns the finished snapshot with the cause.
func (c *Coordinator) abort(ctx context.Context, span trace.Span, id uuid.UUID, cause error) (model.Run, error) {
	status := model.StatusFailed
	if ctx.Err() != nil {
		status = model.StatusCancelled
	}
	c.manager.Update(id, func(r *model.Run) {
		r.Errors = append(r.Errors, cause.Error())
		r.Finalize(status, c.now())
	})
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())
	c.logger.Error("distribution aborted", "distribution_id", id, "status", status, "error", cause)
	snapshot, _ := c.manager.Get(id)
	return snapshot, cause
}

// emitAnalytics fires the analytics hook in its own goroutine. Panics are
// contained and the hook's context is bounded by the configured timeout.
func (c *Coordinator) emitAnalytics(id uuid.UUID) {
	hook := c.analytics
	if hook == nil {
		return
	}
	req := model.AnalyticsRequest{DistributionID: id, HoursSince: c.cfg.AnalyticsDelayHours}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("analytics hook panicked", "distribution_id", req.DistributionID, "panic", r)
			}
		}()
		actx, cancel := context.WithTimeout(context.Background(), c.cfg.AnalyticsTimeout)
		defer cancel()
		hook(actx, req)
	}()
}

func gateReason(report *model.Report) string {
	if len(report.Critical) > 0 {
		descriptions := make([]string, len(report.Critical))
		for i, issue := range report.Critical {
			descriptions[i] = issue.Description
		}
		return "critical issues: " + strings.Join(descriptions, "; ")
	}
	if report.RequiresApproval {
		return "human approval required before distribution"
	}
	return "distribution blocked by compliance verdict"
}
