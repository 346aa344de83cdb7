// Package universalnews is an embeddable content-distribution engine: it
// analyzes a piece of content, checks regulatory compliance, allocates a
// channel budget, targets journalists, and fans the deployment out across
// channels, recording every stage decision along the way.
//
// Dependency rule: universalnews (root) imports internal/*, but internal/*
// never imports the root. Public types handed to extension interfaces are
// standalone structs with no internal imports; conversion helpers live in
// convert.go.
//
// Typical embedding:
//
//	engine, err := universalnews.New(
//		universalnews.WithLogger(logger),
//		universalnews.WithAnalyticsHook(recordOutcome),
//	)
//	if err != nil { ... }
//	defer engine.Close(ctx)
//
//	run, err := engine.Distribute(ctx, req)
package universalnews

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/universalnewsoutlet-dev/universalnews/internal/allocator"
	"github.com/universalnewsoutlet-dev/universalnews/internal/classify"
	"github.com/universalnewsoutlet-dev/universalnews/internal/comply"
	"github.com/universalnewsoutlet-dev/universalnews/internal/config"
	"github.com/universalnewsoutlet-dev/universalnews/internal/delivery"
	"github.com/universalnewsoutlet-dev/universalnews/internal/deploy"
	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/outreach"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
	"github.com/universalnewsoutlet-dev/universalnews/internal/telemetry"
	"github.com/universalnewsoutlet-dev/universalnews/internal/textgen"
	"github.com/universalnewsoutlet-dev/universalnews/internal/workflow"
)

// Engine runs content distributions. Construct with New, release with
// Close. Safe for concurrent use.
type Engine struct {
	cfg     config.Config
	logger  *slog.Logger
	version string
	clock   func() time.Time

	manager     *workflow.Manager
	coordinator *workflow.Coordinator

	shutdownOTEL telemetry.Shutdown
}

// New builds an Engine: loads .env and environment configuration, applies
// option overrides, initializes telemetry, and wires the pipeline with
// built-in collaborators for every extension point not overridden.
func New(opts ...Option) (*Engine, error) {
	var o resolvedOptions
	for _, opt := range opts {
		opt(&o)
	}

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	var cfg config.Config
	if o.config != nil {
		cfg = toInternalConfig(*o.config)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.LogLevel),
		}))
	}

	version := o.version
	if version == "" {
		version = "dev"
	}
	clock := o.clock
	if clock == nil {
		clock = time.Now
	}

	shutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	// Text provider: explicit override, else OpenAI when a key is present,
	// else noop (the allocator then always uses its heuristic fallback).
	var gen textgen.Provider
	switch {
	case o.textProvider != nil:
		gen = textProviderAdapter{o.textProvider}
		logger.Info("text provider: custom")
	case cfg.OpenAIAPIKey != "":
		gen = textgen.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.TextModel, cfg.TextBaseURL)
		logger.Info("text provider: openai", "model", cfg.TextModel)
	default:
		gen = textgen.Noop{}
		logger.Info("text provider: noop, allocation guidance disabled")
	}

	executor := stage.New(stage.Config{
		MaxAttempts:     cfg.MaxAttempts,
		BackoffBase:     cfg.BackoffBase,
		BackoffUnit:     cfg.BackoffUnit,
		AttemptTimeout:  cfg.AttemptTimeout,
		InputCostPer1K:  cfg.InputCostPer1K,
		OutputCostPer1K: cfg.OutputCostPer1K,
	}, logger)

	var classifier workflow.Classifier = classify.New(logger, clock)
	if o.classifier != nil {
		classifier = classifierAdapter{o.classifier}
	}
	var validator workflow.ComplianceValidator = comply.New(logger, clock)
	if o.validator != nil {
		validator = complianceAdapter{o.validator}
	}
	var targeting workflow.TargetingProvider = outreach.New(logger, clock)
	if o.targeting != nil {
		targeting = targetingAdapter{o.targeting}
	}

	adapters := delivery.Simulated(clock)
	for ch, adapter := range o.deliveryAdapters {
		adapters[model.Channel(ch)] = deliveryAdapterShim{adapter}
	}

	var hook workflow.AnalyticsHook
	if len(o.analyticsHooks) > 0 {
		hooks := o.analyticsHooks
		hook = func(ctx context.Context, req model.AnalyticsRequest) {
			event := AnalyticsEvent{DistributionID: req.DistributionID, HoursSince: req.HoursSince}
			for _, h := range hooks {
				h(ctx, event)
			}
		}
	}

	manager := workflow.NewManager()
	coordinator := workflow.New(
		executor,
		manager,
		classifier,
		validator,
		allocator.New(gen, logger, clock),
		targeting,
		deploy.New(adapters, cfg.DeployConcurrency, logger, clock),
		hook,
		workflow.Config{
			AnalyticsDelayHours: cfg.AnalyticsDelayHours,
			AnalyticsTimeout:    cfg.AnalyticsTimeout,
		},
		logger,
		clock,
	)

	logger.Info("engine ready", "version", version, "max_attempts", cfg.MaxAttempts,
		"deploy_concurrency", cfg.DeployConcurrency)

	return &Engine{
		cfg:          cfg,
		logger:       logger,
		version:      version,
		clock:        clock,
		manager:      manager,
		coordinator:  coordinator,
		shutdownOTEL: shutdown,
	}, nil
}

// Distribute runs one distribution end to end and returns the finished
// run snapshot. The snapshot is returned alongside the error for runs that
// ended FAILED or CANCELLED; an invalid request returns a nil run because
// no run record is ever created for it.
func (e *Engine) Distribute(ctx context.Context, req Request) (*Run, error) {
	mreq := toModelRequest(req)
	if mreq.ID == uuid.Nil {
		mreq.ID = uuid.New()
	}
	if mreq.Urgency == "" {
		mreq.Urgency = model.UrgencyStandard
	}
	if mreq.CreatedAt.IsZero() {
		mreq.CreatedAt = e.clock()
	}

	run, err := e.coordinator.Execute(ctx, mreq)
	if run.ID == uuid.Nil {
		return nil, err
	}
	view := fromRun(run)
	return &view, err
}

// Run returns a snapshot of a run by id, finished or in flight.
func (e *Engine) Run(id uuid.UUID) (*Run, bool) {
	run, ok := e.manager.Get(id)
	if !ok {
		return nil, false
	}
	view := fromRun(run)
	return &view, true
}

// DropRun releases the record of a finished run. Dropping an unknown id
// is a no-op.
func (e *Engine) DropRun(id uuid.UUID) {
	e.manager.Drop(id)
}

// Close flushes telemetry. The engine must not be used after Close.
func (e *Engine) Close(ctx context.Context) error {
	if e.shutdownOTEL == nil {
		return nil
	}
	return e.shutdownOTEL(ctx)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
