// Package deploy implements the deployment fan-out/fan-in stage: one
// goroutine per channel allocation under a concurrency limit, with every
// error and panic converted into a failed per-channel outcome so a bad
// channel can never sink the stage.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/universalnewsoutlet-dev/universalnews/internal/delivery"
	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

// Deployer fans a channel mix out to the registered delivery adapters and
// aggregates the per-channel outcomes.
type Deployer struct {
	adapters    map[model.Channel]delivery.Adapter
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// New builds a Deployer. Concurrency below 1 is raised to 1; a nil clock
// means time.Now.
func New(adapters map[model.Channel]delivery.Adapter, concurrency int, logger *slog.Logger, now func() time.Time) *Deployer {
	if concurrency < 1 {
		concurrency = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Deployer{adapters: adapters, concurrency: concurrency, logger: logger, now: now}
}

// Deploy executes every allocation in the mix concurrently and aggregates
// the outcomes in allocation order. Individual channel failures, including
// panicking adapters and missing adapter registrations, become failed
// outcomes; the error return is reserved for a nil result (never today).
func (d *Deployer) Deploy(ctx context.Context, trail *stage.Trail, req model.DeploymentRequest) (*model.DeploymentResult, error) {
	allocations := req.Mix.Allocations
	outcomes := make([]model.Outcome, len(allocations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, alloc := range allocations {
		i, alloc := i, alloc
		g.Go(func() error {
			outcomes[i] = d.deployOne(gctx, req, alloc)
			return nil
		})
	}
	// Workers never return errors; Wait is a pure barrier.
	_ = g.Wait()

	result := aggregate(req.DistributionID, outcomes, d.now().UTC())
	trail.Decide("channels_attempted", result.Attempted)
	trail.Decide("channels_succeeded", result.Succeeded)
	if result.ErrorSummary != "" {
		trail.Reason("deployment errors: " + result.ErrorSummary)
	}
	return result, nil
}

// deployOne runs one adapter and converts every failure mode into a
// failed outcome.
func (d *Deployer) deployOne(ctx context.Context, req model.DeploymentRequest, alloc model.Allocation) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("delivery adapter panicked", "channel", alloc.Channel, "panic", r)
			outcome = failedOutcome(alloc.Channel, fmt.Sprintf("adapter panic: %v", r), d.now().UTC())
		}
	}()

	adapter, ok := d.adapters[alloc.Channel]
	if !ok {
		return failedOutcome(alloc.Channel, "no delivery adapter registered", d.now().UTC())
	}

	job := delivery.Job{
		DistributionID: req.DistributionID,
		Channel:        alloc.Channel,
		Budget:         alloc.Budget,
		Headline:       req.Headline,
		Content:        req.Content,
		MediaURLs:      req.MediaURLs,
		Targets:        req.Targets,
	}
	out, err := adapter.Deploy(ctx, job)
	if err != nil {
		d.logger.Warn("channel deployment failed", "channel", alloc.Channel, "error", err)
		return failedOutcome(alloc.Channel, err.Error(), d.now().UTC())
	}
	out.Channel = alloc.Channel
	return out
}

func failedOutcome(ch model.Channel, msg string, at time.Time) model.Outcome {
	return model.Outcome{
		Channel:    ch,
		Status:     model.OutcomeFailed,
		Error:      msg,
		DeployedAt: at,
	}
}

func aggregate(id uuid.UUID, outcomes []model.Outcome, at time.Time) *model.DeploymentResult {
	result := &model.DeploymentResult{
		DistributionID: id,
		Outcomes:       outcomes,
		Attempted:      len(outcomes),
		DeployedAt:     at,
	}

	var errs []string
	for _, out := range outcomes {
		if out.Status == model.OutcomeSuccess {
			result.Succeeded++
			result.InitialReach += out.Reach
			if out.URL != "" {
				result.PublicURLs = append(result.PublicURLs, out.URL)
			}
			continue
		}
		result.Failed++
		if out.Error != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", out.Channel, out.Error))
		}
	}
	result.Overall = model.AggregateStatus(result.Succeeded, result.Attempted)
	result.ErrorSummary = strings.Join(errs, "; ")
	return result
}
