package model

import (
	"time"

	"github.com/google/uuid"
)

// DeploymentRequest is the input to the deployment fan-out stage.
type DeploymentRequest struct {
	DistributionID uuid.UUID
	Mix            *Mix
	Headline       string
	Content        string
	MediaURLs      []string
	Targets        []Target // journalist targets, when the mix includes outreach
}

func (r DeploymentRequest) Validate() error {
	if r.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if r.Mix == nil {
		return Invalidf("channel_mix", "missing")
	}
	if r.Headline == "" {
		return Invalidf("headline", "must not be empty")
	}
	return nil
}

// Outcome is the result of deploying to a single channel.
type Outcome struct {
	Channel      Channel
	Status       OutcomeStatus
	SubmissionID string
	URL          string
	Reach        int
	Error        string
	DeployedAt   time.Time
}

// DeploymentResult is the fan-in aggregate across all attempted channels.
type DeploymentResult struct {
	DistributionID uuid.UUID

	Outcomes []Outcome

	Attempted int
	Succeeded int
	Failed    int

	InitialReach int
	PublicURLs   []string

	Overall      OutcomeStatus
	ErrorSummary string

	DeployedAt time.Time
}

func (d *DeploymentResult) Validate() error {
	if d == nil {
		return Invalidf("distribution_results", "missing")
	}
	if d.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if !d.Overall.Valid() {
		return Invalidf("overall_status", "unknown value %q", d.Overall)
	}
	if d.Succeeded+d.Failed != d.Attempted {
		return Invalidf("deployments", "succeeded %d + failed %d != attempted %d", d.Succeeded, d.Failed, d.Attempted)
	}
	if got := AggregateStatus(d.Succeeded, d.Attempted); got != d.Overall {
		return Invalidf("overall_status", "declared %q but counts derive %q", d.Overall, got)
	}
	return nil
}

// AnalyticsRequest is the payload emitted to the analytics collector after
// a run completes. Collection itself happens outside the pipeline.
type AnalyticsRequest struct {
	DistributionID uuid.UUID
	HoursSince     int
}
