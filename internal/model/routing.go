package model

import (
	"time"

	"github.com/google/uuid"
)

// RoutingRequest is the input to the channel-allocation stage.
type RoutingRequest struct {
	DistributionID uuid.UUID
	Analysis       *Analysis
	TargetBudget   float64
	Urgency        Urgency
	ForcedChannels []Channel // use exactly these when non-empty
	Report         *Report   // compliance verdict, for include/exclude lists
}

func (r RoutingRequest) Validate() error {
	if r.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if r.Analysis == nil {
		return Invalidf("content_analysis", "missing")
	}
	if r.TargetBudget < 0 {
		return Invalidf("target_budget", "must be >= 0, got %.2f", r.TargetBudget)
	}
	if !r.Urgency.Valid() {
		return Invalidf("urgency", "unknown value %q", r.Urgency)
	}
	for _, ch := range r.ForcedChannels {
		if !ch.Valid() {
			return Invalidf("forced_channels", "unknown channel %q", ch)
		}
	}
	return nil
}

// Allocation is the budget assigned to a single channel, with projections.
type Allocation struct {
	Channel         Channel
	Budget          float64
	ExpectedReach   int
	ExpectedPickups int
	ExpectedROI     float64
	Rationale       string
}

// Mix is the channel-allocation stage output: the chosen channels, their
// budgets, and aggregate projections. Consumed unchanged by deployment.
type Mix struct {
	DistributionID uuid.UUID

	Allocations    []Allocation
	TotalAllocated float64

	ExpectedReach     int
	ExpectedPickups   int
	ExpectedBacklinks int
	ExpectedROIPct    float64

	Strategy    string
	Timing      map[Channel]string
	RiskFactors []string
	Confidence  float64 // [0,1]

	CreatedAt time.Time
}

func (m *Mix) Validate() error {
	if m == nil {
		return Invalidf("channel_mix", "missing")
	}
	if m.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	var total float64
	for _, a := range m.Allocations {
		if !a.Channel.Valid() {
			return Invalidf("allocations", "unknown channel %q", a.Channel)
		}
		if a.Budget < 0 {
			return Invalidf("allocations", "channel %s budget must be >= 0, got %.2f", a.Channel, a.Budget)
		}
		total += a.Budget
	}
	// Tolerance absorbs float accumulation; the allocator clamps to budget.
	if total > m.TotalAllocated+0.01 {
		return Invalidf("total_allocated_budget", "allocations sum %.2f exceeds declared total %.2f", total, m.TotalAllocated)
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return Invalidf("confidence_score", "must be in [0,1], got %.3f", m.Confidence)
	}
	return nil
}

// Includes reports whether the mix contains the given channel.
func (m *Mix) Includes(ch Channel) bool {
	for _, a := range m.Allocations {
		if a.Channel == ch {
			return true
		}
	}
	return false
}

// BudgetFor returns the budget assigned to the given channel, or 0.
func (m *Mix) BudgetFor(ch Channel) float64 {
	for _, a := range m.Allocations {
		if a.Channel == ch {
			return a.Budget
		}
	}
	return 0
}
