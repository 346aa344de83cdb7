package model

import (
	"time"

	"github.com/google/uuid"
)

// Targeting request bounds.
const (
	DefaultTargetCount = 50
	MaxTargetCount     = 500
)

// TargetingRequest is the input to the journalist-targeting stage.
// Budget is the slice of the total budget assigned to the outreach channel.
type TargetingRequest struct {
	DistributionID uuid.UUID
	Analysis       *Analysis
	TargetCount    int
	Budget         float64
}

func (r TargetingRequest) Validate() error {
	if r.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if r.Analysis == nil {
		return Invalidf("content_analysis", "missing")
	}
	if r.TargetCount < 1 || r.TargetCount > MaxTargetCount {
		return Invalidf("number_of_targets", "must be in [1, %d], got %d", MaxTargetCount, r.TargetCount)
	}
	if r.Budget < 0 {
		return Invalidf("budget_allocation", "must be >= 0, got %.2f", r.Budget)
	}
	return nil
}

// Target is one journalist with a personalized pitch.
type Target struct {
	JournalistID string
	Name         string
	Email        string
	Outlet       string
	Beats        []string
	Relevance    float64

	Subject     string
	Pitch       string
	WhyRelevant string

	ResponseLikelihood float64
}

// TargetingResult is the journalist-targeting stage output.
type TargetingResult struct {
	DistributionID   uuid.UUID
	Targets          []Target
	TotalTargets     int
	AverageRelevance float64
	StrategyNotes    string
	CreatedAt        time.Time
}

func (t *TargetingResult) Validate() error {
	if t == nil {
		return Invalidf("journalist_targeting", "missing")
	}
	if t.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if t.TotalTargets != len(t.Targets) {
		return Invalidf("total_targets", "declared %d but carries %d targets", t.TotalTargets, len(t.Targets))
	}
	for _, tg := range t.Targets {
		if tg.Relevance < 0 || tg.Relevance > 1 {
			return Invalidf("targets", "%s relevance must be in [0,1], got %.3f", tg.JournalistID, tg.Relevance)
		}
	}
	return nil
}
