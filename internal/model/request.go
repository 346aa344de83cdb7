package model

import (
	"time"

	"github.com/google/uuid"
)

// Bounds for user-supplied content, matching the public intake contract.
const (
	MinHeadlineLen = 10
	MaxHeadlineLen = 200
	MinContentLen  = 100
	MaxSummaryLen  = 500
)

// Request is the complete distribution request driving one run.
// Immutable once validated; the coordinator reads it at every stage.
type Request struct {
	ID             uuid.UUID
	OrganizationID string
	UserID         string

	// Content.
	Headline  string
	Content   string
	Summary   string
	MediaURLs []string

	// Distribution parameters.
	TargetBudget float64
	Urgency      Urgency
	ScheduledAt  *time.Time

	// Targeting. Empty slices mean "infer".
	TargetIndustries []Industry
	TargetAudiences  []string
	TargetChannels   []Channel // force exactly these channels when set

	Requirements []Requirement

	CreatedAt time.Time
}

// Validate checks the request against the intake contract. The returned
// error is always a *ValidationError.
func (r *Request) Validate() error {
	if r == nil {
		return Invalidf("request", "missing")
	}
	if r.ID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if r.OrganizationID == "" {
		return Invalidf("organization_id", "must not be empty")
	}
	if r.UserID == "" {
		return Invalidf("user_id", "must not be empty")
	}
	if n := len(r.Headline); n < MinHeadlineLen || n > MaxHeadlineLen {
		return Invalidf("headline", "length %d outside [%d, %d]", n, MinHeadlineLen, MaxHeadlineLen)
	}
	if n := len(r.Content); n < MinContentLen {
		return Invalidf("content", "length %d below minimum %d", n, MinContentLen)
	}
	if n := len(r.Summary); n > MaxSummaryLen {
		return Invalidf("summary", "length %d above maximum %d", n, MaxSummaryLen)
	}
	if r.TargetBudget < 0 {
		return Invalidf("target_budget", "must be >= 0, got %.2f", r.TargetBudget)
	}
	if !r.Urgency.Valid() {
		return Invalidf("urgency", "unknown value %q", r.Urgency)
	}
	for _, ind := range r.TargetIndustries {
		if !ind.Valid() {
			return Invalidf("target_industries", "unknown industry %q", ind)
		}
	}
	for _, ch := range r.TargetChannels {
		if !ch.Valid() {
			return Invalidf("target_channels", "unknown channel %q", ch)
		}
	}
	for _, req := range r.Requirements {
		if !req.Valid() {
			return Invalidf("compliance_requirements", "unknown requirement %q", req)
		}
	}
	return nil
}
