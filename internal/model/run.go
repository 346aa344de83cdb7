package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Pipeline step names, in execution order.
const (
	StepAnalysis   = "content_analysis"
	StepCompliance = "compliance_check"
	StepRouting    = "channel_routing"
	StepTargeting  = "journalist_targeting"
	StepDeployment = "deployment"
	StepAnalytics  = "analytics"
)

// AllSteps returns the full pipeline step list for a fresh run.
func AllSteps() []string {
	return []string{
		StepAnalysis,
		StepCompliance,
		StepRouting,
		StepTargeting,
		StepDeployment,
		StepAnalytics,
	}
}

// Run is the record of one end-to-end pipeline execution. It is owned and
// mutated exclusively by the coordinator driving that run; other goroutines
// observe it only through snapshots taken by the run manager.
//
// Invariant: StepsCompleted and StepsRemaining never share a name. A step
// may leave StepsRemaining without entering StepsCompleted only through a
// documented branch rule (the targeting skip).
type Run struct {
	ID     uuid.UUID
	Status Status

	CurrentStep    string
	StepsCompleted []string
	StepsRemaining []string

	// Stage results, nil until the owning stage produces them.
	Analysis   *Analysis
	Compliance *Report
	Mix        *Mix
	Targeting  *TargetingResult
	Deployment *DeploymentResult

	StartedAt   time.Time
	CompletedAt *time.Time
	Duration    time.Duration

	Errors   []string
	Warnings []string

	Logs []ExecutionLog
}

// NewRun builds a pending run with the full step list remaining.
func NewRun(id uuid.UUID, now time.Time) *Run {
	return &Run{
		ID:             id,
		Status:         StatusPending,
		CurrentStep:    "initialization",
		StepsRemaining: AllSteps(),
		StartedAt:      now,
	}
}

// CompleteStep moves a step from remaining to completed. Unknown names are
// ignored so a branch rule can never corrupt the partition.
func (r *Run) CompleteStep(name string) {
	if i := slices.Index(r.StepsRemaining, name); i >= 0 {
		r.StepsRemaining = slices.Delete(r.StepsRemaining, i, i+1)
		r.StepsCompleted = append(r.StepsCompleted, name)
	}
}

// SkipStep drops a step from remaining without completing it. Used only
// for steps a branch rule made inapplicable.
func (r *Run) SkipStep(name string) {
	if i := slices.Index(r.StepsRemaining, name); i >= 0 {
		r.StepsRemaining = slices.Delete(r.StepsRemaining, i, i+1)
	}
}

// Finalize stamps the terminal status, completion time, and duration.
// A finalized run always has a defined duration, failed or not.
func (r *Run) Finalize(status Status, now time.Time) {
	r.Status = status
	completed := now
	r.CompletedAt = &completed
	r.Duration = completed.Sub(r.StartedAt)
}

// Snapshot returns a deep-enough copy for concurrent readers: slices are
// cloned, stage results are shared (immutable once produced).
func (r *Run) Snapshot() Run {
	out := *r
	out.StepsCompleted = slices.Clone(r.StepsCompleted)
	out.StepsRemaining = slices.Clone(r.StepsRemaining)
	out.Errors = slices.Clone(r.Errors)
	out.Warnings = slices.Clone(r.Warnings)
	out.Logs = slices.Clone(r.Logs)
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}
