package universalnews

import "context"

// Classifier performs the content analysis stage.
// When provided via WithClassifier, replaces the built-in rule-based
// classifier. The result is validated by the engine; out-of-range scores
// fail the stage without retry.
type Classifier interface {
	Analyze(ctx context.Context, in AnalysisInput) (*Analysis, error)
}

// ComplianceValidator produces the compliance verdict for a run.
// When provided via WithComplianceValidator, replaces the built-in rule
// table. A report with CanProceed=false stops the run before any channel
// planning or spend.
type ComplianceValidator interface {
	Check(ctx context.Context, in ComplianceInput) (*ComplianceReport, error)
}

// TargetingProvider selects journalists and writes pitches.
// When provided via WithTargetingProvider, replaces the built-in roster.
// Only invoked when the channel mix includes journalist_outreach.
type TargetingProvider interface {
	Target(ctx context.Context, in TargetingInput) (*TargetingResult, error)
}

// DeliveryAdapter publishes content to one channel.
// Registered per channel via WithDeliveryAdapter; unregistered channels
// fall back to the built-in simulated adapters. A returned error becomes a
// failed outcome for that channel only — it never fails the other channels
// or the run.
type DeliveryAdapter interface {
	Deploy(ctx context.Context, job DeliveryJob) (ChannelOutcome, error)
}

// TextProvider generates structured JSON from a prompt. The allocator uses
// it to refine budget splits; when it errs the allocator falls back to its
// deterministic heuristic. When provided via WithTextProvider, replaces
// auto-detected OpenAI/noop.
type TextProvider interface {
	GenerateJSON(ctx context.Context, prompt string, out any) (TextUsage, error)
}

// AnalyticsHook receives an async notification after a run deploys.
// It runs in a goroutine with a bounded timeout; panics and slow hooks are
// contained and never fail the originating run.
type AnalyticsHook func(ctx context.Context, event AnalyticsEvent)
