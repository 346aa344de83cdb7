package universalnews

import (
	"log/slog"
	"time"
)

// Config is the engine configuration. New loads it from environment
// variables (UNEWS_* plus OPENAI_API_KEY and OTEL_EXPORTER_OTLP_*);
// WithConfig replaces the loaded values wholesale.
type Config struct {
	// Stage executor settings.
	MaxAttempts    int           // attempts per stage call, including the first
	BackoffBase    float64       // retry delay grows as BackoffBase^attempt
	BackoffUnit    time.Duration // unit multiplied into the backoff power
	AttemptTimeout time.Duration // wall-clock budget per attempt

	// Generative text settings.
	OpenAIAPIKey    string
	TextModel       string
	TextBaseURL     string
	InputCostPer1K  float64 // USD per 1K prompt tokens
	OutputCostPer1K float64 // USD per 1K completion tokens

	// Deployment settings.
	DeployConcurrency int // max concurrent channel deployments

	// Analytics scheduling.
	AnalyticsDelayHours int
	AnalyticsTimeout    time.Duration

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Option configures an Engine.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	logger           *slog.Logger
	config           *Config
	version          string
	classifier       Classifier
	validator        ComplianceValidator
	targeting        TargetingProvider
	textProvider     TextProvider
	deliveryAdapters map[Channel]DeliveryAdapter
	analyticsHooks   []AnalyticsHook
	clock            func() time.Time
}

// WithLogger sets the structured logger for the Engine.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithConfig replaces the environment-derived configuration with cfg.
// The replacement is validated the same way as loaded configuration.
func WithConfig(cfg Config) Option {
	return func(o *resolvedOptions) { o.config = &cfg }
}

// WithVersion sets the version string reported in telemetry and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithClassifier replaces the built-in rule-based content classifier.
// Only the last call wins.
func WithClassifier(c Classifier) Option {
	return func(o *resolvedOptions) { o.classifier = c }
}

// WithComplianceValidator replaces the built-in regulatory rule table.
// Only the last call wins.
func WithComplianceValidator(v ComplianceValidator) Option {
	return func(o *resolvedOptions) { o.validator = v }
}

// WithTargetingProvider replaces the built-in journalist roster.
// Only the last call wins.
func WithTargetingProvider(p TargetingProvider) Option {
	return func(o *resolvedOptions) { o.targeting = p }
}

// WithTextProvider replaces the auto-detected text provider (OpenAI/noop)
// used by the channel allocator. Only the last call wins.
func WithTextProvider(p TextProvider) Option {
	return func(o *resolvedOptions) { o.textProvider = p }
}

// WithDeliveryAdapter registers a delivery adapter for one channel,
// replacing the built-in simulated adapter for that channel only. Other
// channels keep their defaults.
func WithDeliveryAdapter(ch Channel, adapter DeliveryAdapter) Option {
	return func(o *resolvedOptions) {
		if o.deliveryAdapters == nil {
			o.deliveryAdapters = make(map[Channel]DeliveryAdapter)
		}
		o.deliveryAdapters[ch] = adapter
	}
}

// WithAnalyticsHook registers an analytics hook fired after each
// deployment. Multiple hooks may be registered; all receive every event.
func WithAnalyticsHook(hook AnalyticsHook) Option {
	return func(o *resolvedOptions) { o.analyticsHooks = append(o.analyticsHooks, hook) }
}

// WithClock overrides the engine's clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *resolvedOptions) { o.clock = now }
}
