package universalnews

import (
	"time"

	"github.com/google/uuid"
)

// Status is a run's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusPlanning  Status = "planning"
	StatusDeploying Status = "deploying"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Urgency describes how quickly content must reach its channels.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyStandard  Urgency = "standard"
	UrgencyScheduled Urgency = "scheduled"
)

// Channel is a distribution outlet type.
type Channel string

const (
	ChannelNewswire  Channel = "newswire"
	ChannelOutreach  Channel = "journalist_outreach"
	ChannelSocial    Channel = "social_media"
	ChannelOwned     Channel = "owned_media"
	ChannelPaid      Channel = "paid_media"
	ChannelSEO       Channel = "seo_optimization"
	ChannelCommunity Channel = "community"
)

// Industry is a content industry category.
type Industry string

const (
	IndustryTechnology Industry = "technology"
	IndustryFinance    Industry = "finance"
	IndustryHealthcare Industry = "healthcare"
	IndustryEnergy     Industry = "energy"
	IndustryRetail     Industry = "retail"
	IndustryOther      Industry = "other"
)

// Requirement is a regulatory regime a request declares.
type Requirement string

const (
	RequirementSECMaterial Requirement = "sec_material"
	RequirementGDPR        Requirement = "gdpr"
	RequirementFINRA       Requirement = "finra"
	RequirementHIPAA       Requirement = "hipaa"
	RequirementSOX         Requirement = "sox"
	RequirementNone        Requirement = "none"
)

// OutcomeStatus is the result state of a channel deployment, or of the
// deployment stage as a whole.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomePartial OutcomeStatus = "partial"
)

// Request is a distribution request handed to Distribute. A zero ID is
// assigned, a zero CreatedAt is stamped, and an empty Urgency defaults to
// standard; everything else is validated as given.
type Request struct {
	ID             uuid.UUID
	OrganizationID string
	UserID         string

	Headline  string
	Content   string
	Summary   string
	MediaURLs []string

	TargetBudget float64
	Urgency      Urgency
	ScheduledAt  *time.Time

	TargetIndustries []Industry
	TargetAudiences  []string
	TargetChannels   []Channel

	Requirements []Requirement
}

// Entity is a named entity extracted from the content.
type Entity struct {
	Text      string
	Type      string
	Relevance float64
}

// Audience is an identified target audience segment.
type Audience struct {
	Name          string
	Relevance     float64
	Traits        []string
	EstimatedSize int
}

// OutletMatch is a media outlet matched to the content.
type OutletMatch struct {
	Name            string
	Type            string
	Relevance       float64
	AudienceOverlap float64
}

// Analysis is the public representation of a content classification.
// It is a curated view of internal/model.Analysis for use in extension
// interfaces. No internal package imports — safe to use from outside the
// module.
type Analysis struct {
	DistributionID uuid.UUID

	PrimaryIndustry     Industry
	SecondaryIndustries []Industry
	Topics              []string
	Entities            []Entity
	Keywords            []string

	Audiences []Audience
	Outlets   []OutletMatch

	Sentiment      string // positive | neutral | negative
	Newsworthiness float64
	ViralPotential float64

	Summary string
	Angles  []string

	ProcessedAt time.Time
}

// ComplianceIssue is a single compliance concern.
type ComplianceIssue struct {
	Severity       string // critical | warning | info
	Requirement    Requirement
	Description    string
	Recommendation string
}

// ComplianceReport is the compliance verdict for a run. CanProceed is the
// gate: when false the run stops before any budget is planned or spent.
type ComplianceReport struct {
	DistributionID uuid.UUID

	Compliant  bool
	CanProceed bool

	Issues   []ComplianceIssue
	Critical []ComplianceIssue
	Warnings []ComplianceIssue

	RequiredChannels  []Channel
	ForbiddenChannels []Channel
	Disclaimers       []string

	RequiresApproval bool
	ApprovalWorkflow string

	CheckedAt time.Time
}

// ChannelAllocation is the budget assigned to one channel.
type ChannelAllocation struct {
	Channel         Channel
	Budget          float64
	ExpectedReach   int
	ExpectedPickups int
	ExpectedROI     float64
	Rationale       string
}

// ChannelMix is the allocation plan across channels.
type ChannelMix struct {
	DistributionID uuid.UUID

	Allocations    []ChannelAllocation
	TotalAllocated float64

	ExpectedReach     int
	ExpectedPickups   int
	ExpectedBacklinks int
	ExpectedROIPct    float64

	Strategy    string
	Timing      map[Channel]string
	RiskFactors []string
	Confidence  float64

	CreatedAt time.Time
}

// JournalistTarget is one journalist with a personalized pitch.
type JournalistTarget struct {
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

// TargetingResult is the journalist targeting output.
type TargetingResult struct {
	DistributionID   uuid.UUID
	Targets          []JournalistTarget
	TotalTargets     int
	AverageRelevance float64
	StrategyNotes    string
	CreatedAt        time.Time
}

// ChannelOutcome is the result of deploying to one channel.
type ChannelOutcome struct {
	Channel      Channel
	Status       OutcomeStatus
	SubmissionID string
	URL          string
	Reach        int
	Error        string
	DeployedAt   time.Time
}

// DeploymentResult aggregates the per-channel outcomes of a deployment.
type DeploymentResult struct {
	DistributionID uuid.UUID

	Outcomes []ChannelOutcome

	Attempted int
	Succeeded int
	Failed    int

	InitialReach int
	PublicURLs   []string

	Overall      OutcomeStatus
	ErrorSummary string

	DeployedAt time.Time
}

// StageLog is the execution record of one pipeline stage invocation,
// including retry and LLM usage accounting.
type StageLog struct {
	Stage          string
	DistributionID uuid.UUID
	StartedAt      time.Time
	CompletedAt    time.Time
	Duration       time.Duration
	Success        bool
	Error          string
	Retries        int
	LLMCalls       int
	TotalTokens    int
	CostUSD        float64
	Reasoning      []string
	Decisions      map[string]any
}

// Run is the public view of one distribution run. Snapshots returned by
// Distribute and Run are independent copies; mutating them does not affect
// the engine's record.
type Run struct {
	ID     uuid.UUID
	Status Status

	CurrentStep    string
	StepsCompleted []string
	StepsRemaining []string

	Analysis   *Analysis
	Compliance *ComplianceReport
	Mix        *ChannelMix
	Targeting  *TargetingResult
	Deployment *DeploymentResult

	StartedAt   time.Time
	CompletedAt *time.Time
	Duration    time.Duration

	Errors   []string
	Warnings []string

	Logs []StageLog
}

// AnalyticsEvent is delivered to the analytics hook after deployment.
type AnalyticsEvent struct {
	DistributionID uuid.UUID
	HoursSince     int
}

// DeliveryJob is the per-channel slice of a deployment handed to a
// DeliveryAdapter.
type DeliveryJob struct {
	DistributionID uuid.UUID
	Channel        Channel
	Budget         float64

	Headline  string
	Content   string
	MediaURLs []string
	Targets   []JournalistTarget
}

// TextUsage reports generative text usage for cost accounting.
type TextUsage struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
}

// AnalysisInput is the input handed to a Classifier.
type AnalysisInput struct {
	DistributionID     uuid.UUID
	Headline           string
	Content            string
	Summary            string
	ProvidedIndustries []Industry
	ProvidedAudiences  []string
}

// ComplianceInput is the input handed to a ComplianceValidator.
type ComplianceInput struct {
	DistributionID uuid.UUID
	Analysis       Analysis
	Requirements   []Requirement
}

// TargetingInput is the input handed to a TargetingProvider.
type TargetingInput struct {
	DistributionID uuid.UUID
	Analysis       Analysis
	TargetCount    int
	Budget         float64
}
