// Package model defines the core domain types for Universal News.
//
// All types correspond directly to the stage contracts passed between the
// workflow coordinator and its collaborators. Types use strong typing
// (UUIDs, time.Time, enums) and avoid interface{} wherever possible.
package model

// Status represents the lifecycle state of a distribution run.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusPlanning  Status = "planning"
	StatusDeploying Status = "deploying"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the run has reached a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Urgency describes how quickly the content needs to be distributed.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate" // within 1 hour
	UrgencyUrgent    Urgency = "urgent"    // within 4 hours
	UrgencyStandard  Urgency = "standard"  // within 24 hours
	UrgencyScheduled Urgency = "scheduled" // at a specific time
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyImmediate, UrgencyUrgent, UrgencyStandard, UrgencyScheduled:
		return true
	}
	return false
}

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

// AllChannels returns every known channel type, in a stable order.
func AllChannels() []Channel {
	return []Channel{
		ChannelNewswire,
		ChannelOutreach,
		ChannelSocial,
		ChannelOwned,
		ChannelPaid,
		ChannelSEO,
		ChannelCommunity,
	}
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelNewswire, ChannelOutreach, ChannelSocial, ChannelOwned,
		ChannelPaid, ChannelSEO, ChannelCommunity:
		return true
	}
	return false
}

// HighAuthority reports whether the channel is a premium, editorially
// mediated outlet (wire services and direct journalist contact).
func (c Channel) HighAuthority() bool {
	return c == ChannelNewswire || c == ChannelOutreach
}

// Communal reports whether the channel spreads through social or
// community dynamics rather than editorial placement.
func (c Channel) Communal() bool {
	return c == ChannelSocial || c == ChannelCommunity
}

// Industry is a primary industry category for content classification.
type Industry string

const (
	IndustryTechnology    Industry = "technology"
	IndustryFinance       Industry = "finance"
	IndustryHealthcare    Industry = "healthcare"
	IndustryEnergy        Industry = "energy"
	IndustryRetail        Industry = "retail"
	IndustryManufacturing Industry = "manufacturing"
	IndustryRealEstate    Industry = "real_estate"
	IndustryTelecom       Industry = "telecommunications"
	IndustryTransport     Industry = "transportation"
	IndustryEntertainment Industry = "entertainment"
	IndustryEducation     Industry = "education"
	IndustryGovernment    Industry = "government"
	IndustryNonprofit     Industry = "nonprofit"
	IndustryOther         Industry = "other"
)

func (i Industry) Valid() bool {
	switch i {
	case IndustryTechnology, IndustryFinance, IndustryHealthcare, IndustryEnergy,
		IndustryRetail, IndustryManufacturing, IndustryRealEstate, IndustryTelecom,
		IndustryTransport, IndustryEntertainment, IndustryEducation,
		IndustryGovernment, IndustryNonprofit, IndustryOther:
		return true
	}
	return false
}

// Requirement is a regulatory compliance regime a distribution must honor.
type Requirement string

const (
	RequirementSECMaterial Requirement = "sec_material"
	RequirementGDPR        Requirement = "gdpr"
	RequirementFINRA       Requirement = "finra"
	RequirementHIPAA       Requirement = "hipaa"
	RequirementSOX         Requirement = "sox"
	RequirementNone        Requirement = "none"
)

func (r Requirement) Valid() bool {
	switch r {
	case RequirementSECMaterial, RequirementGDPR, RequirementFINRA,
		RequirementHIPAA, RequirementSOX, RequirementNone:
		return true
	}
	return false
}

// Severity grades a compliance issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s Severity) Valid() bool {
	return s == SeverityCritical || s == SeverityWarning || s == SeverityInfo
}

// Sentiment is the overall tone of the content.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// OutcomeStatus is the result state of one channel deployment, and of the
// deployment stage as a whole.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomePartial OutcomeStatus = "partial"
)

func (s OutcomeStatus) Valid() bool {
	return s == OutcomeSuccess || s == OutcomeFailed || s == OutcomePartial
}

// AggregateStatus derives the overall deployment status from per-channel
// counts: success iff every attempted channel succeeded, failed iff none
// did (including zero attempts), partial otherwise.
func AggregateStatus(succeeded, attempted int) OutcomeStatus {
	switch {
	case attempted > 0 && succeeded == attempted:
		return OutcomeSuccess
	case succeeded == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}
