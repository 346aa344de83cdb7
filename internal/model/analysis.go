package model

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRequest is the input to the content-classification stage.
type AnalysisRequest struct {
	DistributionID     uuid.UUID
	Headline           string
	Content            string
	Summary            string
	ProvidedIndustries []Industry
	ProvidedAudiences  []string
}

func (r AnalysisRequest) Validate() error {
	if r.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if r.Headline == "" {
		return Invalidf("headline", "must not be empty")
	}
	if r.Content == "" {
		return Invalidf("content", "must not be empty")
	}
	for _, ind := range r.ProvidedIndustries {
		if !ind.Valid() {
			return Invalidf("provided_industries", "unknown industry %q", ind)
		}
	}
	return nil
}

// Entity is a named entity extracted from the content.
type Entity struct {
	Text      string
	Type      string // PERSON, ORG, GPE, PRODUCT, EVENT, LAW, MONEY
	Relevance float64
}

// Audience is an identified target audience segment.
type Audience struct {
	Name          string
	Relevance     float64
	Traits        []string
	EstimatedSize int
}

// OutletMatch is a media outlet or publication matched to the content.
type OutletMatch struct {
	Name            string
	Type            string // e.g. "newspaper", "trade publication", "blog"
	Relevance       float64
	AudienceOverlap float64
}

// Analysis is the content-classification stage output: the full market
// read of one piece of content. Immutable once produced.
type Analysis struct {
	DistributionID uuid.UUID

	PrimaryIndustry     Industry
	SecondaryIndustries []Industry
	Topics              []string
	Entities            []Entity
	Keywords            []string

	Audiences []Audience
	Outlets   []OutletMatch

	Sentiment      Sentiment
	Newsworthiness float64 // [0,1]
	ViralPotential float64 // [0,1]

	Summary string
	Angles  []string

	ProcessedAt time.Time
}

func (a *Analysis) Validate() error {
	if a == nil {
		return Invalidf("analysis", "missing")
	}
	if a.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if !a.PrimaryIndustry.Valid() {
		return Invalidf("primary_industry", "unknown value %q", a.PrimaryIndustry)
	}
	if !a.Sentiment.Valid() {
		return Invalidf("sentiment", "unknown value %q", a.Sentiment)
	}
	if a.Newsworthiness < 0 || a.Newsworthiness > 1 {
		return Invalidf("newsworthiness_score", "must be in [0,1], got %.3f", a.Newsworthiness)
	}
	if a.ViralPotential < 0 || a.ViralPotential > 1 {
		return Invalidf("viral_potential", "must be in [0,1], got %.3f", a.ViralPotential)
	}
	if a.Summary == "" {
		return Invalidf("analysis_summary", "must not be empty")
	}
	return nil
}
