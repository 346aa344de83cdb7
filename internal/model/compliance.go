package model

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceRequest is the input to the compliance-validation stage.
// The classification result must already be available.
type ComplianceRequest struct {
	DistributionID uuid.UUID
	Analysis       *Analysis
	Requirements   []Requirement
	Mix            *Mix // optional: set when re-checking a chosen channel mix
}

func (r ComplianceRequest) Validate() error {
	if r.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	if r.Analysis == nil {
		return Invalidf("content_analysis", "missing")
	}
	for _, req := range r.Requirements {
		if !req.Valid() {
			return Invalidf("compliance_requirements", "unknown requirement %q", req)
		}
	}
	return nil
}

// Issue is an individual compliance concern.
type Issue struct {
	Severity       Severity
	Requirement    Requirement
	Description    string
	Recommendation string
}

// Report is the compliance stage output. CanProceed is the pipeline gate:
// when false the coordinator halts the run before any allocation or spend.
type Report struct {
	DistributionID uuid.UUID

	Compliant  bool
	CanProceed bool

	Issues   []Issue
	Critical []Issue
	Warnings []Issue

	RequiredChannels  []Channel
	ForbiddenChannels []Channel
	Disclaimers       []string

	RequiresApproval bool
	ApprovalWorkflow string

	CheckedAt time.Time
}

func (r *Report) Validate() error {
	if r == nil {
		return Invalidf("compliance_report", "missing")
	}
	if r.DistributionID == uuid.Nil {
		return Invalidf("distribution_id", "must be set")
	}
	for _, is := range r.Issues {
		if !is.Severity.Valid() {
			return Invalidf("issues", "unknown severity %q", is.Severity)
		}
	}
	for _, ch := range r.RequiredChannels {
		if !ch.Valid() {
			return Invalidf("required_channels", "unknown channel %q", ch)
		}
	}
	for _, ch := range r.ForbiddenChannels {
		if !ch.Valid() {
			return Invalidf("forbidden_channels", "unknown channel %q", ch)
		}
	}
	return nil
}
