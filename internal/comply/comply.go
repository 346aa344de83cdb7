// Package comply implements the default compliance validator. Verdicts come
// from a fixed rule table per regulatory regime; the resulting report drives
// the pipeline gate (CanProceed) and constrains channel selection downstream.
package comply

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

type rule struct {
	name              string
	requiredChannels  []model.Channel
	forbiddenChannels []model.Channel
	disclaimers       []string
	approvalRequired  bool
	timing            string
	industries        []model.Industry // empty means all industries
}

var rules = map[model.Requirement]rule{
	model.RequirementSECMaterial: {
		name:             "SEC Material Disclosure",
		requiredChannels: []model.Channel{model.ChannelNewswire},
		disclaimers: []string{
			"Forward-looking statements disclaimer",
			"SEC filing reference",
		},
		approvalRequired: true,
		timing:           "Must be immediate (Regulation FD)",
		industries:       []model.Industry{model.IndustryFinance},
	},
	model.RequirementFINRA: {
		name: "FINRA Financial Industry",
		disclaimers: []string{
			"Investment disclaimer",
			"Risk disclosure",
			"FINRA member notice",
		},
		approvalRequired: true,
		timing:           "Pre-approval required",
		industries:       []model.Industry{model.IndustryFinance},
	},
	model.RequirementGDPR: {
		name: "GDPR Data Protection",
		disclaimers: []string{
			"Privacy policy link",
			"Data processing notice",
		},
	},
	model.RequirementHIPAA: {
		name:              "HIPAA Healthcare Privacy",
		forbiddenChannels: []model.Channel{model.ChannelSocial},
		disclaimers: []string{
			"Patient privacy notice",
			"HIPAA compliance statement",
		},
		approvalRequired: true,
		timing:           "Legal review required",
		industries:       []model.Industry{model.IndustryHealthcare},
	},
	model.RequirementSOX: {
		name:             "Sarbanes-Oxley Act",
		requiredChannels: []model.Channel{model.ChannelNewswire},
		disclaimers: []string{
			"Financial accuracy certification",
			"Management responsibility statement",
		},
		approvalRequired: true,
		timing:           "CFO approval required",
		industries:       []model.Industry{model.IndustryFinance},
	},
}

// Validator is the built-in rule-table compliance validator.
type Validator struct {
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Validator. A nil clock means time.Now.
func New(logger *slog.Logger, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{logger: logger, now: now}
}

// Check evaluates every requirement on the request and returns the report.
// CanProceed is false when any critical issue exists or any regime demands
// human approval.
func (v *Validator) Check(ctx context.Context, trail *stage.Trail, req model.ComplianceRequest) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if hasNone(req.Requirements) || len(req.Requirements) == 0 {
		trail.Reason("no compliance requirements, passing")
		return &model.Report{
			DistributionID: req.DistributionID,
			Compliant:      true,
			CanProceed:     true,
			CheckedAt:      v.now().UTC(),
		}, nil
	}

	var issues []model.Issue
	var required, forbidden []model.Channel
	var disclaimers []string
	requiresApproval := false

	for _, requirement := range req.Requirements {
		r, ok := rules[requirement]
		if !ok {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityWarning,
				Requirement:    requirement,
				Description:    fmt.Sprintf("no rule set for requirement %q", requirement),
				Recommendation: "Contact legal team for guidance",
			})
			continue
		}
		trail.Reason("checking requirement " + string(requirement))

		if len(r.industries) > 0 && !containsIndustry(r.industries, req.Analysis.PrimaryIndustry) {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityWarning,
				Requirement:    requirement,
				Description:    fmt.Sprintf("%s may not apply to the %s industry", r.name, req.Analysis.PrimaryIndustry),
				Recommendation: "Verify applicability with legal team",
			})
		}

		required = append(required, r.requiredChannels...)
		forbidden = append(forbidden, r.forbiddenChannels...)
		disclaimers = append(disclaimers, r.disclaimers...)
		if r.approvalRequired {
			requiresApproval = true
		}
		if r.timing != "" {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityInfo,
				Requirement:    requirement,
				Description:    "Timing requirement: " + r.timing,
				Recommendation: "Schedule distribution accordingly",
			})
		}
	}

	required = dedupeChannels(required)
	forbidden = dedupeChannels(forbidden)
	disclaimers = dedupeStrings(disclaimers)

	if req.Mix != nil {
		issues = append(issues, validateMix(req.Mix, required, forbidden)...)
	}

	var critical, warnings []model.Issue
	for _, is := range issues {
		switch is.Severity {
		case model.SeverityCritical:
			critical = append(critical, is)
		case model.SeverityWarning:
			warnings = append(warnings, is)
		}
	}

	compliant := len(critical) == 0
	canProceed := compliant && !requiresApproval
	trail.Decide("compliant", compliant)
	trail.Decide("can_proceed", canProceed)

	report := &model.Report{
		DistributionID:    req.DistributionID,
		Compliant:         compliant,
		CanProceed:        canProceed,
		Issues:            issues,
		Critical:          critical,
		Warnings:          warnings,
		RequiredChannels:  required,
		ForbiddenChannels: forbidden,
		Disclaimers:       disclaimers,
		RequiresApproval:  requiresApproval,
		CheckedAt:         v.now().UTC(),
	}
	if requiresApproval {
		report.ApprovalWorkflow = "Legal team review required"
	}
	return report, nil
}

func validateMix(mix *model.Mix, required, forbidden []model.Channel) []model.Issue {
	var issues []model.Issue
	for _, ch := range required {
		if !mix.Includes(ch) {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityCritical,
				Requirement:    model.RequirementSECMaterial,
				Description:    fmt.Sprintf("required channel missing: %s", ch),
				Recommendation: fmt.Sprintf("Add %s to the distribution channels", ch),
			})
		}
	}
	for _, ch := range forbidden {
		if mix.Includes(ch) {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityCritical,
				Requirement:    model.RequirementHIPAA,
				Description:    fmt.Sprintf("forbidden channel selected: %s", ch),
				Recommendation: fmt.Sprintf("Remove %s from the distribution", ch),
			})
		}
	}
	return issues
}

func hasNone(reqs []model.Requirement) bool {
	for _, r := range reqs {
		if r == model.RequirementNone {
			return true
		}
	}
	return false
}

func containsIndustry(industries []model.Industry, ind model.Industry) bool {
	for _, i := range industries {
		if i == ind {
			return true
		}
	}
	return false
}

func dedupeChannels(channels []model.Channel) []model.Channel {
	seen := make(map[model.Channel]bool)
	var out []model.Channel
	for _, ch := range channels {
		if !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
