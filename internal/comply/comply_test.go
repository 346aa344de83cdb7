package comply

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

func testValidator() *Validator {
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return New(slog.Default(), func() time.Time { return fixed })
}

func analysisFor(ind model.Industry) *model.Analysis {
	return &model.Analysis{
		DistributionID:  uuid.New(),
		PrimaryIndustry: ind,
		Sentiment:       model.SentimentNeutral,
		Newsworthiness:  0.6,
		ViralPotential:  0.5,
		Summary:         "test analysis",
	}
}

func TestCheck_NoRequirementsPasses(t *testing.T) {
	v := testValidator()
	req := model.ComplianceRequest{
		DistributionID: uuid.New(),
		Analysis:       analysisFor(model.IndustryTechnology),
		Requirements:   []model.Requirement{model.RequirementNone},
	}

	report, err := v.Check(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.True(t, report.Compliant)
	assert.True(t, report.CanProceed)
	assert.Empty(t, report.Issues)
	assert.False(t, report.RequiresApproval)
}

func TestCheck_SECRequiresNewswireAndApproval(t *testing.T) {
	v := testValidator()
	req := model.ComplianceRequest{
		DistributionID: uuid.New(),
		Analysis:       analysisFor(model.IndustryFinance),
		Requirements:   []model.Requirement{model.RequirementSECMaterial},
	}

	report, err := v.Check(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.True(t, report.Compliant, "no critical issues without a mix to violate")
	assert.False(t, report.CanProceed, "approval requirement blocks the gate")
	assert.True(t, report.RequiresApproval)
	assert.Equal(t, []model.Channel{model.ChannelNewswire}, report.RequiredChannels)
	assert.Contains(t, report.Disclaimers, "SEC filing reference")
	assert.NotEmpty(t, report.ApprovalWorkflow)
}

func TestCheck_GDPRAloneProceeds(t *testing.T) {
	v := testValidator()
	req := model.ComplianceRequest{
		DistributionID: uuid.New(),
		Analysis:       analysisFor(model.IndustryTechnology),
		Requirements:   []model.Requirement{model.RequirementGDPR},
	}

	report, err := v.Check(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.True(t, report.Compliant)
	assert.True(t, report.CanProceed)
	assert.Contains(t, report.Disclaimers, "Privacy policy link")
	assert.Empty(t, report.RequiredChannels)
}

func TestCheck_IndustryMismatchWarns(t *testing.T) {
	v := testValidator()
	req := model.ComplianceRequest{
		DistributionID: uuid.New(),
		Analysis:       analysisFor(model.IndustryRetail),
		Requirements:   []model.Requirement{model.RequirementHIPAA},
	}

	report, err := v.Check(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Warnings)
	assert.True(t, report.Compliant, "applicability doubts are warnings, not blockers")
	assert.Equal(t, []model.Channel{model.ChannelSocial}, report.ForbiddenChannels)
}

func TestCheck_MixViolationsAreCritical(t *testing.T) {
	v := testValidator()
	id := uuid.New()
	mix := &model.Mix{
		DistributionID: id,
		Allocations: []model.Allocation{
			{Channel: model.ChannelSocial, Budget: 0},
		},
		Confidence: 0.8,
	}
	req := model.ComplianceRequest{
		DistributionID: id,
		Analysis:       analysisFor(model.IndustryHealthcare),
		Requirements:   []model.Requirement{model.RequirementSOX, model.RequirementHIPAA},
		Mix:            mix,
	}

	report, err := v.Check(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.False(t, report.Compliant)
	assert.False(t, report.CanProceed)
	require.Len(t, report.Critical, 2, "missing newswire and forbidden social media")
}

func TestCheck_DuplicateRequirementsDeduped(t *testing.T) {
	v := testValidator()
	req := model.ComplianceRequest{
		DistributionID: uuid.New(),
		Analysis:       analysisFor(model.IndustryFinance),
		Requirements: []model.Requirement{
			model.RequirementSECMaterial,
			model.RequirementSOX,
		},
	}

	report, err := v.Check(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.Equal(t, []model.Channel{model.ChannelNewswire}, report.RequiredChannels,
		"both regimes require newswire once")
}
