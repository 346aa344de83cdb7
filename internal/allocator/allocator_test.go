package allocator

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
	"github.com/universalnewsoutlet-dev/universalnews/internal/textgen"
)

// fakeGen returns a canned JSON payload, or an error.
type fakeGen struct {
	payload string
	err     error
}

func (f fakeGen) GenerateJSON(ctx context.Context, prompt string, out any) (textgen.Usage, error) {
	usage := textgen.Usage{Calls: 1, PromptTokens: 200, CompletionTokens: 80}
	if f.err != nil {
		return usage, f.err
	}
	if err := json.Unmarshal([]byte(f.payload), out); err != nil {
		return usage, err
	}
	return usage, nil
}

func testAllocator(gen textgen.Provider) *Allocator {
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return New(gen, slog.Default(), func() time.Time { return fixed })
}

func routingRequest(budget float64) model.RoutingRequest {
	return model.RoutingRequest{
		DistributionID: uuid.New(),
		Analysis: &model.Analysis{
			DistributionID:  uuid.New(),
			PrimaryIndustry: model.IndustryTechnology,
			Sentiment:       model.SentimentPositive,
			Newsworthiness:  0.8,
			ViralPotential:  0.8,
			Summary:         "test analysis",
		},
		TargetBudget: budget,
		Urgency:      model.UrgencyStandard,
	}
}

func TestAllocate_FallbackFreeAndPaidChannels(t *testing.T) {
	a := testAllocator(textgen.Noop{})
	req := routingRequest(1000)

	mix, err := a.Allocate(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	require.NoError(t, mix.Validate())

	// Top three by score: social and community (free, viral fit) then newswire.
	require.Len(t, mix.Allocations, 3)
	assert.Equal(t, model.ChannelSocial, mix.Allocations[0].Channel)
	assert.Equal(t, model.ChannelCommunity, mix.Allocations[1].Channel)
	assert.Equal(t, model.ChannelNewswire, mix.Allocations[2].Channel)

	// Free channels carry zero spend but still project the floor reach.
	assert.Zero(t, mix.Allocations[0].Budget)
	assert.Equal(t, freeChannelReach, mix.Allocations[0].ExpectedReach)
	assert.Zero(t, mix.Allocations[1].Budget)

	// Paid channel gets base cost + 30% of the remaining budget.
	assert.InDelta(t, 800, mix.Allocations[2].Budget, 1e-9)
	assert.InDelta(t, 800, mix.TotalAllocated, 1e-9)
	assert.LessOrEqual(t, mix.TotalAllocated, req.TargetBudget)

	assert.Equal(t, 800*200, mix.Allocations[2].ExpectedReach)
	assert.Positive(t, mix.ExpectedBacklinks)
	assert.Positive(t, mix.ExpectedROIPct)
}

func TestAllocate_GuidedAllocationSanitized(t *testing.T) {
	gen := fakeGen{payload: `{
		"allocations": [
			{"channel": "social_media", "budget": -50, "reasoning": "organic"},
			{"channel": "newswire", "budget": 900, "reasoning": "high authority"},
			{"channel": "carrier_pigeon", "budget": 100, "reasoning": "novel"},
			{"channel": "seo_optimization", "budget": 500, "reasoning": "long tail"}
		],
		"strategy": "authority first"
	}`}
	a := testAllocator(gen)
	req := routingRequest(1000)

	trail := stage.NewTrail()
	mix, err := a.Allocate(context.Background(), trail, req)
	require.NoError(t, err)
	require.NoError(t, mix.Validate())

	require.Len(t, mix.Allocations, 3, "unknown channel dropped")
	assert.Zero(t, mix.Allocations[0].Budget, "negative budget clamped to zero")
	assert.InDelta(t, 900, mix.Allocations[1].Budget, 1e-9)
	assert.InDelta(t, 100, mix.Allocations[2].Budget, 1e-9, "clamped to remaining budget")
	assert.InDelta(t, 1000, mix.TotalAllocated, 1e-9)
	assert.LessOrEqual(t, mix.TotalAllocated, req.TargetBudget)
}

func TestAllocate_MalformedGuidanceFallsBack(t *testing.T) {
	gen := fakeGen{payload: `{"allocations": [], "strategy": ""}`}
	a := testAllocator(gen)
	req := routingRequest(1000)

	mix, err := a.Allocate(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	require.Len(t, mix.Allocations, 3, "empty guidance uses the deterministic fallback")
}

func TestAllocate_ZeroEligibleChannels(t *testing.T) {
	a := testAllocator(textgen.Noop{})
	req := routingRequest(1000)
	req.Report = &model.Report{
		DistributionID:    req.DistributionID,
		Compliant:         true,
		CanProceed:        true,
		ForbiddenChannels: model.AllChannels(),
	}

	mix, err := a.Allocate(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	require.NoError(t, mix.Validate())
	assert.Empty(t, mix.Allocations, "an empty mix is a valid planning outcome")
	assert.Zero(t, mix.TotalAllocated)
	assert.Contains(t, mix.Strategy, "No eligible channels")
}

func TestAllocate_ForcedChannelsWin(t *testing.T) {
	a := testAllocator(textgen.Noop{})
	req := routingRequest(600)
	req.ForcedChannels = []model.Channel{model.ChannelOwned}

	mix, err := a.Allocate(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	require.Len(t, mix.Allocations, 1)
	assert.Equal(t, model.ChannelOwned, mix.Allocations[0].Channel)
	assert.Contains(t, mix.RiskFactors[0], "Single channel")
}

func TestAllocate_RequiredChannelSurvivesForbidden(t *testing.T) {
	_ = testAllocator(textgen.Noop{})
	req := routingRequest(1000)
	req.Report = &model.Report{
		DistributionID:    req.DistributionID,
		RequiredChannels:  []model.Channel{model.ChannelNewswire},
		ForbiddenChannels: []model.Channel{model.ChannelNewswire, model.ChannelSocial},
	}

	eligible := eligibleChannels(req)
	assert.Contains(t, eligible, model.ChannelNewswire)
	assert.NotContains(t, eligible, model.ChannelSocial)
}

func TestAllocate_TimingStaggeredForStandardUrgency(t *testing.T) {
	a := testAllocator(textgen.Noop{})
	req := routingRequest(1000)

	mix, err := a.Allocate(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.Equal(t, "Deploy first (T+0)", mix.Timing[mix.Allocations[0].Channel])
	assert.Equal(t, "Deploy after 2 hours (T+2h)", mix.Timing[mix.Allocations[1].Channel])
}

func TestAllocate_TimingImmediateDeploysAllNow(t *testing.T) {
	a := testAllocator(textgen.Noop{})
	req := routingRequest(1000)
	req.Urgency = model.UrgencyImmediate

	mix, err := a.Allocate(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	for ch, rec := range mix.Timing {
		assert.Equal(t, "Deploy immediately", rec, "channel %s", ch)
	}
}
