// Package allocator implements the channel budget allocator: it filters
// channels by compliance verdicts, scores them against the content analysis,
// asks the generative text provider for a guided allocation, and falls back
// to a deterministic proportional split when guidance is unavailable or
// malformed. Allocated budget never exceeds the requested budget.
package allocator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
	"github.com/universalnewsoutlet-dev/universalnews/internal/textgen"
)

// perf is one channel's historical performance profile.
type perf struct {
	baseCost      float64
	reachPerUSD   float64
	pickupRate    float64
	roiMultiplier float64
	industries    []model.Industry // empty means all industries
	urgencyBonus  map[model.Urgency]float64
}

var performance = map[model.Channel]perf{
	model.ChannelNewswire: {
		baseCost: 500, reachPerUSD: 200, pickupRate: 0.15, roiMultiplier: 4.5,
		industries:   []model.Industry{model.IndustryTechnology, model.IndustryFinance},
		urgencyBonus: map[model.Urgency]float64{model.UrgencyImmediate: 1.3, model.UrgencyUrgent: 1.2},
	},
	model.ChannelOutreach: {
		baseCost: 300, reachPerUSD: 150, pickupRate: 0.25, roiMultiplier: 5.0,
		urgencyBonus: map[model.Urgency]float64{model.UrgencyImmediate: 1.1},
	},
	model.ChannelSocial: {
		baseCost: 0, reachPerUSD: 500, pickupRate: 0.05, roiMultiplier: 3.0,
		industries:   []model.Industry{model.IndustryTechnology, model.IndustryRetail},
		urgencyBonus: map[model.Urgency]float64{model.UrgencyImmediate: 1.5, model.UrgencyUrgent: 1.3},
	},
	model.ChannelOwned: {
		baseCost: 0, reachPerUSD: 300, pickupRate: 0.02, roiMultiplier: 2.0,
	},
	model.ChannelPaid: {
		baseCost: 1000, reachPerUSD: 100, pickupRate: 0.08, roiMultiplier: 3.5,
		industries:   []model.Industry{model.IndustryRetail, model.IndustryFinance},
		urgencyBonus: map[model.Urgency]float64{model.UrgencyImmediate: 1.2},
	},
	model.ChannelSEO: {
		baseCost: 200, reachPerUSD: 400, pickupRate: 0.10, roiMultiplier: 6.0,
	},
	model.ChannelCommunity: {
		baseCost: 0, reachPerUSD: 250, pickupRate: 0.12, roiMultiplier: 4.0,
		industries:   []model.Industry{model.IndustryTechnology},
		urgencyBonus: map[model.Urgency]float64{model.UrgencyImmediate: 1.4},
	},
}

// freeChannelReach is the projected reach for a channel with no spend.
const freeChannelReach = 10000

// pickupValueUSD is the assumed earned-media value of one pickup, used for
// the aggregate ROI projection.
const pickupValueUSD = 1500

// Allocator is the channel budget allocator.
type Allocator struct {
	gen    textgen.Provider
	logger *slog.Logger
	now    func() time.Time
}

// New builds an Allocator. A nil provider degrades to the deterministic
// fallback on every call; a nil clock means time.Now.
func New(gen textgen.Provider, logger *slog.Logger, now func() time.Time) *Allocator {
	if gen == nil {
		gen = textgen.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	return &Allocator{gen: gen, logger: logger, now: now}
}

// Allocate produces the channel mix for one distribution.
func (a *Allocator) Allocate(ctx context.Context, trail *stage.Trail, req model.RoutingRequest) (*model.Mix, error) {
	eligible := eligibleChannels(req)
	trail.Decide("eligible_channels", channelNames(eligible))

	scored := scoreChannels(eligible, req.Analysis, req.Urgency, req.TargetBudget)

	allocations := a.guidedAllocation(ctx, trail, scored, req)
	if len(allocations) == 0 {
		trail.Reason("guided allocation unavailable, using proportional fallback")
		allocations = fallbackAllocation(scored, req.TargetBudget)
	}

	total := 0.0
	for _, alloc := range allocations {
		total += alloc.Budget
	}

	reach, pickups, backlinks, roiPct := projections(allocations, total)

	mix := &model.Mix{
		DistributionID:    req.DistributionID,
		Allocations:       allocations,
		TotalAllocated:    total,
		ExpectedReach:     reach,
		ExpectedPickups:   pickups,
		ExpectedBacklinks: backlinks,
		ExpectedROIPct:    roiPct,
		Strategy:          strategySummary(allocations, req),
		Timing:            timing(allocations, req.Urgency),
		RiskFactors:       risks(allocations, req.Analysis),
		Confidence:        confidence(allocations, req.Analysis),
		CreatedAt:         a.now().UTC(),
	}
	trail.Decide("allocated_channels", len(allocations))
	trail.Decide("total_allocated", total)
	return mix, nil
}

// eligibleChannels applies forced channels and the compliance verdict.
// A forced list wins outright. Otherwise every channel minus the forbidden
// ones is eligible, and compliance-required channels always survive.
func eligibleChannels(req model.RoutingRequest) []model.Channel {
	if len(req.ForcedChannels) > 0 {
		return req.ForcedChannels
	}

	forbidden := make(map[model.Channel]bool)
	required := make(map[model.Channel]bool)
	if req.Report != nil {
		for _, ch := range req.Report.ForbiddenChannels {
			forbidden[ch] = true
		}
		for _, ch := range req.Report.RequiredChannels {
			required[ch] = true
		}
	}

	var eligible []model.Channel
	for _, ch := range model.AllChannels() {
		if forbidden[ch] && !required[ch] {
			continue
		}
		eligible = append(eligible, ch)
	}
	return eligible
}

type scoredChannel struct {
	channel model.Channel
	score   float64
	perf    perf
}

func scoreChannels(channels []model.Channel, analysis *model.Analysis, urgency model.Urgency, budget float64) []scoredChannel {
	scored := make([]scoredChannel, 0, len(channels))
	for _, ch := range channels {
		p, ok := performance[ch]
		if !ok {
			continue
		}

		score := 0.5
		if len(p.industries) == 0 || containsIndustry(p.industries, analysis.PrimaryIndustry) {
			score += 0.2
		}
		if mult := p.urgencyBonus[urgency]; mult > 1.0 {
			score += 0.1 * (mult - 1.0)
		}
		if analysis.Newsworthiness > 0.7 && ch.HighAuthority() {
			score += 0.15
		}
		if analysis.ViralPotential > 0.7 && ch.Communal() {
			score += 0.15
		}
		if p.baseCost == 0 {
			score += 0.1
		} else if p.baseCost < budget*0.3 {
			score += 0.05
		}
		if score > 1 {
			score = 1
		}
		scored = append(scored, scoredChannel{ch, score, p})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored
}

// guidance is the JSON shape requested from the text provider.
type guidance struct {
	Allocations []struct {
		Channel   string  `json:"channel"`
		Budget    float64 `json:"budget"`
		Reasoning string  `json:"reasoning"`
	} `json:"allocations"`
	Strategy string `json:"strategy"`
}

// guidedAllocation asks the text provider to split the budget across the
// top-scored channels and sanitizes whatever comes back. Returns nil when
// the provider is unavailable or produced nothing usable.
func (a *Allocator) guidedAllocation(ctx context.Context, trail *stage.Trail, scored []scoredChannel, req model.RoutingRequest) []model.Allocation {
	if len(scored) == 0 {
		return nil
	}

	top := scored
	if len(top) > 7 {
		top = top[:7]
	}

	var resp guidance
	usage, err := a.gen.GenerateJSON(ctx, allocationPrompt(top, req), &resp)
	trail.AddUsage(usage.Calls, usage.PromptTokens, usage.CompletionTokens)
	if err != nil {
		a.logger.Warn("guided allocation unavailable", "error", err)
		return nil
	}

	byChannel := make(map[model.Channel]perf, len(top))
	for _, s := range top {
		byChannel[s.channel] = s.perf
	}

	remaining := req.TargetBudget
	var allocations []model.Allocation
	for _, alloc := range resp.Allocations {
		ch := model.Channel(alloc.Channel)
		p, ok := byChannel[ch]
		if !ok {
			a.logger.Warn("skipping unknown channel in guidance", "channel", alloc.Channel)
			continue
		}
		budget := alloc.Budget
		if budget < 0 {
			budget = 0
		}
		if budget > remaining {
			budget = remaining
		}
		rationale := alloc.Reasoning
		if rationale == "" {
			rationale = "guided recommendation"
		}
		allocations = append(allocations, buildAllocation(ch, budget, p, rationale))
		remaining -= budget
	}
	if len(allocations) > 0 && resp.Strategy != "" {
		trail.Decide("guided_strategy", resp.Strategy)
	}
	return allocations
}

func allocationPrompt(top []scoredChannel, req model.RoutingRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimize budget allocation for news distribution.\n\n")
	fmt.Fprintf(&b, "Total budget: $%.2f\nUrgency: %s\nIndustry: %s\n\nAvailable channels:\n",
		req.TargetBudget, req.Urgency, req.Analysis.PrimaryIndustry)
	for _, s := range top {
		fmt.Fprintf(&b, "- %s: score %.2f, base cost $%.0f, ROI %.1fx, reach %.0f/dollar\n",
			s.channel, s.score, s.perf.baseCost, s.perf.roiMultiplier, s.perf.reachPerUSD)
	}
	b.WriteString(`
Guidelines:
1. Allocate to 2-4 channels (don't spread too thin)
2. Prioritize higher-scoring channels
3. Always include at least one major channel (newswire or journalist outreach)
4. Free channels (cost=0) should always be included
5. Spend at least 70% of the budget, never more than 100%

Return JSON:
{"allocations": [{"channel": "newswire", "budget": 600, "reasoning": "..."}], "strategy": "..."}`)
	return b.String()
}

// fallbackAllocation is the deterministic split used when guidance fails:
// the top three scored channels, free channels carried at zero spend, paid
// channels funded at base cost plus 30% of whatever remains.
func fallbackAllocation(scored []scoredChannel, budget float64) []model.Allocation {
	remaining := budget
	var allocations []model.Allocation
	for i, s := range scored {
		if i == 3 {
			break
		}
		var alloc float64
		if s.perf.baseCost > 0 {
			if remaining <= 0 {
				break
			}
			alloc = s.perf.baseCost + remaining*0.3
			if alloc > remaining {
				alloc = remaining
			}
		}
		allocations = append(allocations,
			buildAllocation(s.channel, alloc, s.perf, fmt.Sprintf("Score %.2f: %s recommended", s.score, s.channel)))
		remaining -= alloc
	}
	return allocations
}

func buildAllocation(ch model.Channel, budget float64, p perf, rationale string) model.Allocation {
	reach := int(budget * p.reachPerUSD)
	if budget == 0 {
		reach = freeChannelReach
	}
	return model.Allocation{
		Channel:         ch,
		Budget:          budget,
		ExpectedReach:   reach,
		ExpectedPickups: int(float64(reach) * p.pickupRate),
		ExpectedROI:     p.roiMultiplier * 100,
		Rationale:       rationale,
	}
}

func projections(allocations []model.Allocation, spend float64) (reach, pickups, backlinks int, roiPct float64) {
	for _, a := range allocations {
		reach += a.ExpectedReach
		pickups += a.ExpectedPickups
	}
	backlinks = pickups * 8
	if spend > 0 {
		roiPct = (float64(pickups)*pickupValueUSD - spend) / spend * 100
	}
	return reach, pickups, backlinks, roiPct
}

func strategySummary(allocations []model.Allocation, req model.RoutingRequest) string {
	if len(allocations) == 0 {
		return "No eligible channels: nothing to distribute"
	}
	parts := make([]string, len(allocations))
	reach, pickups := 0, 0
	for i, a := range allocations {
		parts[i] = fmt.Sprintf("%s ($%.0f)", a.Channel, a.Budget)
		reach += a.ExpectedReach
		pickups += a.ExpectedPickups
	}
	return fmt.Sprintf(
		"Multi-channel distribution across %d channels: %s. Optimized for the %s industry with %s urgency. "+
			"Expected to reach %d people with %d media pickups.",
		len(allocations), strings.Join(parts, ", "),
		req.Analysis.PrimaryIndustry, req.Urgency, reach, pickups)
}

func timing(allocations []model.Allocation, urgency model.Urgency) map[model.Channel]string {
	out := make(map[model.Channel]string, len(allocations))
	rushed := urgency == model.UrgencyImmediate || urgency == model.UrgencyUrgent
	for i, a := range allocations {
		switch {
		case rushed:
			out[a.Channel] = "Deploy immediately"
		case i == 0:
			out[a.Channel] = "Deploy first (T+0)"
		case i == 1:
			out[a.Channel] = "Deploy after 2 hours (T+2h)"
		default:
			out[a.Channel] = "Deploy after 4 hours (T+4h)"
		}
	}
	return out
}

func risks(allocations []model.Allocation, analysis *model.Analysis) []string {
	var out []string
	total := 0.0
	for _, a := range allocations {
		total += a.Budget
	}
	if len(allocations) == 1 {
		out = append(out, "Single channel dependency, no redundancy")
	}
	if total > 2000 {
		out = append(out, "High budget allocation: ensure content quality justifies spend")
	}
	if analysis.Newsworthiness < 0.5 {
		for _, a := range allocations {
			if a.Budget > 500 {
				out = append(out, "Low newsworthiness score with premium channels, may underperform")
				break
			}
		}
	}
	if len(out) == 0 {
		out = []string{"No significant risks identified"}
	}
	return out
}

func confidence(allocations []model.Allocation, analysis *model.Analysis) float64 {
	c := 0.7
	if len(allocations) >= 3 {
		c += 0.1
	}
	if analysis.Newsworthiness > 0.7 {
		c += 0.1
	}
	if analysis.Newsworthiness < 0.4 {
		c -= 0.2
	}
	if c > 1 {
		c = 1
	}
	if c < 0.3 {
		c = 0.3
	}
	return c
}

func containsIndustry(industries []model.Industry, ind model.Industry) bool {
	for _, i := range industries {
		if i == ind {
			return true
		}
	}
	return false
}

func channelNames(channels []model.Channel) []string {
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = string(ch)
	}
	return names
}
