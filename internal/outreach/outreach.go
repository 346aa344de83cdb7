// Package outreach implements the default journalist targeting provider.
// It scores a built-in journalist roster against the content analysis and
// produces personalized pitches for the top matches. Deterministic, so the
// same analysis always yields the same target list.
package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

// costPerTarget is the per-journalist outreach cost used to bound the
// target list by the channel budget.
const costPerTarget = 6.0

type journalist struct {
	id         string
	name       string
	email      string
	outlet     string
	beats      []string
	industries []model.Industry
	engagement float64
}

// Provider is the built-in journalist targeting provider.
type Provider struct {
	logger *slog.Logger
	now    func() time.Time
	roster []journalist
}

// New builds a Provider with the built-in roster. A nil clock means time.Now.
func New(logger *slog.Logger, now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{logger: logger, now: now, roster: buildRoster()}
}

func buildRoster() []journalist {
	roster := []journalist{
		{"j001", "Sarah Chen", "schen@techcrunch.com", "TechCrunch",
			[]string{"artificial intelligence", "machine learning", "startups", "enterprise software"},
			[]model.Industry{model.IndustryTechnology}, 0.35},
		{"j002", "Michael Rodriguez", "mrodriguez@bloomberg.com", "Bloomberg",
			[]string{"finance", "venture capital", "ipos", "markets"},
			[]model.Industry{model.IndustryFinance, model.IndustryTechnology}, 0.28},
		{"j003", "Emily Watson", "ewatson@theverge.com", "The Verge",
			[]string{"consumer tech", "ai", "product launches", "reviews"},
			[]model.Industry{model.IndustryTechnology}, 0.42},
		{"j004", "David Kim", "dkim@wsj.com", "Wall Street Journal",
			[]string{"enterprise", "cloud computing", "cybersecurity", "business technology"},
			[]model.Industry{model.IndustryTechnology, model.IndustryFinance}, 0.31},
		{"j005", "Jessica Martinez", "jmartinez@forbes.com", "Forbes",
			[]string{"startups", "entrepreneurship", "funding", "innovation"},
			[]model.Industry{model.IndustryTechnology, model.IndustryFinance}, 0.38},
		{"j006", "Robert Thompson", "rthompson@reuters.com", "Reuters",
			[]string{"breaking news", "technology", "corporate", "announcements"},
			[]model.Industry{model.IndustryTechnology}, 0.25},
		{"j007", "Amanda Foster", "afoster@wired.com", "Wired",
			[]string{"emerging tech", "ai ethics", "future of work", "digital transformation"},
			[]model.Industry{model.IndustryTechnology}, 0.33},
		{"j008", "James Wilson", "jwilson@ft.com", "Financial Times",
			[]string{"fintech", "banking", "payments", "financial services"},
			[]model.Industry{model.IndustryFinance}, 0.29},
		{"j009", "Lisa Anderson", "landerson@businessinsider.com", "Business Insider",
			[]string{"tech industry", "startups", "leadership", "strategy"},
			[]model.Industry{model.IndustryTechnology, model.IndustryFinance}, 0.36},
		{"j010", "Christopher Lee", "clee@zdnet.com", "ZDNet",
			[]string{"enterprise tech", "cloud", "saas", "it infrastructure"},
			[]model.Industry{model.IndustryTechnology}, 0.27},
	}

	// Pad the roster with generic beat reporters so industries outside the
	// curated ten still find candidates.
	outlets := []string{"TechInsider", "NewsWire", "Industry Daily"}
	beatPool := [][]string{
		{"technology", "business"},
		{"innovation", "startups"},
		{"business", "innovation"},
		{"startups", "technology"},
	}
	industries := []model.Industry{
		model.IndustryTechnology, model.IndustryFinance, model.IndustryHealthcare,
		model.IndustryEnergy, model.IndustryRetail, model.IndustryManufacturing,
		model.IndustryRealEstate, model.IndustryTelecom, model.IndustryTransport,
		model.IndustryEntertainment, model.IndustryEducation, model.IndustryGovernment,
		model.IndustryNonprofit, model.IndustryOther,
	}
	for i := 11; i <= 100; i++ {
		roster = append(roster, journalist{
			id:         fmt.Sprintf("j%03d", i),
			name:       fmt.Sprintf("Beat Reporter %d", i),
			email:      fmt.Sprintf("reporter%d@newsoutlet.com", i),
			outlet:     outlets[i%len(outlets)],
			beats:      beatPool[i%len(beatPool)],
			industries: []model.Industry{industries[i%len(industries)]},
			engagement: 0.15 + float64(i%7)*0.05,
		})
	}
	return roster
}

// Target selects and pitches the most relevant journalists for the content.
func (p *Provider) Target(ctx context.Context, trail *stage.Trail, req model.TargetingRequest) (*model.TargetingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := p.discover(req.Analysis)
	trail.Reason(fmt.Sprintf("discovered %d candidate journalists", len(candidates)))

	scored := scoreCandidates(candidates, req.Analysis)

	count := affordableCount(req.TargetCount, req.Budget, len(scored))
	trail.Decide("selected_targets", count)
	selected := scored[:count]

	targets := make([]model.Target, 0, len(selected))
	for _, s := range selected {
		targets = append(targets, pitch(s.journalist, s.score, req.Analysis))
	}

	avg := 0.0
	for _, t := range targets {
		avg += t.Relevance
	}
	if len(targets) > 0 {
		avg /= float64(len(targets))
	}

	return &model.TargetingResult{
		DistributionID:   req.DistributionID,
		Targets:          targets,
		TotalTargets:     len(targets),
		AverageRelevance: avg,
		StrategyNotes:    strategyNotes(targets, req.Analysis),
		CreatedAt:        p.now().UTC(),
	}, nil
}

func (p *Provider) discover(analysis *model.Analysis) []journalist {
	var candidates []journalist
	for _, j := range p.roster {
		if !coversIndustry(j, analysis.PrimaryIndustry) {
			continue
		}
		candidates = append(candidates, j)
	}
	return candidates
}

type scoredJournalist struct {
	journalist journalist
	score      float64
}

func scoreCandidates(candidates []journalist, analysis *model.Analysis) []scoredJournalist {
	scored := make([]scoredJournalist, 0, len(candidates))
	for _, j := range candidates {
		score := 0.5
		if coversIndustry(j, analysis.PrimaryIndustry) {
			score += 0.2
		}

		beatText := strings.ToLower(strings.Join(j.beats, " "))
		matches := 0
		for _, topic := range analysis.Topics {
			if strings.Contains(beatText, strings.ToLower(topic)) {
				matches++
			}
		}
		topicBonus := float64(matches) * 0.1
		if topicBonus > 0.3 {
			topicBonus = 0.3
		}
		score += topicBonus
		score += j.engagement * 0.2
		if score > 1 {
			score = 1
		}
		scored = append(scored, scoredJournalist{j, score})
	}
	sort.SliceStable(scored, func(i, k int) bool { return scored[i].score > scored[k].score })
	return scored
}

func affordableCount(requested int, budget float64, available int) int {
	count := requested
	if budget > 0 {
		affordable := int(budget / costPerTarget)
		if affordable < count {
			count = affordable
		}
	}
	if available < count {
		count = available
	}
	if count < 0 {
		count = 0
	}
	return count
}

func pitch(j journalist, score float64, analysis *model.Analysis) model.Target {
	topic := "industry update"
	if len(analysis.Topics) > 0 {
		topic = analysis.Topics[0]
	}
	beats := j.beats
	if len(beats) > 2 {
		beats = beats[:2]
	}

	subject := fmt.Sprintf("Story opportunity: %s - %s", analysis.PrimaryIndustry, topic)
	body := fmt.Sprintf(
		"Hi %s,\n\nI wanted to share a story that aligns with your coverage of %s.\n\n%s\n\n"+
			"I think this would resonate with %s's audience. Would you be interested in learning more?\n\nBest regards",
		j.name, strings.Join(beats, ", "), analysis.Summary, j.outlet)

	return model.Target{
		JournalistID:       j.id,
		Name:               j.name,
		Email:              j.email,
		Outlet:             j.outlet,
		Beats:              j.beats,
		Relevance:          score,
		Subject:            subject,
		Pitch:              body,
		WhyRelevant:        fmt.Sprintf("Matches %s's beat: %s", j.name, strings.Join(beats, ", ")),
		ResponseLikelihood: j.engagement,
	}
}

func strategyNotes(targets []model.Target, analysis *model.Analysis) string {
	if len(targets) == 0 {
		return "No journalists targeted"
	}

	seen := make(map[string]bool)
	var outlets []string
	for i, t := range targets {
		if i == 10 {
			break
		}
		if !seen[t.Outlet] {
			seen[t.Outlet] = true
			outlets = append(outlets, t.Outlet)
		}
	}
	avgResponse := 0.0
	for _, t := range targets {
		avgResponse += t.ResponseLikelihood
	}
	avgResponse /= float64(len(targets))

	named := outlets
	if len(named) > 5 {
		named = named[:5]
	}
	return fmt.Sprintf(
		"Targeting %d journalists across %d outlets including %s. "+
			"Average response likelihood: %.0f%%. "+
			"Strategy: personalized outreach emphasizing %s relevance. "+
			"Expected %d responses based on historical engagement.",
		len(targets), len(outlets), strings.Join(named, ", "),
		avgResponse*100, analysis.PrimaryIndustry,
		int(float64(len(targets))*avgResponse))
}

func coversIndustry(j journalist, ind model.Industry) bool {
	for _, i := range j.industries {
		if i == ind {
			return true
		}
	}
	return false
}
