// Package classify implements the default content classifier: a
// deterministic, rule-based market read of a piece of content. It needs no
// network and produces the same Analysis for the same input, which makes it
// the safe default when no smarter classifier is plugged in.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

var industryKeywords = map[model.Industry][]string{
	model.IndustryTechnology: {
		"ai", "artificial intelligence", "software", "app", "platform",
		"cloud", "saas", "tech", "digital", "algorithm", "data",
		"machine learning", "automation", "api", "developer",
	},
	model.IndustryFinance: {
		"investment", "funding", "revenue", "profit", "bank",
		"financial", "capital", "investor", "stock", "market",
		"fintech", "payment", "loan", "credit", "trading",
	},
	model.IndustryHealthcare: {
		"health", "medical", "patient", "hospital", "clinic",
		"pharmaceutical", "drug", "biotech", "therapy", "diagnosis",
		"healthcare", "medicine", "disease", "treatment",
	},
	model.IndustryEnergy: {
		"energy", "power", "electricity", "solar", "renewable",
		"oil", "gas", "battery", "grid", "utilities", "fuel",
	},
	model.IndustryRetail: {
		"retail", "store", "shopping", "consumer", "ecommerce",
		"merchandise", "brand", "product", "sales", "customer",
	},
}

var techOutlets = []string{
	"TechCrunch", "The Verge", "Ars Technica", "Wired", "VentureBeat",
	"TechRadar", "Engadget", "ZDNet", "CNET", "Gizmodo",
}

var businessOutlets = []string{
	"Wall Street Journal", "Bloomberg", "Forbes", "Fortune", "Reuters",
	"Financial Times", "Business Insider", "CNBC", "MarketWatch",
}

var generalOutlets = []string{
	"Associated Press", "Reuters", "CNN", "BBC", "The New York Times",
	"Washington Post", "USA Today", "The Guardian",
}

var positiveCues = []string{
	"launch", "growth", "record", "award", "breakthrough", "success",
	"expand", "milestone", "partnership", "innovation", "win",
}

var negativeCues = []string{
	"lawsuit", "breach", "decline", "loss", "layoff", "recall",
	"fraud", "shutdown", "failure", "scandal", "outage",
}

var industryAudiences = map[model.Industry][]string{
	model.IndustryTechnology: {"developers", "tech executives", "investors"},
	model.IndustryFinance:    {"investors", "financial analysts", "traders"},
	model.IndustryHealthcare: {"healthcare professionals", "patients", "administrators"},
	model.IndustryEnergy:     {"utility operators", "policy makers", "investors"},
	model.IndustryRetail:     {"consumers", "retail buyers", "brand managers"},
}

var (
	capitalizedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	lowerWord         = regexp.MustCompile(`\b[a-z]+\b`)
)

// Classifier is the built-in rule-based content classifier.
type Classifier struct {
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Classifier. A nil clock means time.Now.
func New(logger *slog.Logger, now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{logger: logger, now: now}
}

// Analyze produces the full content analysis for one distribution.
func (c *Classifier) Analyze(ctx context.Context, trail *stage.Trail, req model.AnalysisRequest) (*model.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	primary, secondary := c.classifyIndustries(req)
	trail.Decide("industry classification", string(primary))

	topics := extractTopics(req.Headline, req.Content)
	trail.Reason(fmt.Sprintf("extracted %d topics", len(topics)))

	entities := extractEntities(req.Content)
	trail.Reason(fmt.Sprintf("captured %d entities", len(entities)))

	keywords := extractKeywords(req.Headline, req.Content, topics)
	audiences := c.identifyAudiences(primary, req.ProvidedAudiences)
	outlets := matchOutlets(primary)

	sentiment := analyzeSentiment(req.Headline, req.Content)
	trail.Decide("sentiment", string(sentiment))

	newsworthiness, viral := score(primary, entities)
	trail.Decide("newsworthiness", newsworthiness)
	trail.Decide("viral_potential", viral)

	angles := []string{
		fmt.Sprintf("Industry impact: what this means for %s", primary),
		"Business strategy: competitive positioning and market timing",
		"Audience benefit: concrete outcomes for end users",
	}

	summary := buildSummary(primary, secondary, topics, audiences, newsworthiness, viral)

	return &model.Analysis{
		DistributionID:      req.DistributionID,
		PrimaryIndustry:     primary,
		SecondaryIndustries: secondary,
		Topics:              topics,
		Entities:            entities,
		Keywords:            keywords,
		Audiences:           audiences,
		Outlets:             outlets,
		Sentiment:           sentiment,
		Newsworthiness:      newsworthiness,
		ViralPotential:      viral,
		Summary:             summary,
		Angles:              angles,
		ProcessedAt:         c.now().UTC(),
	}, nil
}

func (c *Classifier) classifyIndustries(req model.AnalysisRequest) (model.Industry, []model.Industry) {
	if len(req.ProvidedIndustries) > 0 {
		return req.ProvidedIndustries[0], req.ProvidedIndustries[1:]
	}

	text := strings.ToLower(req.Headline + " " + req.Content)

	type hit struct {
		industry model.Industry
		count    int
	}
	var hits []hit
	for industry, keywords := range industryKeywords {
		count := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{industry, count})
		}
	}
	if len(hits) == 0 {
		return model.IndustryOther, nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].industry < hits[j].industry
	})

	var secondary []model.Industry
	for _, h := range hits[1:] {
		secondary = append(secondary, h.industry)
		if len(secondary) == 2 {
			break
		}
	}
	return hits[0].industry, secondary
}

func extractTopics(headline, content string) []string {
	phrases := capitalizedPhrase.FindAllString(headline+" "+content, -1)
	seen := make(map[string]bool)
	var topics []string
	for _, p := range phrases {
		if len(strings.Fields(p)) > 3 {
			continue
		}
		topic := strings.ToLower(p)
		if seen[topic] {
			continue
		}
		seen[topic] = true
		topics = append(topics, topic)
		if len(topics) == 5 {
			break
		}
	}
	return topics
}

func extractEntities(content string) []model.Entity {
	phrases := capitalizedPhrase.FindAllString(content, -1)
	seen := make(map[string]bool)
	var entities []model.Entity
	for _, p := range phrases {
		// Multi-word capitalized phrases are the strongest org/name signal.
		if len(strings.Fields(p)) < 2 {
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		entities = append(entities, model.Entity{Text: p, Type: "ORG", Relevance: 0.7})
		if len(entities) == 20 {
			break
		}
	}
	return entities
}

func extractKeywords(headline, content string, topics []string) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(kw string) {
		if !seen[kw] && len(keywords) < 15 {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	for _, t := range topics {
		add(t)
	}

	words := lowerWord.FindAllString(strings.ToLower(headline+" "+content), -1)
	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		if len(w) <= 4 {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	for i, w := range order {
		if i == 10 {
			break
		}
		add(w)
	}
	return keywords
}

func (c *Classifier) identifyAudiences(primary model.Industry, provided []string) []model.Audience {
	if len(provided) > 0 {
		audiences := make([]model.Audience, 0, len(provided))
		for _, name := range provided {
			audiences = append(audiences, model.Audience{
				Name:      name,
				Relevance: 0.9,
				Traits:    []string{"provided by caller"},
			})
		}
		return audiences
	}

	names, ok := industryAudiences[primary]
	if !ok {
		names = []string{"general public"}
	}
	audiences := make([]model.Audience, 0, len(names))
	for _, name := range names {
		audiences = append(audiences, model.Audience{Name: name, Relevance: 0.7})
	}
	return audiences
}

func matchOutlets(primary model.Industry) []model.OutletMatch {
	var pool []string
	switch primary {
	case model.IndustryTechnology:
		pool = append(append([]string{}, techOutlets...), businessOutlets...)
	case model.IndustryFinance:
		pool = businessOutlets
	default:
		pool = append(append([]string{}, generalOutlets...), businessOutlets...)
	}

	matches := make([]model.OutletMatch, 0, 10)
	for i, name := range pool {
		if i == 10 {
			break
		}
		relevance := 0.9 - float64(i)*0.05
		if relevance < 0.6 {
			relevance = 0.6
		}
		matches = append(matches, model.OutletMatch{
			Name:            name,
			Type:            "publication",
			Relevance:       relevance,
			AudienceOverlap: 0.8,
		})
	}
	return matches
}

func analyzeSentiment(headline, content string) model.Sentiment {
	text := strings.ToLower(headline + " " + content)
	positive, negative := 0, 0
	for _, cue := range positiveCues {
		positive += strings.Count(text, cue)
	}
	for _, cue := range negativeCues {
		negative += strings.Count(text, cue)
	}
	switch {
	case positive > negative:
		return model.SentimentPositive
	case negative > positive:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func score(primary model.Industry, entities []model.Entity) (newsworthiness, viral float64) {
	newsworthiness = 0.5
	if len(entities) > 5 {
		newsworthiness = 0.7
	}
	viral = 0.4
	if primary == model.IndustryTechnology {
		viral = 0.6
	}
	return newsworthiness, viral
}

func buildSummary(primary model.Industry, secondary []model.Industry, topics []string, audiences []model.Audience, newsworthiness, viral float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Content classified as %s", primary)
	if len(secondary) > 0 {
		names := make([]string, len(secondary))
		for i, ind := range secondary {
			names[i] = string(ind)
		}
		fmt.Fprintf(&b, " with relevance to %s", strings.Join(names, ", "))
	}
	b.WriteString(".")
	if len(topics) > 0 {
		n := len(topics)
		if n > 3 {
			n = 3
		}
		fmt.Fprintf(&b, " Key topics include %s.", strings.Join(topics[:n], ", "))
	}
	if len(audiences) > 0 {
		n := len(audiences)
		if n > 3 {
			n = 3
		}
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = audiences[i].Name
		}
		fmt.Fprintf(&b, " Primary audiences: %s.", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, " Newsworthiness: %.2f, Viral potential: %.2f.", newsworthiness, viral)
	return b.String()
}
