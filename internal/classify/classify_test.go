package classify

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
)

func testClassifier() *Classifier {
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return New(slog.Default(), func() time.Time { return fixed })
}

func techRequest() model.AnalysisRequest {
	return model.AnalysisRequest{
		DistributionID: uuid.New(),
		Headline:       "Acme Robotics Launches Cloud Platform For Machine Learning",
		Content: strings.Repeat("Acme Robotics announced a new cloud platform for machine learning "+
			"and artificial intelligence workloads. The software gives every developer access to "+
			"automation tooling through a single api. ", 3),
	}
}

func TestAnalyze_TechnologyClassification(t *testing.T) {
	c := testClassifier()
	req := techRequest()

	analysis, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	require.NoError(t, analysis.Validate())

	assert.Equal(t, req.DistributionID, analysis.DistributionID)
	assert.Equal(t, model.IndustryTechnology, analysis.PrimaryIndustry)
	assert.Equal(t, model.SentimentPositive, analysis.Sentiment)
	assert.InDelta(t, 0.6, analysis.ViralPotential, 1e-9)
	assert.NotEmpty(t, analysis.Topics)
	assert.NotEmpty(t, analysis.Keywords)
	assert.NotEmpty(t, analysis.Outlets)
	assert.Contains(t, analysis.Summary, "technology")
}

func TestAnalyze_Deterministic(t *testing.T) {
	c := testClassifier()
	req := techRequest()

	first, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	second, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_ProvidedIndustriesWin(t *testing.T) {
	c := testClassifier()
	req := techRequest()
	req.ProvidedIndustries = []model.Industry{model.IndustryHealthcare, model.IndustryFinance}

	analysis, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.Equal(t, model.IndustryHealthcare, analysis.PrimaryIndustry)
	assert.Equal(t, []model.Industry{model.IndustryFinance}, analysis.SecondaryIndustries)
}

func TestAnalyze_NoKeywordMatchFallsBackToOther(t *testing.T) {
	c := testClassifier()
	req := model.AnalysisRequest{
		DistributionID: uuid.New(),
		Headline:       "Village Fair Returns This Weekend",
		Content: strings.Repeat("The annual village fair returns this weekend with rides, "+
			"games and food from local vendors. ", 4),
	}

	analysis, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.Equal(t, model.IndustryOther, analysis.PrimaryIndustry)
	assert.Empty(t, analysis.SecondaryIndustries)
}

func TestAnalyze_NegativeSentiment(t *testing.T) {
	c := testClassifier()
	req := model.AnalysisRequest{
		DistributionID: uuid.New(),
		Headline:       "Data Breach Forces Shutdown At Regional Bank",
		Content: strings.Repeat("A data breach at the bank led to a shutdown of online services "+
			"and a loss of customer trust, with a lawsuit expected. ", 3),
	}

	analysis, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	assert.Equal(t, model.SentimentNegative, analysis.Sentiment)
}

func TestAnalyze_ProvidedAudiences(t *testing.T) {
	c := testClassifier()
	req := techRequest()
	req.ProvidedAudiences = []string{"enterprise CTOs", "platform engineers"}

	analysis, err := c.Analyze(context.Background(), stage.NewTrail(), req)
	require.NoError(t, err)
	require.Len(t, analysis.Audiences, 2)
	assert.Equal(t, "enterprise CTOs", analysis.Audiences[0].Name)
	assert.InDelta(t, 0.9, analysis.Audiences[0].Relevance, 1e-9)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	c := testClassifier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Analyze(ctx, stage.NewTrail(), techRequest())
	assert.ErrorIs(t, err, context.Canceled)
}
