package universalnews

import (
	"context"

	"github.com/universalnewsoutlet-dev/universalnews/internal/config"
	"github.com/universalnewsoutlet-dev/universalnews/internal/delivery"
	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
	"github.com/universalnewsoutlet-dev/universalnews/internal/stage"
	"github.com/universalnewsoutlet-dev/universalnews/internal/textgen"
)

// Conversions between the public mirror types and internal/model, plus the
// adapters that let externally supplied implementations satisfy the
// internal collaborator interfaces. This file is the only place that sees
// both sides of the boundary: internal packages never import the root.

func enumSlice[A, B ~string](in []A) []B {
	if in == nil {
		return nil
	}
	out := make([]B, len(in))
	for i, v := range in {
		out[i] = B(v)
	}
	return out
}

func toModelRequest(req Request) model.Request {
	return model.Request{
		ID:               req.ID,
		OrganizationID:   req.OrganizationID,
		UserID:           req.UserID,
		Headline:         req.Headline,
		Content:          req.Content,
		Summary:          req.Summary,
		MediaURLs:        req.MediaURLs,
		TargetBudget:     req.TargetBudget,
		Urgency:          model.Urgency(req.Urgency),
		ScheduledAt:      req.ScheduledAt,
		TargetIndustries: enumSlice[Industry, model.Industry](req.TargetIndustries),
		TargetAudiences:  req.TargetAudiences,
		TargetChannels:   enumSlice[Channel, model.Channel](req.TargetChannels),
		Requirements:     enumSlice[Requirement, model.Requirement](req.Requirements),
	}
}

func toInternalConfig(cfg Config) config.Config {
	return config.Config{
		MaxAttempts:         cfg.MaxAttempts,
		BackoffBase:         cfg.BackoffBase,
		BackoffUnit:         cfg.BackoffUnit,
		AttemptTimeout:      cfg.AttemptTimeout,
		OpenAIAPIKey:        cfg.OpenAIAPIKey,
		TextModel:           cfg.TextModel,
		TextBaseURL:         cfg.TextBaseURL,
		InputCostPer1K:      cfg.InputCostPer1K,
		OutputCostPer1K:     cfg.OutputCostPer1K,
		DeployConcurrency:   cfg.DeployConcurrency,
		AnalyticsDelayHours: cfg.AnalyticsDelayHours,
		AnalyticsTimeout:    cfg.AnalyticsTimeout,
		OTELEndpoint:        cfg.OTELEndpoint,
		OTELInsecure:        cfg.OTELInsecure,
		ServiceName:         cfg.ServiceName,
		LogLevel:            cfg.LogLevel,
	}
}

func fromAnalysis(a *model.Analysis) *Analysis {
	if a == nil {
		return nil
	}
	out := &Analysis{
		DistributionID:      a.DistributionID,
		PrimaryIndustry:     Industry(a.PrimaryIndustry),
		SecondaryIndustries: enumSlice[model.Industry, Industry](a.SecondaryIndustries),
		Topics:              a.Topics,
		Keywords:            a.Keywords,
		Sentiment:           string(a.Sentiment),
		Newsworthiness:      a.Newsworthiness,
		ViralPotential:      a.ViralPotential,
		Summary:             a.Summary,
		Angles:              a.Angles,
		ProcessedAt:         a.ProcessedAt,
	}
	for _, e := range a.Entities {
		out.Entities = append(out.Entities, Entity(e))
	}
	for _, aud := range a.Audiences {
		out.Audiences = append(out.Audiences, Audience(aud))
	}
	for _, o := range a.Outlets {
		out.Outlets = append(out.Outlets, OutletMatch(o))
	}
	return out
}

func toModelAnalysis(a *Analysis) *model.Analysis {
	if a == nil {
		return nil
	}
	out := &model.Analysis{
		DistributionID:      a.DistributionID,
		PrimaryIndustry:     model.Industry(a.PrimaryIndustry),
		SecondaryIndustries: enumSlice[Industry, model.Industry](a.SecondaryIndustries),
		Topics:              a.Topics,
		Keywords:            a.Keywords,
		Sentiment:           model.Sentiment(a.Sentiment),
		Newsworthiness:      a.Newsworthiness,
		ViralPotential:      a.ViralPotential,
		Summary:             a.Summary,
		Angles:              a.Angles,
		ProcessedAt:         a.ProcessedAt,
	}
	for _, e := range a.Entities {
		out.Entities = append(out.Entities, model.Entity(e))
	}
	for _, aud := range a.Audiences {
		out.Audiences = append(out.Audiences, model.Audience(aud))
	}
	for _, o := range a.Outlets {
		out.Outlets = append(out.Outlets, model.OutletMatch(o))
	}
	return out
}

func fromIssue(is model.Issue) ComplianceIssue {
	return ComplianceIssue{
		Severity:       string(is.Severity),
		Requirement:    Requirement(is.Requirement),
		Description:    is.Description,
		Recommendation: is.Recommendation,
	}
}

func toModelIssue(is ComplianceIssue) model.Issue {
	return model.Issue{
		Severity:       model.Severity(is.Severity),
		Requirement:    model.Requirement(is.Requirement),
		Description:    is.Description,
		Recommendation: is.Recommendation,
	}
}

func fromReport(r *model.Report) *ComplianceReport {
	if r == nil {
		return nil
	}
	out := &ComplianceReport{
		DistributionID:    r.DistributionID,
		Compliant:         r.Compliant,
		CanProceed:        r.CanProceed,
		RequiredChannels:  enumSlice[model.Channel, Channel](r.RequiredChannels),
		ForbiddenChannels: enumSlice[model.Channel, Channel](r.ForbiddenChannels),
		Disclaimers:       r.Disclaimers,
		RequiresApproval:  r.RequiresApproval,
		ApprovalWorkflow:  r.ApprovalWorkflow,
		CheckedAt:         r.CheckedAt,
	}
	for _, is := range r.Issues {
		out.Issues = append(out.Issues, fromIssue(is))
	}
	for _, is := range r.Critical {
		out.Critical = append(out.Critical, fromIssue(is))
	}
	for _, is := range r.Warnings {
		out.Warnings = append(out.Warnings, fromIssue(is))
	}
	return out
}

func toModelReport(r *ComplianceReport) *model.Report {
	if r == nil {
		return nil
	}
	out := &model.Report{
		DistributionID:    r.DistributionID,
		Compliant:         r.Compliant,
		CanProceed:        r.CanProceed,
		RequiredChannels:  enumSlice[Channel, model.Channel](r.RequiredChannels),
		ForbiddenChannels: enumSlice[Channel, model.Channel](r.ForbiddenChannels),
		Disclaimers:       r.Disclaimers,
		RequiresApproval:  r.RequiresApproval,
		ApprovalWorkflow:  r.ApprovalWorkflow,
		CheckedAt:         r.CheckedAt,
	}
	for _, is := range r.Issues {
		out.Issues = append(out.Issues, toModelIssue(is))
	}
	for _, is := range r.Critical {
		out.Critical = append(out.Critical, toModelIssue(is))
	}
	for _, is := range r.Warnings {
		out.Warnings = append(out.Warnings, toModelIssue(is))
	}
	return out
}

func fromMix(m *model.Mix) *ChannelMix {
	if m == nil {
		return nil
	}
	out := &ChannelMix{
		DistributionID:    m.DistributionID,
		TotalAllocated:    m.TotalAllocated,
		ExpectedReach:     m.ExpectedReach,
		ExpectedPickups:   m.ExpectedPickups,
		ExpectedBacklinks: m.ExpectedBacklinks,
		ExpectedROIPct:    m.ExpectedROIPct,
		Strategy:          m.Strategy,
		RiskFactors:       m.RiskFactors,
		Confidence:        m.Confidence,
		CreatedAt:         m.CreatedAt,
	}
	for _, a := range m.Allocations {
		out.Allocations = append(out.Allocations, ChannelAllocation{
			Channel:         Channel(a.Channel),
			Budget:          a.Budget,
			ExpectedReach:   a.ExpectedReach,
			ExpectedPickups: a.ExpectedPickups,
			ExpectedROI:     a.ExpectedROI,
			Rationale:       a.Rationale,
		})
	}
	if m.Timing != nil {
		out.Timing = make(map[Channel]string, len(m.Timing))
		for ch, t := range m.Timing {
			out.Timing[Channel(ch)] = t
		}
	}
	return out
}

func fromTarget(t model.Target) JournalistTarget {
	return JournalistTarget{
		JournalistID:       t.JournalistID,
		Name:               t.Name,
		Email:              t.Email,
		Outlet:             t.Outlet,
		Beats:              t.Beats,
		Relevance:          t.Relevance,
		Subject:            t.Subject,
		Pitch:              t.Pitch,
		WhyRelevant:        t.WhyRelevant,
		ResponseLikelihood: t.ResponseLikelihood,
	}
}

func toModelTarget(t JournalistTarget) model.Target {
	return model.Target{
		JournalistID:       t.JournalistID,
		Name:               t.Name,
		Email:              t.Email,
		Outlet:             t.Outlet,
		Beats:              t.Beats,
		Relevance:          t.Relevance,
		Subject:            t.Subject,
		Pitch:              t.Pitch,
		WhyRelevant:        t.WhyRelevant,
		ResponseLikelihood: t.ResponseLikelihood,
	}
}

func fromTargeting(t *model.TargetingResult) *TargetingResult {
	if t == nil {
		return nil
	}
	out := &TargetingResult{
		DistributionID:   t.DistributionID,
		TotalTargets:     t.TotalTargets,
		AverageRelevance: t.AverageRelevance,
		StrategyNotes:    t.StrategyNotes,
		CreatedAt:        t.CreatedAt,
	}
	for _, tg := range t.Targets {
		out.Targets = append(out.Targets, fromTarget(tg))
	}
	return out
}

func toModelTargeting(t *TargetingResult) *model.TargetingResult {
	if t == nil {
		return nil
	}
	out := &model.TargetingResult{
		DistributionID:   t.DistributionID,
		TotalTargets:     t.TotalTargets,
		AverageRelevance: t.AverageRelevance,
		StrategyNotes:    t.StrategyNotes,
		CreatedAt:        t.CreatedAt,
	}
	for _, tg := range t.Targets {
		out.Targets = append(out.Targets, toModelTarget(tg))
	}
	return out
}

func fromDeployment(d *model.DeploymentResult) *DeploymentResult {
	if d == nil {
		return nil
	}
	out := &DeploymentResult{
		DistributionID: d.DistributionID,
		Attempted:      d.Attempted,
		Succeeded:      d.Succeeded,
		Failed:         d.Failed,
		InitialReach:   d.InitialReach,
		PublicURLs:     d.PublicURLs,
		Overall:        OutcomeStatus(d.Overall),
		ErrorSummary:   d.ErrorSummary,
		DeployedAt:     d.DeployedAt,
	}
	for _, o := range d.Outcomes {
		out.Outcomes = append(out.Outcomes, fromOutcome(o))
	}
	return out
}

func fromOutcome(o model.Outcome) ChannelOutcome {
	return ChannelOutcome{
		Channel:      Channel(o.Channel),
		Status:       OutcomeStatus(o.Status),
		SubmissionID: o.SubmissionID,
		URL:          o.URL,
		Reach:        o.Reach,
		Error:        o.Error,
		DeployedAt:   o.DeployedAt,
	}
}

func fromLog(l model.ExecutionLog) StageLog {
	return StageLog{
		Stage:          l.Stage,
		DistributionID: l.DistributionID,
		StartedAt:      l.StartedAt,
		CompletedAt:    l.CompletedAt,
		Duration:       l.Duration,
		Success:        l.Success,
		Error:          l.Error,
		Retries:        l.Retries,
		LLMCalls:       l.LLMCalls,
		TotalTokens:    l.TotalTokens,
		CostUSD:        l.CostUSD,
		Reasoning:      l.Reasoning,
		Decisions:      l.Decisions,
	}
}

func fromRun(r model.Run) Run {
	out := Run{
		ID:             r.ID,
		Status:         Status(r.Status),
		CurrentStep:    r.CurrentStep,
		StepsCompleted: r.StepsCompleted,
		StepsRemaining: r.StepsRemaining,
		Analysis:       fromAnalysis(r.Analysis),
		Compliance:     fromReport(r.Compliance),
		Mix:            fromMix(r.Mix),
		Targeting:      fromTargeting(r.Targeting),
		Deployment:     fromDeployment(r.Deployment),
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		Duration:       r.Duration,
		Errors:         r.Errors,
		Warnings:       r.Warnings,
	}
	for _, l := range r.Logs {
		out.Logs = append(out.Logs, fromLog(l))
	}
	return out
}

// classifierAdapter satisfies the internal classifier contract with an
// externally supplied Classifier. The trail is owned by the executor;
// external implementations do not see it.
type classifierAdapter struct{ c Classifier }

func (a classifierAdapter) Analyze(ctx context.Context, _ *stage.Trail, req model.AnalysisRequest) (*model.Analysis, error) {
	out, err := a.c.Analyze(ctx, AnalysisInput{
		DistributionID:     req.DistributionID,
		Headline:           req.Headline,
		Content:            req.Content,
		Summary:            req.Summary,
		ProvidedIndustries: enumSlice[model.Industry, Industry](req.ProvidedIndustries),
		ProvidedAudiences:  req.ProvidedAudiences,
	})
	if err != nil {
		return nil, err
	}
	return toModelAnalysis(out), nil
}

type complianceAdapter struct{ v ComplianceValidator }

func (a complianceAdapter) Check(ctx context.Context, _ *stage.Trail, req model.ComplianceRequest) (*model.Report, error) {
	in := ComplianceInput{
		DistributionID: req.DistributionID,
		Requirements:   enumSlice[model.Requirement, Requirement](req.Requirements),
	}
	if v := fromAnalysis(req.Analysis); v != nil {
		in.Analysis = *v
	}
	out, err := a.v.Check(ctx, in)
	if err != nil {
		return nil, err
	}
	return toModelReport(out), nil
}

type targetingAdapter struct{ p TargetingProvider }

func (a targetingAdapter) Target(ctx context.Context, _ *stage.Trail, req model.TargetingRequest) (*model.TargetingResult, error) {
	in := TargetingInput{
		DistributionID: req.DistributionID,
		TargetCount:    req.TargetCount,
		Budget:         req.Budget,
	}
	if v := fromAnalysis(req.Analysis); v != nil {
		in.Analysis = *v
	}
	out, err := a.p.Target(ctx, in)
	if err != nil {
		return nil, err
	}
	return toModelTargeting(out), nil
}

// deliveryAdapterShim satisfies the internal delivery contract with an
// externally supplied DeliveryAdapter for one channel.
type deliveryAdapterShim struct{ a DeliveryAdapter }

func (s deliveryAdapterShim) Deploy(ctx context.Context, job delivery.Job) (model.Outcome, error) {
	pub := DeliveryJob{
		DistributionID: job.DistributionID,
		Channel:        Channel(job.Channel),
		Budget:         job.Budget,
		Headline:       job.Headline,
		Content:        job.Content,
		MediaURLs:      job.MediaURLs,
	}
	for _, t := range job.Targets {
		pub.Targets = append(pub.Targets, fromTarget(t))
	}
	out, err := s.a.Deploy(ctx, pub)
	if err != nil {
		return model.Outcome{}, err
	}
	return model.Outcome{
		Channel:      model.Channel(out.Channel),
		Status:       model.OutcomeStatus(out.Status),
		SubmissionID: out.SubmissionID,
		URL:          out.URL,
		Reach:        out.Reach,
		Error:        out.Error,
		DeployedAt:   out.DeployedAt,
	}, nil
}

type textProviderAdapter struct{ p TextProvider }

func (a textProviderAdapter) GenerateJSON(ctx context.Context, prompt string, out any) (textgen.Usage, error) {
	usage, err := a.p.GenerateJSON(ctx, prompt, out)
	return textgen.Usage{
		Calls:            usage.Calls,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	}, err
}
