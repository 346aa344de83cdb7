// Package delivery defines the per-channel delivery adapter contract and
// ships simulated adapters for every channel. The simulated adapters stand
// in for the real newswire, email, social, CMS, and ads integrations; reach
// numbers follow the same heuristics those services quote.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
)

// ErrNoTargets is returned by the outreach adapter when the job carries no
// journalist targets to contact.
var ErrNoTargets = errors.New("delivery: no journalist targets provided")

// Job is the per-channel slice of a deployment: the content plus this
// channel's budget and, for outreach, the journalist targets.
type Job struct {
	DistributionID uuid.UUID
	Channel        model.Channel
	Budget         float64

	Headline  string
	Content   string
	MediaURLs []string
	Targets   []model.Target
}

// Adapter submits content to one channel and reports the outcome.
// Implementations return an error for failed submissions; the deployment
// stage converts errors into failed outcomes, never pipeline failures.
type Adapter interface {
	Deploy(ctx context.Context, job Job) (model.Outcome, error)
}

// Simulated returns the full set of simulated adapters, one per channel.
func Simulated(now func() time.Time) map[model.Channel]Adapter {
	if now == nil {
		now = time.Now
	}
	return map[model.Channel]Adapter{
		model.ChannelNewswire:  Newswire{now: now},
		model.ChannelOutreach:  Outreach{now: now},
		model.ChannelSocial:    Social{now: now},
		model.ChannelOwned:     Owned{now: now},
		model.ChannelPaid:      Paid{now: now},
		model.ChannelSEO:       SEO{now: now},
		model.ChannelCommunity: Community{now: now},
	}
}

func submissionID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// Newswire simulates a wire service submission (PR Newswire, Business Wire).
type Newswire struct {
	now func() time.Time
}

func (n Newswire) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	id := submissionID("NW")
	return model.Outcome{
		Channel:      model.ChannelNewswire,
		Status:       model.OutcomeSuccess,
		SubmissionID: id,
		URL:          "https://prweb.example.com/releases/" + id,
		Reach:        int(job.Budget * 100),
		DeployedAt:   n.now().UTC(),
	}, nil
}

// Outreach simulates sending personalized journalist emails.
type Outreach struct {
	now func() time.Time
}

func (o Outreach) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	if len(job.Targets) == 0 {
		return model.Outcome{}, ErrNoTargets
	}
	return model.Outcome{
		Channel:      model.ChannelOutreach,
		Status:       model.OutcomeSuccess,
		SubmissionID: submissionID("JO"),
		Reach:        len(job.Targets) * 1000,
		DeployedAt:   o.now().UTC(),
	}, nil
}

// Social simulates posting to social platforms.
type Social struct {
	now func() time.Time
}

func (s Social) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	id := submissionID("SM")
	return model.Outcome{
		Channel:      model.ChannelSocial,
		Status:       model.OutcomeSuccess,
		SubmissionID: id,
		URL:          "https://social.example.com/post/" + id,
		Reach:        10000,
		DeployedAt:   s.now().UTC(),
	}, nil
}

// Owned simulates publishing to the organization's own site.
type Owned struct {
	now func() time.Time
}

func (o Owned) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	id := submissionID("OM")
	return model.Outcome{
		Channel:      model.ChannelOwned,
		Status:       model.OutcomeSuccess,
		SubmissionID: id,
		URL:          "https://company.example.com/blog/" + id,
		Reach:        5000,
		DeployedAt:   o.now().UTC(),
	}, nil
}

// Paid simulates launching a paid media campaign.
type Paid struct {
	now func() time.Time
}

func (p Paid) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	return model.Outcome{
		Channel:      model.ChannelPaid,
		Status:       model.OutcomeSuccess,
		SubmissionID: submissionID("PD"),
		Reach:        int(job.Budget * 100),
		DeployedAt:   p.now().UTC(),
	}, nil
}

// SEO simulates search optimization work with long-term reach.
type SEO struct {
	now func() time.Time
}

func (s SEO) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	return model.Outcome{
		Channel:      model.ChannelSEO,
		Status:       model.OutcomeSuccess,
		SubmissionID: submissionID("SEO"),
		Reach:        int(job.Budget * 200),
		DeployedAt:   s.now().UTC(),
	}, nil
}

// Community simulates posting to community platforms.
type Community struct {
	now func() time.Time
}

func (c Community) Deploy(ctx context.Context, job Job) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}
	id := submissionID("COMM")
	return model.Outcome{
		Channel:      model.ChannelCommunity,
		Status:       model.OutcomeSuccess,
		SubmissionID: id,
		URL:          "https://community.example.com/thread/" + id,
		Reach:        8000,
		DeployedAt:   c.now().UTC(),
	}, nil
}
