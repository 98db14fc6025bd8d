package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
)

// CampaignService drafts newsletter campaigns and fans them out to the
// active subscribers through the low priority queue.
type CampaignService struct {
	campaigns   CampaignStore
	subscribers SubscriberStore
	jobs        Enqueuer
	publicURL   string
	logger      *zerolog.Logger
}

func NewCampaignService(campaigns CampaignStore, subscribers SubscriberStore, jobs Enqueuer, publicURL string, logger *zerolog.Logger) *CampaignService {
	return &CampaignService{
		campaigns:   campaigns,
		subscribers: subscribers,
		jobs:        jobs,
		publicURL:   strings.TrimRight(publicURL, "/"),
		logger:      logger,
	}
}

func (s *CampaignService) Create(ctx context.Context, p *model.CreateCampaignPayload) (*model.Campaign, error) {
	c, err := s.campaigns.Create(ctx, &model.Campaign{
		Subject:  strings.TrimSpace(p.Subject),
		Heading:  strings.TrimSpace(p.Heading),
		Body:     strings.TrimSpace(p.Body),
		CTALabel: strings.TrimSpace(p.CTALabel),
		CTAURL:   strings.TrimSpace(p.CTAURL),
		Status:   model.CampaignStatusDraft,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("campaign_id", c.ID.String()).Msg("campaign drafted")
	return c, nil
}

func (s *CampaignService) List(ctx context.Context) ([]model.Campaign, error) {
	campaigns, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}
	return campaigns, nil
}

// Send queues one email per active subscriber. A campaign is sent once;
// the draft -> sending step is conditional so concurrent calls cannot both
// fan out. Subscribers are read first so a failed read leaves the draft
// sendable.
func (s *CampaignService) Send(ctx context.Context, id uuid.UUID) (*model.SendCampaignResult, error) {
	subscribers, err := s.subscribers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	c, err := s.campaigns.MarkSending(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCampaignNotDraft):
			return nil, errs.NewBadRequestError("The campaign was already sent", true, &codeCampaignSent, nil, nil)
		case isNotFound(err):
			return nil, errs.NewNotFoundError("Campaign not found", true, &codeCampaignNotFound)
		}
		return nil, err
	}

	logger := s.logger.With().Str("campaign_id", c.ID.String()).Logger()

	queued := 0
	for _, sub := range subscribers {
		task, err := job.NewCampaignEmailTask(job.CampaignEmailPayload{
			CampaignID: c.ID.String(),
			To:         sub.Email,
			Data: email.CampaignData{
				Subject:        c.Subject,
				Heading:        c.Heading,
				Body:           c.Body,
				CTALabel:       c.CTALabel,
				CTAURL:         c.CTAURL,
				UnsubscribeURL: s.unsubscribeURL(sub.UnsubscribeToken),
			},
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to build campaign email task")
			continue
		}

		_, err = s.jobs.EnqueueContext(ctx, task)
		switch {
		case err == nil, job.IsDuplicate(err):
			queued++
		default:
			logger.Error().Err(err).Str("email", utils.MaskEmail(sub.Email)).Msg("failed to enqueue campaign email")
		}
	}

	sent, err := s.campaigns.MarkSent(ctx, c.ID, queued)
	if err != nil {
		return nil, fmt.Errorf("mark campaign sent: %w", err)
	}

	logger.Info().Int("recipients", queued).Int("subscribers", len(subscribers)).Msg("campaign queued")
	return &model.SendCampaignResult{Campaign: sent, Recipients: queued}, nil
}

// Subscribe adds email to the newsletter. Subscribing again reactivates it.
func (s *CampaignService) Subscribe(ctx context.Context, p *model.SubscribePayload) (*model.Subscriber, error) {
	sub, err := s.subscribers.Subscribe(ctx, utils.NormalizeEmail(p.Email), NewUnsubscribeToken())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", utils.MaskEmail(sub.Email)).Msg("newsletter subscription")
	return sub, nil
}

func (s *CampaignService) Unsubscribe(ctx context.Context, p *model.UnsubscribePayload) error {
	if err := s.subscribers.Unsubscribe(ctx, p.Token); err != nil {
		if isNotFound(err) {
			return errs.NewNotFoundError("Subscription not found", true, &codeSubscriptionMissing)
		}
		return err
	}
	return nil
}

func (s *CampaignService) unsubscribeURL(token string) string {
	return s.publicURL + "/newsletter/baja?token=" + url.QueryEscape(token)
}
