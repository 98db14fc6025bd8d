package service

import (
	"context"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/model"
)

type ContactService struct {
	messages   ContactStore
	jobs       Enqueuer
	storeInbox string
	logger     *zerolog.Logger
}

func NewContactService(messages ContactStore, jobs Enqueuer, storeInbox string, logger *zerolog.Logger) *ContactService {
	return &ContactService{
		messages:   messages,
		jobs:       jobs,
		storeInbox: storeInbox,
		logger:     logger,
	}
}

// Submit stores a contact form message, then queues the notification to
// the store inbox and the auto-reply to the sender.
func (s *ContactService) Submit(ctx context.Context, p *model.ContactPayload) (*model.ContactMessage, error) {
	msg, err := s.messages.Create(ctx, &model.ContactMessage{
		Name:    strings.TrimSpace(p.Name),
		Email:   utils.NormalizeEmail(p.Email),
		Phone:   p.Phone,
		Subject: strings.TrimSpace(p.Subject),
		Message: strings.TrimSpace(p.Message),
	})
	if err != nil {
		return nil, err
	}

	data := email.ContactData{
		Name:       msg.Name,
		Email:      msg.Email,
		Subject:    msg.Subject,
		Message:    msg.Message,
		ReceivedAt: msg.CreatedAt,
	}
	if msg.Phone != nil {
		data.Phone = *msg.Phone
	}

	logger := s.logger.With().Str("contact_message_id", msg.ID.String()).Logger()
	s.enqueue(ctx, logger, "contact notification", func() (*asynq.Task, error) {
		return job.NewContactNotificationTask(job.ContactEmailPayload{To: s.storeInbox, Data: data})
	})
	s.enqueue(ctx, logger, "contact auto-reply", func() (*asynq.Task, error) {
		return job.NewContactAutoReplyTask(job.ContactEmailPayload{To: msg.Email, Data: data})
	})

	logger.Info().Str("email", utils.MaskEmail(msg.Email)).Msg("contact message received")
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, page, limit int) (*model.PaginatedResponse[model.ContactMessage], error) {
	messages, total, err := s.messages.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	resp := model.NewPaginatedResponse(messages, page, limit, total)
	return &resp, nil
}

func (s *ContactService) enqueue(ctx context.Context, logger zerolog.Logger, what string, build func() (*asynq.Task, error)) {
	task, err := build()
	if err == nil {
		_, err = s.jobs.EnqueueContext(ctx, task)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("failed to enqueue %s", what)
	}
}
