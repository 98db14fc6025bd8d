package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/lib/email"
)

// Mailer is the part of the email client the handlers use.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to string, d email.WelcomeData) error
	SendOrderConfirmationEmail(ctx context.Context, to string, d email.OrderData) error
	SendOrderShippedEmail(ctx context.Context, to string, d email.OrderData) error
	SendContactNotificationEmail(ctx context.Context, to string, d email.ContactData) error
	SendContactAutoReplyEmail(ctx context.Context, to string, d email.ContactData) error
	SendCampaignEmail(ctx context.Context, to string, d email.CampaignData) error
}

// OwnerNotifier sends a WhatsApp message to the store owner.
type OwnerNotifier interface {
	NotifyOwner(ctx context.Context, body string) error
}

// OrderExpirer expires unpaid orders past their time to live.
type OrderExpirer interface {
	ExpireStalePending(ctx context.Context) (int, error)
}

type Handlers struct {
	mailer   Mailer
	notifier OwnerNotifier
	expirer  OrderExpirer
	logger   *zerolog.Logger
}

func NewHandlers(mailer Mailer, notifier OwnerNotifier, expirer OrderExpirer, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		mailer:   mailer,
		notifier: notifier,
		expirer:  expirer,
		logger:   logger,
	}
}

// Mux routes every task type to its handler.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, h.HandleWelcomeEmail)
	mux.HandleFunc(TaskOrderConfirmation, h.HandleOrderConfirmation)
	mux.HandleFunc(TaskOrderShipped, h.HandleOrderShipped)
	mux.HandleFunc(TaskContactNotification, h.HandleContactNotification)
	mux.HandleFunc(TaskContactAutoReply, h.HandleContactAutoReply)
	mux.HandleFunc(TaskCampaign, h.HandleCampaignEmail)
	mux.HandleFunc(TaskWhatsAppOrder, h.HandleWhatsAppOrder)
	mux.HandleFunc(TaskExpirePending, h.HandleExpirePending)
	return mux
}

func decode[T any](t *asynq.Task) (T, error) {
	var p T
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// Malformed payloads never succeed on retry.
		return p, fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return p, nil
}

// sendEmail logs around one email delivery. A returned error makes asynq retry.
func (h *Handlers) sendEmail(t *asynq.Task, to string, send func() error) error {
	log := h.logger.With().Str("type", t.Type()).Str("to", to).Logger()
	log.Info().Msg("processing email task")

	if err := send(); err != nil {
		log.Error().Err(err).Msg("failed to send email")
		return err
	}

	log.Info().Msg("email sent")
	return nil
}

func (h *Handlers) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	p, err := decode[WelcomeEmailPayload](t)
	if err != nil {
		return err
	}
	return h.sendEmail(t, p.To, func() error {
		return h.mailer.SendWelcomeEmail(ctx, p.To, p.Data)
	})
}

func (h *Handlers) HandleOrderConfirmation(ctx context.Context, t *asynq.Task) error {
	p, err := decode[OrderEmailPayload](t)
	if err != nil {
		return err
	}
	return h.sendEmail(t, p.To, func() error {
		return h.mailer.SendOrderConfirmationEmail(ctx, p.To, p.Data)
	})
}

func (h *Handlers) HandleOrderShipped(ctx context.Context, t *asynq.Task) error {
	p, err := decode[OrderEmailPayload](t)
	if err != nil {
		return err
	}
	return h.sendEmail(t, p.To, func() error {
		return h.mailer.SendOrderShippedEmail(ctx, p.To, p.Data)
	})
}

func (h *Handlers) HandleContactNotification(ctx context.Context, t *asynq.Task) error {
	p, err := decode[ContactEmailPayload](t)
	if err != nil {
		return err
	}
	return h.sendEmail(t, p.To, func() error {
		return h.mailer.SendContactNotificationEmail(ctx, p.To, p.Data)
	})
}

func (h *Handlers) HandleContactAutoReply(ctx context.Context, t *asynq.Task) error {
	p, err := decode[ContactEmailPayload](t)
	if err != nil {
		return err
	}
	return h.sendEmail(t, p.To, func() error {
		return h.mailer.SendContactAutoReplyEmail(ctx, p.To, p.Data)
	})
}

func (h *Handlers) HandleCampaignEmail(ctx context.Context, t *asynq.Task) error {
	p, err := decode[CampaignEmailPayload](t)
	if err != nil {
		return err
	}
	return h.sendEmail(t, p.To, func() error {
		return h.mailer.SendCampaignEmail(ctx, p.To, p.Data)
	})
}

func (h *Handlers) HandleWhatsAppOrder(ctx context.Context, t *asynq.Task) error {
	p, err := decode[WhatsAppOrderPayload](t)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Nuevo pedido pagado %s\n%s (%s)\n%s\nTotal: %s",
		p.Reference, p.CustomerName, p.City, p.Summary, p.Total)
	if err := h.notifier.NotifyOwner(ctx, body); err != nil {
		h.logger.Error().Err(err).Str("reference", p.Reference).Msg("failed to notify owner on whatsapp")
		return err
	}
	return nil
}

func (h *Handlers) HandleExpirePending(ctx context.Context, _ *asynq.Task) error {
	n, err := h.expirer.ExpireStalePending(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to expire pending orders")
		return err
	}
	h.logger.Info().Int("expired", n).Msg("expired stale pending orders")
	return nil
}
