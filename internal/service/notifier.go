package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/deppfellow/storefront/internal/lib/events"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/money"
	"github.com/deppfellow/storefront/internal/model"
)

// OrderNotifier runs the side effects of order state changes once they are
// committed: queued emails, the owner WhatsApp message, the Kafka event and
// the admin live feed. Failures are logged and never undo the change.
type OrderNotifier struct {
	jobs      Enqueuer
	publisher EventPublisher
	feed      Broadcaster
	publicURL string
	logger    *zerolog.Logger
}

// NewOrderNotifier builds a notifier. publisher and feed may be nil.
func NewOrderNotifier(jobs Enqueuer, publisher EventPublisher, feed Broadcaster, publicURL string, logger *zerolog.Logger) *OrderNotifier {
	return &OrderNotifier{
		jobs:      jobs,
		publisher: publisher,
		feed:      feed,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Paid queues the confirmation email and the owner notification, then
// publishes order.paid.
func (n *OrderNotifier) Paid(ctx context.Context, o *model.Order) {
	n.enqueue(ctx, o, "order confirmation email", func() (*asynq.Task, error) {
		return job.NewOrderConfirmationTask(job.OrderEmailPayload{To: o.Customer.Email, Data: n.emailData(o)})
	})
	n.enqueue(ctx, o, "owner whatsapp notification", func() (*asynq.Task, error) {
		return job.NewWhatsAppOrderTask(job.WhatsAppOrderPayload{
			Reference:    o.Reference,
			CustomerName: o.Customer.Name,
			City:         o.Shipping.City,
			Summary:      itemSummary(o),
			Total:        money.Format(o.TotalInCents, o.Currency),
		})
	})
	n.publish(ctx, events.OrderPaid, o)
}

// Shipped queues the shipping email and publishes order.shipped.
func (n *OrderNotifier) Shipped(ctx context.Context, o *model.Order) {
	n.enqueue(ctx, o, "order shipped email", func() (*asynq.Task, error) {
		return job.NewOrderShippedTask(job.OrderEmailPayload{To: o.Customer.Email, Data: n.emailData(o)})
	})
	n.publish(ctx, events.OrderShipped, o)
}

func (n *OrderNotifier) Cancelled(ctx context.Context, o *model.Order) {
	n.publish(ctx, events.OrderCanceled, o)
}

// StatusChanged only updates the live feed.
func (n *OrderNotifier) StatusChanged(o *model.Order) {
	if n.feed != nil {
		n.feed.Broadcast("order.status_changed", events.NewOrderEvent("order.status_changed", o))
	}
}

func (n *OrderNotifier) enqueue(ctx context.Context, o *model.Order, what string, build func() (*asynq.Task, error)) {
	task, err := build()
	if err != nil {
		n.logger.Error().Err(err).Str("reference", o.Reference).Msgf("failed to build %s task", what)
		return
	}

	info, err := n.jobs.EnqueueContext(ctx, task)
	switch {
	case job.IsDuplicate(err):
		n.logger.Debug().Str("reference", o.Reference).Msgf("%s already queued", what)
	case err != nil:
		n.logger.Error().Err(err).Str("reference", o.Reference).Msgf("failed to enqueue %s", what)
	default:
		n.logger.Info().Str("reference", o.Reference).Str("task_id", info.ID).Msgf("%s queued", what)
	}
}

func (n *OrderNotifier) publish(ctx context.Context, eventType string, o *model.Order) {
	event := events.NewOrderEvent(eventType, o)
	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, event); err != nil {
			n.logger.Error().Err(err).Str("reference", o.Reference).Str("event", eventType).Msg("failed to publish order event")
		}
	}
	if n.feed != nil {
		n.feed.Broadcast(eventType, event)
	}
}

func (n *OrderNotifier) emailData(o *model.Order) email.OrderData {
	items := make([]email.OrderItemData, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, email.OrderItemData{
			Name:             item.ProductName,
			Quantity:         item.Quantity,
			LineTotalInCents: item.LineTotalInCents,
		})
	}

	d := email.OrderData{
		Reference:       o.Reference,
		CustomerName:    o.Customer.Name,
		Items:           items,
		Currency:        o.Currency,
		SubtotalInCents: o.SubtotalInCents,
		ShippingInCents: o.ShippingInCents,
		TotalInCents:    o.TotalInCents,
		ShippingAddress: o.Shipping.Address,
		City:            o.Shipping.City,
		TrackURL:        n.trackURL(o),
	}
	if o.TrackingNumber != nil {
		d.TrackingNumber = *o.TrackingNumber
	}
	return d
}

func (n *OrderNotifier) trackURL(o *model.Order) string {
	q := url.Values{}
	q.Set("reference", o.Reference)
	q.Set("email", o.Customer.Email)
	return n.publicURL + "/pedidos/seguimiento?" + q.Encode()
}

// itemSummary renders "2 x Bolso Tote, 1 x Billetera".
func itemSummary(o *model.Order) string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, fmt.Sprintf("%d x %s", item.Quantity, item.ProductName))
	}
	return strings.Join(parts, ", ")
}
