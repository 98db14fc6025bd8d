// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/model"
)

const (
	OrderPaid     = "order.paid"
	OrderShipped  = "order.shipped"
	OrderCanceled = "order.cancelled"
)

type OrderEvent struct {
	Type         string            `json:"type"`
	OrderID      string            `json:"order_id"`
	Reference    string            `json:"reference"`
	Status       model.OrderStatus `json:"status"`
	TotalInCents int64             `json:"total_in_cents"`
	Currency     string            `json:"currency"`
	ItemCount    int               `json:"item_count"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// NewOrderEvent snapshots o for eventType.
func NewOrderEvent(eventType string, o *model.Order) OrderEvent {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderEvent{
		Type:         eventType,
		OrderID:      o.ID.String(),
		Reference:    o.Reference,
		Status:       o.Status,
		TotalInCents: o.TotalInCents,
		Currency:     o.Currency,
		ItemCount:    count,
		OccurredAt:   time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events keyed by order reference, so every event of
// one order lands on the same partition.
type Publisher struct {
	writer messageWriter
	logger *zerolog.Logger
}

// NewPublisher returns a publisher for cfg. Without brokers it publishes nothing.
func NewPublisher(cfg config.KafkaConfig, logger *zerolog.Logger) *Publisher {
	p := &Publisher{logger: logger}
	if len(cfg.Brokers) == 0 {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return p
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Publisher) Publish(ctx context.Context, event OrderEvent) error {
	if !p.Enabled() {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Reference),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	p.logger.Debug().Str("type", event.Type).Str("reference", event.Reference).Msg("order event published")
	return nil
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
