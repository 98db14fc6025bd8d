package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/model"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func paidOrder() *model.Order {
	o := &model.Order{
		Reference:    "ORD-1",
		Status:       model.OrderStatusPaid,
		TotalInCents: 45000000,
		Currency:     "COP",
		Items:        []model.OrderItem{{Quantity: 2}, {Quantity: 1}},
	}
	o.ID = uuid.New()
	return o
}

func TestPublisher_Publish(t *testing.T) {
	logger := zerolog.Nop()
	w := &recordingWriter{}
	p := &Publisher{writer: w, logger: &logger}

	require.NoError(t, p.Publish(context.Background(), NewOrderEvent(OrderPaid, paidOrder())))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "ORD-1", string(w.msgs[0].Key))

	var got OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, OrderPaid, got.Type)
	assert.Equal(t, 3, got.ItemCount)
	assert.Equal(t, int64(45000000), got.TotalInCents)
}

func TestPublisher_PublishError(t *testing.T) {
	logger := zerolog.Nop()
	p := &Publisher{writer: &recordingWriter{err: errors.New("broker down")}, logger: &logger}

	err := p.Publish(context.Background(), NewOrderEvent(OrderPaid, paidOrder()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublisher_WithoutBrokersIsNoop(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPublisher(config.KafkaConfig{Topic: "storefront.orders"}, &logger)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish(context.Background(), NewOrderEvent(OrderPaid, paidOrder())))
	assert.NoError(t, p.Close())
}
