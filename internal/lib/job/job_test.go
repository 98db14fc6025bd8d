package job

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/lib/email"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) record(kind, to string) error {
	m.sent = append(m.sent, kind+":"+to)
	return m.err
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, to string, _ email.WelcomeData) error {
	return m.record("welcome", to)
}

func (m *fakeMailer) SendOrderConfirmationEmail(_ context.Context, to string, _ email.OrderData) error {
	return m.record("order_confirmation", to)
}

func (m *fakeMailer) SendOrderShippedEmail(_ context.Context, to string, _ email.OrderData) error {
	return m.record("order_shipped", to)
}

func (m *fakeMailer) SendContactNotificationEmail(_ context.Context, to string, _ email.ContactData) error {
	return m.record("contact_notification", to)
}

func (m *fakeMailer) SendContactAutoReplyEmail(_ context.Context, to string, _ email.ContactData) error {
	return m.record("contact_autoreply", to)
}

func (m *fakeMailer) SendCampaignEmail(_ context.Context, to string, _ email.CampaignData) error {
	return m.record("campaign", to)
}

type fakeNotifier struct{ bodies []string }

func (n *fakeNotifier) NotifyOwner(_ context.Context, body string) error {
	n.bodies = append(n.bodies, body)
	return nil
}

type fakeExpirer struct{ calls int }

func (e *fakeExpirer) ExpireStalePending(context.Context) (int, error) {
	e.calls++
	return 2, nil
}

func newTestHandlers() (*Handlers, *fakeMailer, *fakeNotifier, *fakeExpirer) {
	logger := zerolog.Nop()
	m, n, e := &fakeMailer{}, &fakeNotifier{}, &fakeExpirer{}
	return NewHandlers(m, n, e, &logger), m, n, e
}

func TestTaskConstructors(t *testing.T) {
	orderPayload := OrderEmailPayload{To: "ana@example.com", Data: email.OrderData{Reference: "ORD-1"}}

	tests := []struct {
		name     string
		build    func() (*asynq.Task, error)
		wantType string
	}{
		{"welcome", func() (*asynq.Task, error) { return NewWelcomeEmailTask(WelcomeEmailPayload{To: "a@b.co"}) }, TaskWelcome},
		{"order confirmation", func() (*asynq.Task, error) { return NewOrderConfirmationTask(orderPayload) }, TaskOrderConfirmation},
		{"order shipped", func() (*asynq.Task, error) { return NewOrderShippedTask(orderPayload) }, TaskOrderShipped},
		{"contact notification", func() (*asynq.Task, error) { return NewContactNotificationTask(ContactEmailPayload{To: "o@b.co"}) }, TaskContactNotification},
		{"contact autoreply", func() (*asynq.Task, error) { return NewContactAutoReplyTask(ContactEmailPayload{To: "c@b.co"}) }, TaskContactAutoReply},
		{"campaign", func() (*asynq.Task, error) {
			return NewCampaignEmailTask(CampaignEmailPayload{CampaignID: "c1", To: "s@b.co"})
		}, TaskCampaign},
		{"whatsapp", func() (*asynq.Task, error) { return NewWhatsAppOrderTask(WhatsAppOrderPayload{Reference: "ORD-1"}) }, TaskWhatsAppOrder},
		{"expire pending", func() (*asynq.Task, error) { return NewExpirePendingTask(), nil }, TaskExpirePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, task.Type())
		})
	}
}

func TestHandlers_EmailTasks(t *testing.T) {
	h, mailer, _, _ := newTestHandlers()
	mux := h.Mux()
	ctx := context.Background()

	welcome, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "ana@example.com", Data: email.WelcomeData{Name: "Ana"}})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, welcome))

	confirm, err := NewOrderConfirmationTask(OrderEmailPayload{To: "ana@example.com", Data: email.OrderData{Reference: "ORD-1"}})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, confirm))

	campaign, err := NewCampaignEmailTask(CampaignEmailPayload{CampaignID: "c1", To: "sub@example.com"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, campaign))

	assert.Equal(t, []string{
		"welcome:ana@example.com",
		"order_confirmation:ana@example.com",
		"campaign:sub@example.com",
	}, mailer.sent)
}

func TestHandlers_EmailFailureIsRetried(t *testing.T) {
	h, mailer, _, _ := newTestHandlers()
	mailer.err = errors.New("resend unavailable")

	task, err := NewContactAutoReplyTask(ContactEmailPayload{To: "c@example.com"})
	require.NoError(t, err)

	err = h.Mux().ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlers_MalformedPayloadSkipsRetry(t *testing.T) {
	h, _, _, _ := newTestHandlers()

	err := h.Mux().ProcessTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlers_WhatsAppOrder(t *testing.T) {
	h, _, notifier, _ := newTestHandlers()

	task, err := NewWhatsAppOrderTask(WhatsAppOrderPayload{
		Reference:    "ORD-1",
		CustomerName: "Ana",
		City:         "Medellín",
		Summary:      "1 x Tote",
		Total:        "$ 450.000 COP",
	})
	require.NoError(t, err)
	require.NoError(t, h.Mux().ProcessTask(context.Background(), task))

	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.bodies[0], "ORD-1")
	assert.Contains(t, notifier.bodies[0], "$ 450.000 COP")
}

func TestHandlers_ExpirePending(t *testing.T) {
	h, _, _, expirer := newTestHandlers()
	require.NoError(t, h.Mux().ProcessTask(context.Background(), NewExpirePendingTask()))
	assert.Equal(t, 1, expirer.calls)
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate(asynq.ErrTaskIDConflict))
	assert.True(t, IsDuplicate(fmt.Errorf("enqueue: %w", asynq.ErrDuplicateTask)))
	assert.False(t, IsDuplicate(errors.New("redis down")))
}
