package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/storefront/internal/lib/email"
)

// Task type names. Asynq routes tasks to handlers by these strings.
const (
	TaskWelcome             = "email:welcome"
	TaskOrderConfirmation   = "email:order_confirmation"
	TaskOrderShipped        = "email:order_shipped"
	TaskContactNotification = "email:contact_notification"
	TaskContactAutoReply    = "email:contact_autoreply"
	TaskCampaign            = "email:campaign"
	TaskWhatsAppOrder       = "whatsapp:order_notification"
	TaskExpirePending       = "orders:expire_pending"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type WelcomeEmailPayload struct {
	To   string            `json:"to"`
	Data email.WelcomeData `json:"data"`
}

type OrderEmailPayload struct {
	To   string          `json:"to"`
	Data email.OrderData `json:"data"`
}

type ContactEmailPayload struct {
	To   string            `json:"to"`
	Data email.ContactData `json:"data"`
}

type CampaignEmailPayload struct {
	CampaignID string             `json:"campaign_id"`
	To         string             `json:"to"`
	Data       email.CampaignData `json:"data"`
}

type WhatsAppOrderPayload struct {
	Reference    string `json:"reference"`
	CustomerName string `json:"customer_name"`
	City         string `json:"city"`
	Summary      string `json:"summary"`
	Total        string `json:"total"`
}

func newTask(typename string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, raw, opts...), nil
}

func NewWelcomeEmailTask(p WelcomeEmailPayload) (*asynq.Task, error) {
	return newTask(TaskWelcome, p,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	)
}

// NewOrderConfirmationTask carries a task id derived from the reference and
// is retained for a day, so enqueueing it twice returns asynq.ErrTaskIDConflict.
func NewOrderConfirmationTask(p OrderEmailPayload) (*asynq.Task, error) {
	return newTask(TaskOrderConfirmation, p,
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
		asynq.TaskID(TaskOrderConfirmation+":"+p.Data.Reference),
		asynq.Retention(24*time.Hour),
	)
}

func NewOrderShippedTask(p OrderEmailPayload) (*asynq.Task, error) {
	return newTask(TaskOrderShipped, p,
		asynq.MaxRetry(5),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
		asynq.TaskID(TaskOrderShipped+":"+p.Data.Reference),
		asynq.Retention(24*time.Hour),
	)
}

func NewContactNotificationTask(p ContactEmailPayload) (*asynq.Task, error) {
	return newTask(TaskContactNotification, p,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	)
}

func NewContactAutoReplyTask(p ContactEmailPayload) (*asynq.Task, error) {
	return newTask(TaskContactAutoReply, p,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	)
}

func NewCampaignEmailTask(p CampaignEmailPayload) (*asynq.Task, error) {
	return newTask(TaskCampaign, p,
		asynq.MaxRetry(2),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
		asynq.TaskID(TaskCampaign+":"+p.CampaignID+":"+p.To),
		asynq.Retention(24*time.Hour),
	)
}

func NewWhatsAppOrderTask(p WhatsAppOrderPayload) (*asynq.Task, error) {
	return newTask(TaskWhatsAppOrder, p,
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(20*time.Second),
		asynq.TaskID(TaskWhatsAppOrder+":"+p.Reference),
		asynq.Retention(24*time.Hour),
	)
}

func NewExpirePendingTask() *asynq.Task {
	return asynq.NewTask(TaskExpirePending, nil,
		asynq.MaxRetry(1),
		asynq.Queue(QueueDefault),
		asynq.Timeout(time.Minute),
	)
}
