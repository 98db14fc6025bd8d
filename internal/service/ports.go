package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/deppfellow/storefront/internal/lib/events"
	"github.com/deppfellow/storefront/internal/lib/storage"
	"github.com/deppfellow/storefront/internal/lib/wompi"
	"github.com/deppfellow/storefront/internal/model"
)

// The store interfaces below are satisfied by the repository package.

type ProductStore interface {
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	ListCollections(ctx context.Context) ([]model.Collection, error)
	Create(ctx context.Context, p model.CreateProductParams) (*model.Product, error)
	Update(ctx context.Context, p model.UpdateProductParams) (*model.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error)
}

type CartStore interface {
	GetByToken(ctx context.Context, token string) (*model.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	Create(ctx context.Context, token string, userID *uuid.UUID) (*model.Cart, error)
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	AssignUser(ctx context.Context, cartID, userID uuid.UUID) error
	MergeInto(ctx context.Context, sourceCartID, targetCartID uuid.UUID, quantities map[uuid.UUID]int) error
}

type OrderStore interface {
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	GetByReference(ctx context.Context, reference string) (*model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]model.Order, int, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
	MarkPaid(ctx context.Context, p model.MarkPaidParams) (*model.Order, []model.StockShortfall, error)
	ApplyPaymentResult(ctx context.Context, u model.PaymentUpdate) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, trackingNumber *string) (*model.Order, error)
	ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type ContactStore interface {
	Create(ctx context.Context, m *model.ContactMessage) (*model.ContactMessage, error)
	List(ctx context.Context, page, limit int) ([]model.ContactMessage, int, error)
}

type ChatSessionStore interface {
	Create(ctx context.Context) (*model.ChatSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error)
	Save(ctx context.Context, s *model.ChatSession) (*model.ChatSession, error)
}

type CampaignStore interface {
	Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error)
	List(ctx context.Context) ([]model.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	MarkSending(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	MarkSent(ctx context.Context, id uuid.UUID, recipients int) (*model.Campaign, error)
}

type SubscriberStore interface {
	Subscribe(ctx context.Context, email, token string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, token string) error
	ListActive(ctx context.Context) ([]model.Subscriber, error)
}

// Enqueuer is satisfied by *job.JobService.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PaymentGateway is satisfied by *wompi.Client.
type PaymentGateway interface {
	PublicKey() string
	CheckoutParams(reference string, amountInCents int64, currency, redirectURL string) wompi.CheckoutParams
	VerifyEvent(body []byte, headerChecksum string) (*wompi.Event, error)
	GetTransaction(ctx context.Context, id string) (*wompi.Transaction, error)
	GetAcceptanceToken(ctx context.Context) (*wompi.AcceptanceToken, error)
}

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

// Broadcaster is satisfied by *livefeed.Hub.
type Broadcaster interface {
	Broadcast(msgType string, data any)
}

// ImageUploader is satisfied by *storage.ImageStore.
type ImageUploader interface {
	PresignProductImage(ctx context.Context, productID uuid.UUID, contentType string) (*storage.UploadURL, error)
}
