package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newBase() model.Base {
	now := time.Now().UTC()
	return model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

type fakeProducts struct {
	byID map[uuid.UUID]*model.Product
}

func newFakeProducts(products ...*model.Product) *fakeProducts {
	f := &fakeProducts{byID: map[uuid.UUID]*model.Product{}}
	for _, p := range products {
		f.add(p)
	}
	return f
}

func (f *fakeProducts) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.Base = newBase()
	}
	if p.Currency == "" {
		p.Currency = "COP"
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakeProducts) List(_ context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range f.byID {
		if p.IsActive || filter.IncludeInactive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, len(out), nil
}

func (f *fakeProducts) GetBySlug(_ context.Context, slug string) (*model.Product, error) {
	for _, p := range f.byID {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sqlerr.NotFound("products")
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("products")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	out := map[uuid.UUID]model.Product{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (f *fakeProducts) ListAll(ctx context.Context) ([]model.Product, error) {
	out, _, err := f.List(ctx, model.ProductFilter{IncludeInactive: true})
	return out, err
}

func (f *fakeProducts) ListCollections(context.Context) ([]model.Collection, error) {
	return nil, nil
}

func (f *fakeProducts) Create(_ context.Context, p model.CreateProductParams) (*model.Product, error) {
	return f.add(&model.Product{
		Slug:                  p.Slug,
		Name:                  p.Name,
		Description:           p.Description,
		PriceInCents:          p.PriceInCents,
		CompareAtPriceInCents: p.CompareAtPriceInCents,
		Stock:                 p.Stock,
		IsActive:              true,
	}), nil
}

func (f *fakeProducts) Update(_ context.Context, p model.UpdateProductParams) (*model.Product, error) {
	existing, ok := f.byID[p.ID]
	if !ok {
		return nil, sqlerr.NotFound("products")
	}
	if p.PriceInCents != nil {
		existing.PriceInCents = *p.PriceInCents
	}
	if p.CompareAtPriceInCents != nil {
		existing.CompareAtPriceInCents = p.CompareAtPriceInCents
	}
	if p.ClearCompareAtPrice {
		existing.CompareAtPriceInCents = nil
	}
	if p.IsActive != nil {
		existing.IsActive = *p.IsActive
	}
	cp := *existing
	return &cp, nil
}

func (f *fakeProducts) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := f.byID[id]
	if !ok {
		return sqlerr.NotFound("products")
	}
	p.IsActive = false
	return nil
}

func (f *fakeProducts) AdjustStock(_ context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("products")
	}
	if p.Stock+delta < 0 {
		return nil, repository.ErrNegativeStock
	}
	p.Stock += delta
	cp := *p
	return &cp, nil
}

type fakeCartRow struct {
	id       uuid.UUID
	token    string
	userID   *uuid.UUID
	quantity map[uuid.UUID]int
	order    []uuid.UUID
}

// fakeCarts joins cart rows with the live products, like the SQL view does.
type fakeCarts struct {
	products *fakeProducts
	rows     map[uuid.UUID]*fakeCartRow
}

func newFakeCarts(products *fakeProducts) *fakeCarts {
	return &fakeCarts{products: products, rows: map[uuid.UUID]*fakeCartRow{}}
}

func (f *fakeCarts) load(row *fakeCartRow) *model.Cart {
	c := &model.Cart{Base: model.Base{ID: row.id}, Token: row.token, UserID: row.userID}
	for _, pid := range row.order {
		qty, ok := row.quantity[pid]
		if !ok {
			continue
		}
		p := f.products.byID[pid]
		c.Items = append(c.Items, model.CartItem{
			ProductID:    pid,
			Quantity:     qty,
			Slug:         p.Slug,
			Name:         p.Name,
			PriceInCents: p.PriceInCents,
			Currency:     p.Currency,
			Stock:        p.Stock,
			IsActive:     p.IsActive,
		})
	}
	return c
}

func (f *fakeCarts) GetByToken(_ context.Context, token string) (*model.Cart, error) {
	for _, row := range f.rows {
		if row.token == token {
			return f.load(row), nil
		}
	}
	return nil, sqlerr.NotFound("carts")
}

func (f *fakeCarts) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	for _, row := range f.rows {
		if row.userID != nil && *row.userID == userID {
			return f.load(row), nil
		}
	}
	return nil, sqlerr.NotFound("carts")
}

func (f *fakeCarts) Create(_ context.Context, token string, userID *uuid.UUID) (*model.Cart, error) {
	row := &fakeCartRow{id: uuid.New(), token: token, userID: userID, quantity: map[uuid.UUID]int{}}
	f.rows[row.id] = row
	return f.load(row), nil
}

func (f *fakeCarts) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	row := f.rows[cartID]
	if _, ok := row.quantity[productID]; !ok {
		row.order = append(row.order, productID)
	}
	row.quantity[productID] = quantity
	return nil
}

func (f *fakeCarts) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	delete(f.rows[cartID].quantity, productID)
	return nil
}

func (f *fakeCarts) Clear(_ context.Context, cartID uuid.UUID) error {
	f.rows[cartID].quantity = map[uuid.UUID]int{}
	return nil
}

func (f *fakeCarts) AssignUser(_ context.Context, cartID, userID uuid.UUID) error {
	f.rows[cartID].userID = &userID
	return nil
}

func (f *fakeCarts) MergeInto(ctx context.Context, sourceCartID, targetCartID uuid.UUID, quantities map[uuid.UUID]int) error {
	for pid, qty := range quantities {
		if err := f.SetItemQuantity(ctx, targetCartID, pid, qty); err != nil {
			return err
		}
	}
	delete(f.rows, sourceCartID)
	return nil
}

// fakeOrders captures payments the way the SQL transaction does when
// products and carts are attached: stock is decremented clamped at zero and
// the paid cart is deleted.
type fakeOrders struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.Order
	markPaid int
	products *fakeProducts
	carts    *fakeCarts
	getErr   error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[uuid.UUID]*model.Order{}}
}

func (f *fakeOrders) copyOf(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.Base = newBase()
	f.byID[o.ID] = f.copyOf(o)
	return f.copyOf(o), nil
}

func (f *fakeOrders) GetByReference(_ context.Context, reference string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, o := range f.byID {
		if o.Reference == reference {
			return f.copyOf(o), nil
		}
	}
	return nil, sqlerr.NotFound("orders")
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("orders")
	}
	return f.copyOf(o), nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.byID {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *f.copyOf(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) List(_ context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.byID {
		if filter.Status == "" || o.Status == filter.Status {
			out = append(out, *f.copyOf(o))
		}
	}
	return out, len(out), nil
}

func (f *fakeOrders) ListCreatedBetween(_ context.Context, from, to time.Time) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.byID {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, *f.copyOf(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, p model.MarkPaidParams) (*model.Order, []model.StockShortfall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[p.OrderID]
	if !ok {
		return nil, nil, sqlerr.NotFound("orders")
	}
	if !o.Status.AwaitingPayment() {
		return nil, nil, repository.ErrOrderNotAwaitingPayment
	}
	f.markPaid++

	var shortfalls []model.StockShortfall
	if f.products != nil {
		for _, item := range o.Items {
			if item.ProductID == nil {
				continue
			}
			product, ok := f.products.byID[*item.ProductID]
			if !ok {
				continue
			}
			if product.Stock < item.Quantity {
				shortfalls = append(shortfalls, model.StockShortfall{
					ProductID: product.ID,
					Requested: item.Quantity,
					Available: product.Stock,
				})
				product.Stock = 0
				continue
			}
			product.Stock -= item.Quantity
		}
	}
	if f.carts != nil && o.CartToken != "" {
		for id, row := range f.carts.rows {
			if row.token == o.CartToken {
				delete(f.carts.rows, id)
			}
		}
	}

	paidAt := p.PaidAt
	o.Status = model.OrderStatusPaid
	o.PaymentStatus = model.PaymentStatusApproved
	o.WompiTransactionID = &p.TransactionID
	o.PaymentMethod = &p.PaymentMethod
	o.PaidAt = &paidAt
	return f.copyOf(o), shortfalls, nil
}

func (f *fakeOrders) ApplyPaymentResult(_ context.Context, u model.PaymentUpdate) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[u.OrderID]
	if !ok {
		return nil, sqlerr.NotFound("orders")
	}
	if !o.Status.AwaitingPayment() {
		return nil, repository.ErrOrderNotAwaitingPayment
	}
	o.Status = u.Status
	o.PaymentStatus = u.PaymentStatus
	o.WompiTransactionID = &u.TransactionID
	return f.copyOf(o), nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.OrderStatus, trackingNumber *string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("orders")
	}
	if o.Status != from {
		return nil, repository.ErrOrderStatusChanged
	}
	o.Status = to
	if trackingNumber != nil {
		o.TrackingNumber = trackingNumber
	}
	return f.copyOf(o), nil
}

func (f *fakeOrders) ExpirePending(_ context.Context, cutoff time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var refs []string
	for _, o := range f.byID {
		if o.Status == model.OrderStatusPendingPayment && o.CreatedAt.Before(cutoff) {
			o.Status = model.OrderStatusExpired
			refs = append(refs, o.Reference)
		}
	}
	return refs, nil
}

type fakeUsers struct {
	byID map[uuid.UUID]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("duplicate email %s", u.Email)
		}
	}
	u.Base = newBase()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sqlerr.NotFound("users")
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("users")
	}
	cp := *u
	return &cp, nil
}

type fakeContacts struct {
	messages []model.ContactMessage
}

func (f *fakeContacts) Create(_ context.Context, m *model.ContactMessage) (*model.ContactMessage, error) {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	f.messages = append(f.messages, *m)
	return m, nil
}

func (f *fakeContacts) List(_ context.Context, page, limit int) ([]model.ContactMessage, int, error) {
	return f.messages, len(f.messages), nil
}

type fakeSessions struct {
	byID map[uuid.UUID]*model.ChatSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[uuid.UUID]*model.ChatSession{}}
}

func (f *fakeSessions) Create(context.Context) (*model.ChatSession, error) {
	s := &model.ChatSession{Base: newBase()}
	cp := *s
	f.byID[s.ID] = &cp
	return s, nil
}

func (f *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (*model.ChatSession, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("whatsapp_sessions")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Save(_ context.Context, s *model.ChatSession) (*model.ChatSession, error) {
	if _, ok := f.byID[s.ID]; !ok {
		return nil, sqlerr.NotFound("whatsapp_sessions")
	}
	cp := *s
	f.byID[s.ID] = &cp
	return s, nil
}

type fakeCampaigns struct {
	byID map[uuid.UUID]*model.Campaign
}

func newFakeCampaigns() *fakeCampaigns {
	return &fakeCampaigns{byID: map[uuid.UUID]*model.Campaign{}}
}

func (f *fakeCampaigns) Create(_ context.Context, c *model.Campaign) (*model.Campaign, error) {
	c.Base = newBase()
	cp := *c
	f.byID[c.ID] = &cp
	return c, nil
}

func (f *fakeCampaigns) List(context.Context) ([]model.Campaign, error) {
	var out []model.Campaign
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCampaigns) GetByID(_ context.Context, id uuid.UUID) (*model.Campaign, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("email_campaigns")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaigns) MarkSending(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("email_campaigns")
	}
	if c.Status != model.CampaignStatusDraft {
		return nil, repository.ErrCampaignNotDraft
	}
	c.Status = model.CampaignStatusSending
	return f.GetByID(ctx, id)
}

func (f *fakeCampaigns) MarkSent(ctx context.Context, id uuid.UUID, recipients int) (*model.Campaign, error) {
	c := f.byID[id]
	now := time.Now().UTC()
	c.Status = model.CampaignStatusSent
	c.RecipientCount = recipients
	c.SentAt = &now
	return f.GetByID(ctx, id)
}

type fakeSubscribers struct {
	byEmail map[string]*model.Subscriber
	listErr error
}

func newFakeSubscribers(emails ...string) *fakeSubscribers {
	f := &fakeSubscribers{byEmail: map[string]*model.Subscriber{}}
	for _, e := range emails {
		_, _ = f.Subscribe(context.Background(), e, NewUnsubscribeToken())
	}
	return f
}

func (f *fakeSubscribers) Subscribe(_ context.Context, email, token string) (*model.Subscriber, error) {
	s, ok := f.byEmail[email]
	if !ok {
		s = &model.Subscriber{Base: newBase(), Email: email, UnsubscribeToken: token}
		f.byEmail[email] = s
	}
	s.IsActive = true
	cp := *s
	return &cp, nil
}

func (f *fakeSubscribers) Unsubscribe(_ context.Context, token string) error {
	for _, s := range f.byEmail {
		if s.UnsubscribeToken == token {
			s.IsActive = false
			return nil
		}
	}
	return sqlerr.NotFound("newsletter_subscribers")
}

func (f *fakeSubscribers) ListActive(context.Context) ([]model.Subscriber, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Subscriber
	for _, s := range f.byEmail {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fakeQueue records enqueued tasks. Every task type the services enqueue
// carries a TaskID derived from its payload, so a repeated type and payload
// is rejected the way asynq rejects a repeated task id.
type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	seen  map[string]bool
	fail  error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{seen: map[string]bool{}}
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail != nil {
		return nil, q.fail
	}
	key := task.Type() + "|" + string(task.Payload())
	if q.seen[key] {
		return nil, asynq.ErrTaskIDConflict
	}
	q.seen[key] = true
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: uuid.NewString(), Type: task.Type()}, nil
}

func (q *fakeQueue) types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Type())
	}
	return out
}

func (q *fakeQueue) count(typename string) int {
	n := 0
	for _, t := range q.types() {
		if t == typename {
			n++
		}
	}
	return n
}

type fakeFeed struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeFeed) Broadcast(msgType string, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msgType)
}

func (f *fakeFeed) joined() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.messages, ",")
}
