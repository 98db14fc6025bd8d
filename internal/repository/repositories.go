package repository

import (
	"github.com/deppfellow/storefront/internal/server"
)

// Repositories groups every repository so services get one value to wire.
type Repositories struct {
	Products     *ProductRepository
	Carts        *CartRepository
	Orders       *OrderRepository
	Users        *UserRepository
	Contacts     *ContactRepository
	ChatSessions *ChatSessionRepository
	Campaigns    *CampaignRepository
	Subscribers  *SubscriberRepository
}

// NewRepositories builds every repository on the server's connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return NewRepositoriesWithDB(s.DB.Pool)
}

// NewRepositoriesWithDB builds every repository on db.
func NewRepositoriesWithDB(db DBTX) *Repositories {
	return &Repositories{
		Products:     NewProductRepository(db),
		Carts:        NewCartRepository(db),
		Orders:       NewOrderRepository(db),
		Users:        NewUserRepository(db),
		Contacts:     NewContactRepository(db),
		ChatSessions: NewChatSessionRepository(db),
		Campaigns:    NewCampaignRepository(db),
		Subscribers:  NewSubscriberRepository(db),
	}
}
