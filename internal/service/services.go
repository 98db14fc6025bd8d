package service

import (
	"context"
	"errors"

	"github.com/deppfellow/storefront/internal/lib/cache"
	"github.com/deppfellow/storefront/internal/lib/chatbot"
	"github.com/deppfellow/storefront/internal/lib/events"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/livefeed"
	"github.com/deppfellow/storefront/internal/lib/storage"
	"github.com/deppfellow/storefront/internal/lib/token"
	"github.com/deppfellow/storefront/internal/lib/wompi"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/deppfellow/storefront/internal/server"
)

type Services struct {
	Auth     *AuthService
	Job      *job.JobService
	Catalog  *CatalogService
	Cart     *CartService
	Checkout *CheckoutService
	Order    *OrderService
	Account  *AccountService
	Contact  *ContactService
	Chat     *ChatService
	Campaign *CampaignService

	Tokens    *token.Manager
	LiveFeed  *livefeed.Hub
	Publisher *events.Publisher
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	cfg := s.Config
	logger := s.Logger

	redisCache := cache.New(s.Redis)
	tokens := token.NewManager(cfg.Auth)
	hub := livefeed.NewHub(cfg.Server.CORSAllowedOrigins, logger)
	publisher := events.NewPublisher(cfg.Integration.Kafka, logger)
	notifier := NewOrderNotifier(s.Job, publisher, hub, cfg.Server.PublicURL, logger)

	var images ImageUploader
	imageStore, err := storage.NewImageStore(context.Background(), cfg.Integration.Storage)
	switch {
	case err == nil:
		images = imageStore
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info().Msg("product image uploads disabled, no bucket configured")
	default:
		logger.Warn().Err(err).Msg("product image uploads disabled")
	}

	cartService := NewCartService(repos.Carts, repos.Products, cfg.Store.Currency, logger)
	orderService := NewOrderService(repos.Orders, notifier, cfg.Store.PendingOrderTTL, logger)
	accountService := NewAccountService(repos.Users, repos.Subscribers, cartService, s.Job, tokens, cfg.Auth.BcryptCost, logger)

	return &Services{
		Auth:     NewAuthService(cfg.Auth),
		Job:      s.Job,
		Catalog:  NewCatalogService(repos.Products, redisCache, images, cfg.Store, logger),
		Cart:     cartService,
		Checkout: NewCheckoutService(repos.Carts, repos.Orders, wompi.NewClient(cfg.Integration.Wompi), redisCache, notifier, cfg, logger),
		Order:    orderService,
		Account:  accountService,
		Contact:  NewContactService(repos.Contacts, s.Job, cfg.Integration.StoreInbox, logger),
		Chat:     NewChatService(repos.ChatSessions, repos.Orders, chatbot.Default(), cfg.Store, logger),
		Campaign: NewCampaignService(repos.Campaigns, repos.Subscribers, s.Job, cfg.Server.PublicURL, logger),

		Tokens:    tokens,
		LiveFeed:  hub,
		Publisher: publisher,
	}, nil
}

// Close releases the services that hold connections of their own.
func (s *Services) Close() error {
	s.LiveFeed.Close()
	return s.Publisher.Close()
}
