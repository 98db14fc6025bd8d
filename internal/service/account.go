package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/token"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/model"
)

// AccountService manages customer accounts. Staff sign in through Clerk instead.
type AccountService struct {
	users       UserStore
	subscribers SubscriberStore
	carts       *CartService
	jobs        Enqueuer
	tokens      *token.Manager
	bcryptCost  int
	logger      *zerolog.Logger

	// dummyHash is compared against when the email is unknown so both
	// failures take the same time.
	dummyHash []byte
}

func NewAccountService(
	users UserStore,
	subscribers SubscriberStore,
	carts *CartService,
	jobs Enqueuer,
	tokens *token.Manager,
	bcryptCost int,
	logger *zerolog.Logger,
) *AccountService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcryptCost)
	return &AccountService{
		users:       users,
		subscribers: subscribers,
		carts:       carts,
		jobs:        jobs,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
		logger:      logger,
		dummyHash:   dummy,
	}
}

func errInvalidCredentials() *errs.HTTPError {
	return errs.NewUnauthorizedError("Invalid email or password", true)
}

// NewUnsubscribeToken returns the opaque token newsletter links carry.
func NewUnsubscribeToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Register creates an account, queues the welcome email and signs the
// customer in. The guest cart of cartToken, if any, becomes theirs.
func (s *AccountService) Register(ctx context.Context, p *model.RegisterPayload, cartToken string) (*model.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Email:          utils.NormalizeEmail(p.Email),
		PasswordHash:   string(hash),
		Name:           strings.TrimSpace(p.Name),
		Phone:          p.Phone,
		MarketingOptIn: p.MarketingOptIn,
	})
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("user_id", user.ID.String()).Logger()
	logger.Info().Str("email", utils.MaskEmail(user.Email)).Msg("customer registered")

	if user.MarketingOptIn {
		if _, err := s.subscribers.Subscribe(ctx, user.Email, NewUnsubscribeToken()); err != nil {
			logger.Error().Err(err).Msg("failed to subscribe new customer to the newsletter")
		}
	}

	task, err := job.NewWelcomeEmailTask(job.WelcomeEmailPayload{
		To:   user.Email,
		Data: email.WelcomeData{Name: user.Name, MarketingOptIn: user.MarketingOptIn},
	})
	if err == nil {
		_, err = s.jobs.EnqueueContext(ctx, task)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to enqueue welcome email")
	}

	return s.signIn(ctx, user, cartToken)
}

// Login checks the password and merges the guest cart into the customer's.
func (s *AccountService) Login(ctx context.Context, p *model.LoginPayload, cartToken string) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(p.Email))
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(p.Password))
		return nil, errInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(p.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("stored password hash is unusable")
		}
		return nil, errInvalidCredentials()
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("customer signed in")
	return s.signIn(ctx, user, cartToken)
}

// Me returns the signed-in customer.
func (s *AccountService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFoundError("Account not found", true, &codeUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) signIn(ctx context.Context, user *model.User, cartToken string) (*model.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	resp := &model.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	}

	cart, err := s.carts.MergeGuestCart(ctx, cartToken, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to merge guest cart")
	} else if cart != nil {
		resp.CartToken = cart.Token
	}
	return resp, nil
}
