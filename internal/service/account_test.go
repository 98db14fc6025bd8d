package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/token"
	"github.com/deppfellow/storefront/internal/model"
)

type accountFixture struct {
	svc         *AccountService
	cart        cartFixture
	subscribers *fakeSubscribers
	queue       *fakeQueue
	tokens      *token.Manager
}

func newAccountFixture() accountFixture {
	cart := newCartFixture()
	subscribers := newFakeSubscribers()
	queue := newFakeQueue()
	tokens := token.NewManager(config.AuthConfig{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		JWTTTL:    time.Hour,
		JWTIssuer: "storefront",
	})
	return accountFixture{
		svc:         NewAccountService(newFakeUsers(), subscribers, cart.svc, queue, tokens, bcrypt.MinCost, testLogger()),
		cart:        cart,
		subscribers: subscribers,
		queue:       queue,
		tokens:      tokens,
	}
}

func registerPayload() *model.RegisterPayload {
	return &model.RegisterPayload{
		Email:          "Ana@Example.com",
		Password:       "secreto-largo",
		Name:           " Ana Gómez ",
		MarketingOptIn: true,
	}
}

func TestAccountService_RegisterSignsInAndQueuesWelcome(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerPayload(), "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "Ana Gómez", resp.User.Name)
	assert.NotEqual(t, "secreto-largo", resp.User.PasswordHash)

	claims, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	assert.Equal(t, 1, f.queue.count(job.TaskWelcome))
	active, err := f.subscribers.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ana@example.com", active[0].Email)
}

func TestAccountService_Login(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerPayload(), "")
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, &model.LoginPayload{Email: "ana@example.com", Password: "secreto-largo"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = f.svc.Login(ctx, &model.LoginPayload{Email: "ana@example.com", Password: "otra-clave"}, "")
	wrongPassword := requireHTTPError(t, err, 401, "")

	_, err = f.svc.Login(ctx, &model.LoginPayload{Email: "nadie@example.com", Password: "secreto-largo"}, "")
	unknownUser := requireHTTPError(t, err, 401, "")

	assert.Equal(t, wrongPassword.Message, unknownUser.Message)
}

func TestAccountService_LoginMergesGuestCart(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerPayload(), "")
	require.NoError(t, err)

	_, err = f.cart.svc.AddItem(ctx, model.CartRef{Token: "guest"}, f.cart.tote.ID, 2)
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, &model.LoginPayload{Email: "ana@example.com", Password: "secreto-largo"}, "guest")
	require.NoError(t, err)
	assert.Equal(t, "guest", resp.CartToken)

	view, err := f.cart.svc.GetCart(ctx, model.CartRef{UserID: &resp.User.ID})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}
