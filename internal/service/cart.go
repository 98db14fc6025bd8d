package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/model"
)

// MaxCartQuantity caps the units of one product in a cart.
const MaxCartQuantity = 99

type CartService struct {
	carts    CartStore
	products ProductStore
	currency string
	logger   *zerolog.Logger
}

func NewCartService(carts CartStore, products ProductStore, currency string, logger *zerolog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		currency: currency,
		logger:   logger,
	}
}

// NewCartToken returns an opaque token for a guest cart.
func NewCartToken() string {
	return uuid.NewString()
}

// findCart resolves the cart of ref: by token first, then by the signed-in
// customer. It returns nil when the request has no cart yet.
func findCart(ctx context.Context, carts CartStore, ref model.CartRef) (*model.Cart, error) {
	if ref.Token != "" {
		c, err := carts.GetByToken(ctx, ref.Token)
		if err == nil {
			return c, nil
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("get cart by token: %w", err)
		}
	}
	if ref.UserID != nil {
		c, err := carts.GetByUserID(ctx, *ref.UserID)
		if err == nil {
			return c, nil
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("get cart by user: %w", err)
		}
	}
	return nil, nil
}

func (s *CartService) findOrCreate(ctx context.Context, ref model.CartRef) (*model.Cart, error) {
	c, err := findCart(ctx, s.carts, ref)
	if err != nil || c != nil {
		return c, err
	}

	token := ref.Token
	if token == "" {
		token = NewCartToken()
	}
	c, err = s.carts.Create(ctx, token, ref.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("cart_id", c.ID.String()).Msg("cart created")
	return c, nil
}

func (s *CartService) view(ctx context.Context, token string) (model.CartView, error) {
	c, err := s.carts.GetByToken(ctx, token)
	if err != nil {
		return model.CartView{}, fmt.Errorf("reload cart: %w", err)
	}
	return model.NewCartView(c, token, s.currency), nil
}

// GetCart returns the cart of ref. A request without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, ref model.CartRef) (model.CartView, error) {
	c, err := findCart(ctx, s.carts, ref)
	if err != nil {
		return model.CartView{}, err
	}
	return model.NewCartView(c, ref.Token, s.currency), nil
}

// AddItem adds quantity units of a product, creating the cart when needed.
// The resulting quantity is capped by the product stock.
func (s *CartService) AddItem(ctx context.Context, ref model.CartRef, productID uuid.UUID, quantity int) (model.CartView, error) {
	if quantity < 1 || quantity > MaxCartQuantity {
		return model.CartView{}, errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "quantity", Error: fmt.Sprintf("must be between 1 and %d", MaxCartQuantity)}}, nil)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return model.CartView{}, errProductNotFound()
		}
		return model.CartView{}, err
	}
	if !product.InStock(1) {
		return model.CartView{}, errs.NewBadRequestError(product.Name+" is not available", true, &codeOutOfStock, nil, nil)
	}

	c, err := s.findOrCreate(ctx, ref)
	if err != nil {
		return model.CartView{}, err
	}

	next := min(c.Quantity(productID)+quantity, product.Stock, MaxCartQuantity)
	if err := s.carts.SetItemQuantity(ctx, c.ID, productID, next); err != nil {
		return model.CartView{}, err
	}
	return s.view(ctx, c.Token)
}

// UpdateItem sets the quantity of a product already in the cart. Zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, ref model.CartRef, productID uuid.UUID, quantity int) (model.CartView, error) {
	c, err := findCart(ctx, s.carts, ref)
	if err != nil {
		return model.CartView{}, err
	}
	if c == nil || c.Quantity(productID) == 0 {
		return model.CartView{}, errs.NewNotFoundError("Product is not in the cart", true, &codeCartItemNotFound)
	}

	if quantity == 0 {
		if err := s.carts.RemoveItem(ctx, c.ID, productID); err != nil {
			return model.CartView{}, err
		}
		return s.view(ctx, c.Token)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return model.CartView{}, errProductNotFound()
		}
		return model.CartView{}, err
	}
	if !product.InStock(quantity) {
		available := product.Stock
		if !product.IsActive {
			available = 0
		}
		return model.CartView{}, errs.NewBadRequestError("Not enough stock", true, &codeOutOfStock,
			[]errs.FieldError{{Field: "quantity", Error: fmt.Sprintf("only %d available", available)}}, nil)
	}

	if err := s.carts.SetItemQuantity(ctx, c.ID, productID, quantity); err != nil {
		return model.CartView{}, err
	}
	return s.view(ctx, c.Token)
}

func (s *CartService) RemoveItem(ctx context.Context, ref model.CartRef, productID uuid.UUID) (model.CartView, error) {
	c, err := findCart(ctx, s.carts, ref)
	if err != nil || c == nil {
		return model.NewCartView(c, ref.Token, s.currency), err
	}
	if err := s.carts.RemoveItem(ctx, c.ID, productID); err != nil {
		return model.CartView{}, err
	}
	return s.view(ctx, c.Token)
}

func (s *CartService) Clear(ctx context.Context, ref model.CartRef) (model.CartView, error) {
	c, err := findCart(ctx, s.carts, ref)
	if err != nil || c == nil {
		return model.NewCartView(c, ref.Token, s.currency), err
	}
	if err := s.carts.Clear(ctx, c.ID); err != nil {
		return model.CartView{}, err
	}
	return s.view(ctx, c.Token)
}

// MergeGuestCart binds the guest cart to userID on sign in. When the
// customer already has a cart, guest quantities are added to it (capped by
// stock) and the guest cart is deleted. It returns the customer's cart, or
// nil when there is none.
func (s *CartService) MergeGuestCart(ctx context.Context, guestToken string, userID uuid.UUID) (*model.Cart, error) {
	userCart, err := findCart(ctx, s.carts, model.CartRef{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if guestToken == "" {
		return userCart, nil
	}

	guest, err := findCart(ctx, s.carts, model.CartRef{Token: guestToken})
	if err != nil {
		return nil, err
	}

	switch {
	case guest == nil:
		return userCart, nil
	case guest.UserID != nil && *guest.UserID == userID:
		return guest, nil
	case guest.UserID != nil:
		s.logger.Warn().Str("cart_id", guest.ID.String()).Msg("guest token points at another customer's cart")
		return userCart, nil
	case userCart == nil:
		if err := s.carts.AssignUser(ctx, guest.ID, userID); err != nil {
			return nil, err
		}
		guest.UserID = &userID
		return guest, nil
	}

	quantities := make(map[uuid.UUID]int, len(guest.Items))
	for _, item := range guest.Items {
		if !item.IsActive || item.Stock <= 0 {
			continue
		}
		quantities[item.ProductID] = min(userCart.Quantity(item.ProductID)+item.Quantity, item.Stock, MaxCartQuantity)
	}
	if err := s.carts.MergeInto(ctx, guest.ID, userCart.ID, quantities); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("merged_items", len(quantities)).
		Msg("guest cart merged")
	return s.carts.GetByToken(ctx, userCart.Token)
}
