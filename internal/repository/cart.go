package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

const cartColumns = "id, token, user_id, created_at, updated_at"

type CartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{db: db}
}

func scanCart(row pgx.Row) (*model.Cart, error) {
	var c model.Cart
	if err := row.Scan(&c.ID, &c.Token, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("carts")
		}
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) loadItems(ctx context.Context, c *model.Cart) (*model.Cart, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ci.product_id, ci.quantity, p.slug, p.name, p.price_in_cents, p.currency,
			COALESCE(p.images[1], '') AS image, p.stock, p.is_active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.product_id`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.CartItem])
	if err != nil {
		return nil, fmt.Errorf("scan cart items: %w", err)
	}
	c.Items = items
	return c, nil
}

// GetByToken loads a cart and its items. Unknown tokens give a not-found error.
func (r *CartRepository) GetByToken(ctx context.Context, token string) (*model.Cart, error) {
	c, err := scanCart(r.db.QueryRow(ctx, "SELECT "+cartColumns+" FROM carts WHERE token = $1", token))
	if err != nil {
		return nil, err
	}
	return r.loadItems(ctx, c)
}

// GetByUserID loads the cart bound to a customer account.
func (r *CartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	c, err := scanCart(r.db.QueryRow(ctx, "SELECT "+cartColumns+" FROM carts WHERE user_id = $1", userID))
	if err != nil {
		return nil, err
	}
	return r.loadItems(ctx, c)
}

// Create inserts an empty cart for token, or touches the existing one.
func (r *CartRepository) Create(ctx context.Context, token string, userID *uuid.UUID) (*model.Cart, error) {
	c, err := scanCart(r.db.QueryRow(ctx, `
		INSERT INTO carts (token, user_id) VALUES ($1, $2)
		ON CONFLICT (token) DO UPDATE SET updated_at = NOW()
		RETURNING `+cartColumns, token, userID))
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return r.loadItems(ctx, c)
}

// SetItemQuantity stores the exact quantity of a product in the cart.
func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
		cartID, productID, quantity)
	if err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	return r.touch(ctx, r.db, cartID)
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return r.touch(ctx, r.db, cartID)
}

func (r *CartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touch(ctx, r.db, cartID)
}

// AssignUser binds a guest cart to a customer account.
func (r *CartRepository) AssignUser(ctx context.Context, cartID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "UPDATE carts SET user_id = $2, updated_at = NOW() WHERE id = $1", cartID, userID)
	if err != nil {
		return fmt.Errorf("assign cart user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("carts")
	}
	return nil
}

// MergeInto writes the merged quantities into the target cart and deletes
// the source cart, atomically.
func (r *CartRepository) MergeInto(ctx context.Context, sourceCartID, targetCartID uuid.UUID, quantities map[uuid.UUID]int) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for productID, qty := range quantities {
			if qty <= 0 {
				continue
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
				ON CONFLICT (cart_id, product_id)
				DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
				targetCartID, productID, qty); err != nil {
				return fmt.Errorf("merge cart item: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, "DELETE FROM carts WHERE id = $1", sourceCartID); err != nil {
			return fmt.Errorf("delete merged cart: %w", err)
		}
		return r.touch(ctx, tx, targetCartID)
	})
}

func (r *CartRepository) touch(ctx context.Context, db DBTX, cartID uuid.UUID) error {
	if _, err := db.Exec(ctx, "UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
