package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

const subscriberColumns = "id, email, unsubscribe_token, is_active, created_at, updated_at"

type SubscriberRepository struct {
	db DBTX
}

func NewSubscriberRepository(db DBTX) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Subscribe adds email to the newsletter, reactivating a previous
// subscription. The existing unsubscribe token is kept on reactivation.
func (r *SubscriberRepository) Subscribe(ctx context.Context, email, token string) (*model.Subscriber, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO newsletter_subscribers (email, unsubscribe_token)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET is_active = TRUE, updated_at = NOW()
		RETURNING `+subscriberColumns, email, token)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Subscriber])
}

// Unsubscribe deactivates the subscription owning token.
func (r *SubscriberRepository) Unsubscribe(ctx context.Context, token string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE newsletter_subscribers SET is_active = FALSE, updated_at = NOW()
		WHERE unsubscribe_token = $1`, token)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("newsletter_subscribers")
	}
	return nil
}

func (r *SubscriberRepository) ListActive(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+subscriberColumns+" FROM newsletter_subscribers WHERE is_active ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Subscriber])
}
