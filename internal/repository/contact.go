package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/model"
)

const contactColumns = "id, name, email, phone, subject, message, created_at"

type ContactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, m *model.ContactMessage) (*model.ContactMessage, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO contact_messages (name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		m.Name, m.Email, m.Phone, m.Subject, m.Message)
	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.ContactMessage])
}

// List returns the newest messages first with the total count.
func (r *ContactRepository) List(ctx context.Context, page, limit int) ([]model.ContactMessage, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM contact_messages").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}

	rows, err := r.db.Query(ctx,
		"SELECT "+contactColumns+" FROM contact_messages ORDER BY created_at DESC, id LIMIT $1 OFFSET $2",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}
	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ContactMessage])
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
