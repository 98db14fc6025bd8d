package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

const userColumns = "id, email, password_hash, name, phone, marketing_opt_in, created_at, updated_at"

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) one(rows pgx.Rows, err error) (*model.User, error) {
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("users")
	}
	return u, err
}

// Create inserts a user. A taken email surfaces as a unique violation on users_email_key.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return r.one(r.db.Query(ctx, `
		INSERT INTO users (email, password_hash, name, phone, marketing_opt_in)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.Email, u.PasswordHash, u.Name, u.Phone, u.MarketingOptIn))
}

// GetByEmail looks a user up by normalized (lowercase) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(r.db.Query(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.one(r.db.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}
