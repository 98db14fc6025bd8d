package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

const chatSessionColumns = `id, last_intent, fallback_count, message_count, handed_off,
	handed_off_at, last_message, created_at, updated_at`

// ChatSessionRepository persists chatbot conversations in whatsapp_sessions.
type ChatSessionRepository struct {
	db DBTX
}

func NewChatSessionRepository(db DBTX) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

func (r *ChatSessionRepository) one(rows pgx.Rows, err error) (*model.ChatSession, error) {
	if err != nil {
		return nil, err
	}
	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.ChatSession])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("whatsapp_sessions")
	}
	return s, err
}

func (r *ChatSessionRepository) Create(ctx context.Context) (*model.ChatSession, error) {
	return r.one(r.db.Query(ctx, "INSERT INTO whatsapp_sessions DEFAULT VALUES RETURNING "+chatSessionColumns))
}

func (r *ChatSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error) {
	return r.one(r.db.Query(ctx, "SELECT "+chatSessionColumns+" FROM whatsapp_sessions WHERE id = $1", id))
}

// Save writes the conversation state after a message was answered.
func (r *ChatSessionRepository) Save(ctx context.Context, s *model.ChatSession) (*model.ChatSession, error) {
	return r.one(r.db.Query(ctx, `
		UPDATE whatsapp_sessions SET
			last_intent = $2,
			fallback_count = $3,
			message_count = $4,
			handed_off = $5,
			handed_off_at = $6,
			last_message = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+chatSessionColumns,
		s.ID, s.LastIntent, s.FallbackCount, s.MessageCount, s.HandedOff, s.HandedOffAt, s.LastMessage))
}
