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

const campaignColumns = `id, subject, heading, body, cta_label, cta_url, status,
	recipient_count, sent_at, created_at, updated_at`

type CampaignRepository struct {
	db DBTX
}

func NewCampaignRepository(db DBTX) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) one(rows pgx.Rows, err error) (*model.Campaign, error) {
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Campaign])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("email_campaigns")
	}
	return c, err
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	return r.one(r.db.Query(ctx, `
		INSERT INTO email_campaigns (subject, heading, body, cta_label, cta_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+campaignColumns,
		c.Subject, c.Heading, c.Body, c.CTALabel, c.CTAURL))
}

func (r *CampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	rows, err := r.db.Query(ctx, "SELECT "+campaignColumns+" FROM email_campaigns ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Campaign])
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	return r.one(r.db.Query(ctx, "SELECT "+campaignColumns+" FROM email_campaigns WHERE id = $1", id))
}

// MarkSending claims a draft campaign for delivery. A campaign that already
// left the draft state returns ErrCampaignNotDraft.
func (r *CampaignRepository) MarkSending(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	c, err := r.one(r.db.Query(ctx, `
		UPDATE email_campaigns SET status = 'sending', updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING `+campaignColumns, id))
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrCampaignNotDraft
	}
	return c, err
}

func (r *CampaignRepository) MarkSent(ctx context.Context, id uuid.UUID, recipients int) (*model.Campaign, error) {
	return r.one(r.db.Query(ctx, `
		UPDATE email_campaigns SET
			status = 'sent',
			recipient_count = $2,
			sent_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+campaignColumns, id, recipients))
}
