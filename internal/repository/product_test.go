package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/model"
)

func TestProductRepository_UpdateClearsCompareAtPrice(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	products := NewProductRepository(db)

	compareAt := int64(150_000_00)
	p, err := products.Create(ctx, model.CreateProductParams{
		Slug:                  "tote",
		Name:                  "Bolso tote",
		PriceInCents:          120_000_00,
		CompareAtPriceInCents: &compareAt,
		Currency:              "COP",
		Stock:                 3,
	})
	require.NoError(t, err)
	require.NotNil(t, p.CompareAtPriceInCents)

	name := "Bolso tote grande"
	renamed, err := products.Update(ctx, model.UpdateProductParams{ID: p.ID, Name: &name})
	require.NoError(t, err)
	require.NotNil(t, renamed.CompareAtPriceInCents, "omitted fields are kept")
	assert.Equal(t, compareAt, *renamed.CompareAtPriceInCents)

	cleared, err := products.Update(ctx, model.UpdateProductParams{ID: p.ID, ClearCompareAtPrice: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.CompareAtPriceInCents)
	assert.Equal(t, name, cleared.Name)
}
