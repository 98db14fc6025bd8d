package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/cache"
	"github.com/deppfellow/storefront/internal/model"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb), mr
}

func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{
		Name:                   "Tienda",
		Currency:               "COP",
		ReferencePrefix:        "ORD",
		FlatShippingInCents:    1200000,
		FreeShippingFromCents:  25000000,
		SupportWhatsAppPhone:   "+57 300 123 4567",
		ChatbotFallbackHandoff: 3,
	}
}

func requireHTTPError(t *testing.T, err error, status int, code string) *errs.HTTPError {
	t.Helper()
	require.Error(t, err)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	if code != "" {
		assert.Equal(t, code, httpErr.Code)
	}
	return httpErr
}

func TestCatalogService_ListProductsIsCachedUntilAWrite(t *testing.T) {
	c, _ := newTestCache(t)
	products := newFakeProducts(&model.Product{Slug: "tote-arena", Name: "Tote Arena", PriceInCents: 18900000, Stock: 3, IsActive: true})
	svc := NewCatalogService(products, c, nil, testStoreConfig(), testLogger())
	ctx := context.Background()

	first, err := svc.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, first.Data, 1)

	products.add(&model.Product{Slug: "bandolera", Name: "Bandolera", PriceInCents: 9900000, Stock: 1, IsActive: true})

	cached, err := svc.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, cached.Data, 1, "second read should come from the cache")

	_, err = svc.CreateProduct(ctx, &model.CreateProductPayload{Name: "Billetera Café", PriceInCents: 5900000, Stock: 4})
	require.NoError(t, err)

	fresh, err := svc.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, fresh.Data, 3)
}

func TestCatalogService_CreateProductDefaultsSlug(t *testing.T) {
	c, _ := newTestCache(t)
	svc := NewCatalogService(newFakeProducts(), c, nil, testStoreConfig(), testLogger())

	p, err := svc.CreateProduct(context.Background(), &model.CreateProductPayload{Name: "Bolso Fique Niña", PriceInCents: 12000000})
	require.NoError(t, err)
	assert.Equal(t, "bolso-fique-nina", p.Slug)
}

func TestCatalogService_CompareAtPriceMustExceedPrice(t *testing.T) {
	c, _ := newTestCache(t)
	svc := NewCatalogService(newFakeProducts(), c, nil, testStoreConfig(), testLogger())
	compareAt := int64(10000000)

	_, err := svc.CreateProduct(context.Background(), &model.CreateProductPayload{
		Name:                  "Tote",
		PriceInCents:          12000000,
		CompareAtPriceInCents: &compareAt,
	})
	requireHTTPError(t, err, 400, "INVALID_PRICE")
}

func TestCatalogService_UpdateProductClearsCompareAtPrice(t *testing.T) {
	c, _ := newTestCache(t)
	products := newFakeProducts()
	compareAt := int64(15000000)
	tote := products.add(&model.Product{Slug: "tote", Name: "Tote", PriceInCents: 12000000, CompareAtPriceInCents: &compareAt, IsActive: true})
	svc := NewCatalogService(products, c, nil, testStoreConfig(), testLogger())
	ctx := context.Background()

	price := int64(16000000)
	_, err := svc.UpdateProduct(ctx, &model.UpdateProductPayload{
		ProductIDRequest: model.ProductIDRequest{ID: tote.ID.String()},
		PriceInCents:     &price,
	})
	requireHTTPError(t, err, 400, "INVALID_PRICE")

	updated, err := svc.UpdateProduct(ctx, &model.UpdateProductPayload{
		ProductIDRequest:    model.ProductIDRequest{ID: tote.ID.String()},
		PriceInCents:        &price,
		ClearCompareAtPrice: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.CompareAtPriceInCents)
	assert.Equal(t, price, updated.PriceInCents)

	both := &model.UpdateProductPayload{
		ProductIDRequest:      model.ProductIDRequest{ID: tote.ID.String()},
		CompareAtPriceInCents: &compareAt,
		ClearCompareAtPrice:   true,
	}
	assert.Error(t, both.Validate())
}

func TestCatalogService_GetProductHidesInactive(t *testing.T) {
	c, _ := newTestCache(t)
	products := newFakeProducts(&model.Product{Slug: "retirado", Name: "Retirado", PriceInCents: 100, IsActive: false})
	svc := NewCatalogService(products, c, nil, testStoreConfig(), testLogger())

	_, err := svc.GetProduct(context.Background(), "retirado")
	requireHTTPError(t, err, 404, "PRODUCT_NOT_FOUND")

	_, err = svc.GetProduct(context.Background(), "no-existe")
	requireHTTPError(t, err, 404, "PRODUCT_NOT_FOUND")
}

func TestCatalogService_AdjustStock(t *testing.T) {
	c, _ := newTestCache(t)
	p := &model.Product{Slug: "tote", Name: "Tote", PriceInCents: 100, Stock: 2, IsActive: true}
	svc := NewCatalogService(newFakeProducts(p), c, nil, testStoreConfig(), testLogger())
	ctx := context.Background()

	updated, err := svc.AdjustStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)

	_, err = svc.AdjustStock(ctx, p.ID, -8)
	requireHTTPError(t, err, 400, "NEGATIVE_STOCK")
}

func TestCatalogService_ImageUploadsDisabledWithoutBucket(t *testing.T) {
	c, _ := newTestCache(t)
	p := &model.Product{Slug: "tote", Name: "Tote", PriceInCents: 100, IsActive: true}
	svc := NewCatalogService(newFakeProducts(p), c, nil, testStoreConfig(), testLogger())

	_, err := svc.CreateImageUploadURL(context.Background(), p.ID, "image/png")
	requireHTTPError(t, err, 400, "IMAGE_UPLOADS_DISABLED")
}
