package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/cache"
	"github.com/deppfellow/storefront/internal/lib/export"
	"github.com/deppfellow/storefront/internal/lib/storage"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
)

const (
	catalogCachePrefix    = "catalog:"
	catalogListKey        = "catalog:list"
	catalogCollectionsKey = "catalog:collections"
)

// CatalogService serves the public catalog from a Redis cache and applies
// staff edits, invalidating the cache on every write.
type CatalogService struct {
	products ProductStore
	cache    *cache.Cache
	images   ImageUploader
	currency string
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

// NewCatalogService builds the service. images may be nil when no bucket is configured.
func NewCatalogService(products ProductStore, c *cache.Cache, images ImageUploader, store config.StoreConfig, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    c,
		images:   images,
		currency: store.Currency,
		cacheTTL: store.CatalogCacheTTL,
		logger:   logger,
	}
}

// ListProducts returns one page of active products.
func (s *CatalogService) ListProducts(ctx context.Context, f model.ProductFilter) (*model.PaginatedResponse[model.Product], error) {
	f.IncludeInactive = false
	f.Normalize()

	key := cache.Key(catalogListKey, f)
	var page model.PaginatedResponse[model.Product]
	if s.readCache(ctx, key, &page) {
		return &page, nil
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	page = model.NewPaginatedResponse(products, f.Page, f.Limit, total)
	s.writeCache(ctx, key, page)
	return &page, nil
}

// ListAllProducts is the staff listing: inactive products included, never cached.
func (s *CatalogService) ListAllProducts(ctx context.Context, f model.ProductFilter) (*model.PaginatedResponse[model.Product], error) {
	f.IncludeInactive = true
	f.Normalize()

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	page := model.NewPaginatedResponse(products, f.Page, f.Limit, total)
	return &page, nil
}

// GetProduct returns an active product by slug.
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, errProductNotFound()
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, errProductNotFound()
	}
	return p, nil
}

func (s *CatalogService) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errProductNotFound()
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListCollections(ctx context.Context) ([]model.Collection, error) {
	var collections []model.Collection
	if s.readCache(ctx, catalogCollectionsKey, &collections) {
		return collections, nil
	}

	collections, err := s.products.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	s.writeCache(ctx, catalogCollectionsKey, collections)
	return collections, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *model.CreateProductPayload) (*model.Product, error) {
	slug := p.Slug
	if slug == "" {
		slug = utils.Slugify(p.Name)
	}
	if slug == "" {
		return nil, errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "slug", Error: "is required when the name has no letters or digits"}}, nil)
	}
	if err := checkCompareAtPrice(p.PriceInCents, p.CompareAtPriceInCents); err != nil {
		return nil, err
	}

	created, err := s.products.Create(ctx, model.CreateProductParams{
		Slug:                  slug,
		Name:                  p.Name,
		Description:           p.Description,
		PriceInCents:          p.PriceInCents,
		CompareAtPriceInCents: p.CompareAtPriceInCents,
		Currency:              s.currency,
		Stock:                 p.Stock,
		Collection:            p.Collection,
		Material:              p.Material,
		Color:                 p.Color,
		Images:                p.Images,
		IsFeatured:            p.IsFeatured,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().Str("product_id", created.ID.String()).Str("slug", created.Slug).Msg("product created")
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *model.UpdateProductPayload) (*model.Product, error) {
	params := p.Params()

	if params.PriceInCents != nil || params.CompareAtPriceInCents != nil {
		current, err := s.GetProductByID(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		price := current.PriceInCents
		if params.PriceInCents != nil {
			price = *params.PriceInCents
		}
		compareAt := current.CompareAtPriceInCents
		if params.ClearCompareAtPrice {
			compareAt = nil
		}
		if params.CompareAtPriceInCents != nil {
			compareAt = params.CompareAtPriceInCents
		}
		if err := checkCompareAtPrice(price, compareAt); err != nil {
			return nil, err
		}
	}

	updated, err := s.products.Update(ctx, params)
	if err != nil {
		if isNotFound(err) {
			return nil, errProductNotFound()
		}
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().Str("product_id", updated.ID.String()).Msg("product updated")
	return updated, nil
}

// DeleteProduct hides a product. Past orders keep referencing it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Deactivate(ctx, id); err != nil {
		if isNotFound(err) {
			return errProductNotFound()
		}
		return err
	}

	s.invalidate(ctx)
	s.logger.Info().Str("product_id", id.String()).Msg("product deactivated")
	return nil
}

// AdjustStock adds delta to the stock; the result never goes below zero.
func (s *CatalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	p, err := s.products.AdjustStock(ctx, id, delta)
	switch {
	case errors.Is(err, repository.ErrNegativeStock):
		return nil, errs.NewBadRequestError("Stock cannot drop below zero", true, &codeNegativeStock, nil, nil)
	case isNotFound(err):
		return nil, errProductNotFound()
	case err != nil:
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().
		Str("product_id", id.String()).
		Int("delta", delta).
		Int("stock", p.Stock).
		Msg("product stock adjusted")
	return p, nil
}

// CreateImageUploadURL presigns a PUT for a new product image.
func (s *CatalogService) CreateImageUploadURL(ctx context.Context, id uuid.UUID, contentType string) (*storage.UploadURL, error) {
	if s.images == nil {
		return nil, errs.NewBadRequestError("Image uploads are not configured", true, &codeStorageDisabled, nil, nil)
	}
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return nil, err
	}

	upload, err := s.images.PresignProductImage(ctx, id, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			return nil, errs.NewBadRequestError("Only JPEG, PNG and WebP images are accepted", true, nil,
				[]errs.FieldError{{Field: "content_type", Error: "must be one of: image/jpeg image/png image/webp"}}, nil)
		}
		return nil, fmt.Errorf("presign product image: %w", err)
	}
	return upload, nil
}

// ExportProducts renders every product, active or not, as an xlsx workbook.
func (s *CatalogService) ExportProducts(ctx context.Context) ([]byte, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products for export: %w", err)
	}

	var buf bytes.Buffer
	if err := export.Products(&buf, products); err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}
	return buf.Bytes(), nil
}

func checkCompareAtPrice(price int64, compareAt *int64) error {
	if compareAt != nil && *compareAt <= price {
		return errs.NewBadRequestError("Compare-at price must be higher than the price", true, &codeInvalidPrice,
			[]errs.FieldError{{Field: "compare_at_price_in_cents", Error: "must be greater than price_in_cents"}}, nil)
	}
	return nil
}

func (s *CatalogService) readCache(ctx context.Context, key string, dst any) bool {
	err := s.cache.GetJSON(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}
	return false
}

func (s *CatalogService) writeCache(ctx context.Context, key string, value any) {
	if err := s.cache.SetJSON(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	invalidateCatalog(ctx, s.cache, s.logger)
}

// invalidateCatalog drops cached listings after any stock or product change.
func invalidateCatalog(ctx context.Context, c *cache.Cache, logger *zerolog.Logger) {
	n, err := c.DeletePrefix(ctx, catalogCachePrefix)
	if err != nil {
		logger.Error().Err(err).Msg("catalog cache invalidation failed")
		return
	}
	logger.Debug().Int("keys", n).Msg("catalog cache invalidated")
}
