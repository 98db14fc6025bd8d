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

const productColumns = `id, slug, name, description, price_in_cents, compare_at_price_in_cents,
	currency, stock, collection, material, color, images, is_featured, is_active,
	created_at, updated_at`

var productOrderBy = map[model.ProductSort]string{
	model.ProductSortNewest:    "created_at DESC, id",
	model.ProductSortPriceAsc:  "price_in_cents ASC, id",
	model.ProductSortPriceDesc: "price_in_cents DESC, id",
	model.ProductSortName:      "name ASC, id",
}

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) collect(rows pgx.Rows, err error) ([]model.Product, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Product])
}

func (r *ProductRepository) one(rows pgx.Rows, err error) (*model.Product, error) {
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Product])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("products")
	}
	return p, err
}

// List returns one page of products matching f and the total match count.
func (r *ProductRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	f.Normalize()

	var w whereBuilder
	if !f.IncludeInactive {
		w.add("is_active")
	}
	if f.Collection != "" {
		w.add("collection = " + w.arg(f.Collection))
	}
	if f.Material != "" {
		w.add("material = " + w.arg(f.Material))
	}
	if f.Color != "" {
		w.add("color = " + w.arg(f.Color))
	}
	if f.Featured != nil {
		w.add("is_featured = " + w.arg(*f.Featured))
	}
	if f.MinPrice != nil {
		w.add("price_in_cents >= " + w.arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		w.add("price_in_cents <= " + w.arg(*f.MaxPrice))
	}
	if f.Search != "" {
		p := w.arg("%" + escapeLike(f.Search) + "%")
		w.add(fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products"+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy, ok := productOrderBy[f.Sort]
	if !ok {
		orderBy = productOrderBy[model.ProductSortNewest]
	}

	args := append(w.args, f.Limit, f.Offset())
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, w.String(), orderBy, len(args)-1, len(args))

	products, err := r.collect(r.db.Query(ctx, query, args...))
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.one(r.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE slug = $1", slug))
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.one(r.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
}

// GetByIDs returns the products with the given ids, keyed by id.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	products, err := r.collect(r.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", ids))
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	out := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// ListAll returns every product, active or not, for exports.
func (r *ProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.collect(r.db.Query(ctx, "SELECT "+productColumns+" FROM products ORDER BY collection, name"))
}

func (r *ProductRepository) ListCollections(ctx context.Context) ([]model.Collection, error) {
	rows, err := r.db.Query(ctx, `
		SELECT collection, COUNT(*) AS product_count
		FROM products
		WHERE is_active AND collection <> ''
		GROUP BY collection
		ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Collection])
}

func (r *ProductRepository) Create(ctx context.Context, p model.CreateProductParams) (*model.Product, error) {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return r.one(r.db.Query(ctx, `
		INSERT INTO products (
			slug, name, description, price_in_cents, compare_at_price_in_cents,
			currency, stock, collection, material, color, images, is_featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+productColumns,
		p.Slug, p.Name, p.Description, p.PriceInCents, p.CompareAtPriceInCents,
		p.Currency, p.Stock, p.Collection, p.Material, p.Color, images, p.IsFeatured,
	))
}

// Update applies the non-nil fields of p and clears the compare-at price
// when asked to.
func (r *ProductRepository) Update(ctx context.Context, p model.UpdateProductParams) (*model.Product, error) {
	return r.one(r.db.Query(ctx, `
		UPDATE products SET
			slug = COALESCE($2, slug),
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			price_in_cents = COALESCE($5, price_in_cents),
			compare_at_price_in_cents = CASE WHEN $13 THEN NULL ELSE COALESCE($6, compare_at_price_in_cents) END,
			collection = COALESCE($7, collection),
			material = COALESCE($8, material),
			color = COALESCE($9, color),
			images = COALESCE($10::text[], images),
			is_featured = COALESCE($11, is_featured),
			is_active = COALESCE($12, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Slug, p.Name, p.Description, p.PriceInCents, p.CompareAtPriceInCents,
		p.Collection, p.Material, p.Color, p.Images, p.IsFeatured, p.IsActive, p.ClearCompareAtPrice,
	))
}

// Deactivate hides a product from the storefront. Rows referencing it stay valid.
func (r *ProductRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("products")
	}
	return nil
}

// AdjustStock adds delta (possibly negative) to the stock of a product.
func (r *ProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	p, err := r.one(r.db.Query(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING `+productColumns, id, delta))
	if err == nil || !errors.Is(err, pgx.ErrNoRows) {
		return p, err
	}

	var exists bool
	if qerr := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", id).Scan(&exists); qerr != nil {
		return nil, fmt.Errorf("adjust stock: %w", qerr)
	}
	if exists {
		return nil, ErrNegativeStock
	}
	return nil, err
}
