package model

import (
	"github.com/google/uuid"

	"github.com/deppfellow/storefront/internal/validation"
)

// ListProductsQuery is the query string of GET /api/products.
// Zero prices mean no bound; Featured is "", "true" or "false".
type ListProductsQuery struct {
	Collection string      `query:"collection" validate:"max=80"`
	Material   string      `query:"material" validate:"max=80"`
	Color      string      `query:"color" validate:"max=80"`
	Featured   string      `query:"featured" validate:"omitempty,oneof=true false"`
	Search     string      `query:"q" validate:"max=100"`
	MinPrice   int64       `query:"min_price" validate:"gte=0"`
	MaxPrice   int64       `query:"max_price" validate:"gte=0"`
	Sort       ProductSort `query:"sort" validate:"omitempty,oneof=newest price_asc price_desc name"`
	Page       int         `query:"page" validate:"gte=0"`
	Limit      int         `query:"limit" validate:"gte=0,lte=100"`
}

func (q *ListProductsQuery) Validate() error {
	return validation.Struct(q)
}

// Filter converts the query into a normalized ProductFilter.
func (q *ListProductsQuery) Filter() ProductFilter {
	f := ProductFilter{
		Collection: q.Collection,
		Material:   q.Material,
		Color:      q.Color,
		Search:     q.Search,
		Sort:       q.Sort,
		Page:       q.Page,
		Limit:      q.Limit,
	}
	if q.Featured != "" {
		featured := q.Featured == "true"
		f.Featured = &featured
	}
	if q.MinPrice > 0 {
		min := q.MinPrice
		f.MinPrice = &min
	}
	if q.MaxPrice > 0 {
		max := q.MaxPrice
		f.MaxPrice = &max
	}
	f.Normalize()
	return f
}

type GetProductRequest struct {
	Slug string `param:"slug" validate:"required,max=120"`
}

func (r *GetProductRequest) Validate() error {
	return validation.Struct(r)
}

// ProductIDRequest addresses a product by its id path parameter.
type ProductIDRequest struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

func (r *ProductIDRequest) Validate() error {
	return validation.Struct(r)
}

// ProductID is only safe to call after Validate.
func (r *ProductIDRequest) ProductID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type CreateProductPayload struct {
	Slug                  string   `json:"slug" validate:"omitempty,slug,max=120"`
	Name                  string   `json:"name" validate:"required,min=2,max=160"`
	Description           string   `json:"description" validate:"max=5000"`
	PriceInCents          int64    `json:"price_in_cents" validate:"gt=0"`
	CompareAtPriceInCents *int64   `json:"compare_at_price_in_cents" validate:"omitempty,gt=0"`
	Stock                 int      `json:"stock" validate:"gte=0"`
	Collection            string   `json:"collection" validate:"max=80"`
	Material              string   `json:"material" validate:"max=80"`
	Color                 string   `json:"color" validate:"max=80"`
	Images                []string `json:"images" validate:"max=12,dive,url"`
	IsFeatured            bool     `json:"is_featured"`
}

func (p *CreateProductPayload) Validate() error {
	return validation.Struct(p)
}

type UpdateProductPayload struct {
	ProductIDRequest
	Slug                  *string  `json:"slug" validate:"omitempty,slug,max=120"`
	Name                  *string  `json:"name" validate:"omitempty,min=2,max=160"`
	Description           *string  `json:"description" validate:"omitempty,max=5000"`
	PriceInCents          *int64   `json:"price_in_cents" validate:"omitempty,gt=0"`
	CompareAtPriceInCents *int64   `json:"compare_at_price_in_cents" validate:"omitempty,gt=0"`
	ClearCompareAtPrice   bool     `json:"clear_compare_at_price" validate:"excluded_with=CompareAtPriceInCents"`
	Collection            *string  `json:"collection" validate:"omitempty,max=80"`
	Material              *string  `json:"material" validate:"omitempty,max=80"`
	Color                 *string  `json:"color" validate:"omitempty,max=80"`
	Images                []string `json:"images" validate:"omitempty,max=12,dive,url"`
	IsFeatured            *bool    `json:"is_featured"`
	IsActive              *bool    `json:"is_active"`
}

func (p *UpdateProductPayload) Validate() error {
	return validation.Struct(p)
}

// Params converts the payload into a partial update.
func (p *UpdateProductPayload) Params() UpdateProductParams {
	return UpdateProductParams{
		ID:                    p.ProductID(),
		Slug:                  p.Slug,
		Name:                  p.Name,
		Description:           p.Description,
		PriceInCents:          p.PriceInCents,
		CompareAtPriceInCents: p.CompareAtPriceInCents,
		ClearCompareAtPrice:   p.ClearCompareAtPrice,
		Collection:            p.Collection,
		Material:              p.Material,
		Color:                 p.Color,
		Images:                p.Images,
		IsFeatured:            p.IsFeatured,
		IsActive:              p.IsActive,
	}
}

type AdjustStockPayload struct {
	ProductIDRequest
	Delta int `json:"delta" validate:"required,min=-10000,max=10000"`
}

func (p *AdjustStockPayload) Validate() error {
	return validation.Struct(p)
}

type ImageUploadPayload struct {
	ProductIDRequest
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp"`
}

func (p *ImageUploadPayload) Validate() error {
	return validation.Struct(p)
}
