package model

import "github.com/google/uuid"

type Product struct {
	Base
	Slug                  string   `json:"slug" db:"slug"`
	Name                  string   `json:"name" db:"name"`
	Description           string   `json:"description" db:"description"`
	PriceInCents          int64    `json:"price_in_cents" db:"price_in_cents"`
	CompareAtPriceInCents *int64   `json:"compare_at_price_in_cents,omitempty" db:"compare_at_price_in_cents"`
	Currency              string   `json:"currency" db:"currency"`
	Stock                 int      `json:"stock" db:"stock"`
	Collection            string   `json:"collection" db:"collection"`
	Material              string   `json:"material" db:"material"`
	Color                 string   `json:"color" db:"color"`
	Images                []string `json:"images" db:"images"`
	IsFeatured            bool     `json:"is_featured" db:"is_featured"`
	IsActive              bool     `json:"is_active" db:"is_active"`
}

// InStock reports whether at least qty units can be sold.
func (p *Product) InStock(qty int) bool {
	return p.IsActive && p.Stock >= qty
}

// PrimaryImage returns the first image or "".
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortName      ProductSort = "name"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ProductFilter drives the public catalog listing.
type ProductFilter struct {
	Collection string      `json:"collection,omitempty"`
	Material   string      `json:"material,omitempty"`
	Color      string      `json:"color,omitempty"`
	Featured   *bool       `json:"featured,omitempty"`
	Search     string      `json:"search,omitempty"`
	MinPrice   *int64      `json:"min_price,omitempty"`
	MaxPrice   *int64      `json:"max_price,omitempty"`
	Sort       ProductSort `json:"sort,omitempty"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`

	// IncludeInactive is only set by admin listings.
	IncludeInactive bool `json:"include_inactive,omitempty"`
}

// Normalize applies default paging and sort values.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Sort == "" {
		f.Sort = ProductSortNewest
	}
}

// Offset is the row offset of the current page.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Collection struct {
	Name         string `json:"name" db:"collection"`
	ProductCount int    `json:"product_count" db:"product_count"`
}

// CreateProductParams are the columns written when a product is created.
type CreateProductParams struct {
	Slug                  string
	Name                  string
	Description           string
	PriceInCents          int64
	CompareAtPriceInCents *int64
	Currency              string
	Stock                 int
	Collection            string
	Material              string
	Color                 string
	Images                []string
	IsFeatured            bool
}

// UpdateProductParams is a partial update; nil fields are left unchanged.
// ClearCompareAtPrice removes the compare-at price.
type UpdateProductParams struct {
	ID                    uuid.UUID
	Slug                  *string
	Name                  *string
	Description           *string
	PriceInCents          *int64
	CompareAtPriceInCents *int64
	ClearCompareAtPrice   bool
	Collection            *string
	Material              *string
	Color                 *string
	Images                []string
	IsFeatured            *bool
	IsActive              *bool
}
