package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/lib/export"
	"github.com/deppfellow/storefront/internal/lib/storage"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// CatalogHandler serves the public catalog and the admin product routes.
type CatalogHandler struct {
	Handler
	catalog *service.CatalogService
}

func NewCatalogHandler(s *server.Server, catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		Handler: NewHandler(s),
		catalog: catalog,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context, q *model.ListProductsQuery) (*model.PaginatedResponse[model.Product], error) {
	return h.catalog.ListProducts(c.Request().Context(), q.Filter())
}

func (h *CatalogHandler) GetProduct(c echo.Context, r *model.GetProductRequest) (*model.Product, error) {
	return h.catalog.GetProduct(c.Request().Context(), r.Slug)
}

func (h *CatalogHandler) ListCollections(c echo.Context, _ *model.EmptyRequest) ([]model.Collection, error) {
	return h.catalog.ListCollections(c.Request().Context())
}

// ListAllProducts includes inactive products.
func (h *CatalogHandler) ListAllProducts(c echo.Context, q *model.ListProductsQuery) (*model.PaginatedResponse[model.Product], error) {
	return h.catalog.ListAllProducts(c.Request().Context(), q.Filter())
}

func (h *CatalogHandler) GetProductByID(c echo.Context, r *model.ProductIDRequest) (*model.Product, error) {
	return h.catalog.GetProductByID(c.Request().Context(), r.ProductID())
}

func (h *CatalogHandler) CreateProduct(c echo.Context, p *model.CreateProductPayload) (*model.Product, error) {
	return h.catalog.CreateProduct(c.Request().Context(), p)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context, p *model.UpdateProductPayload) (*model.Product, error) {
	return h.catalog.UpdateProduct(c.Request().Context(), p)
}

func (h *CatalogHandler) DeleteProduct(c echo.Context, r *model.ProductIDRequest) error {
	return h.catalog.DeleteProduct(c.Request().Context(), r.ProductID())
}

func (h *CatalogHandler) AdjustStock(c echo.Context, p *model.AdjustStockPayload) (*model.Product, error) {
	return h.catalog.AdjustStock(c.Request().Context(), p.ProductID(), p.Delta)
}

func (h *CatalogHandler) CreateImageUploadURL(c echo.Context, p *model.ImageUploadPayload) (*storage.UploadURL, error) {
	return h.catalog.CreateImageUploadURL(c.Request().Context(), p.ProductID(), p.ContentType)
}

func (h *CatalogHandler) ExportProducts(c echo.Context, _ *model.EmptyRequest) ([]byte, error) {
	return h.catalog.ExportProducts(c.Request().Context())
}

// ProductsFilename names the catalog workbook download.
func ProductsFilename(echo.Context) string {
	return export.Filename("products", time.Now())
}
