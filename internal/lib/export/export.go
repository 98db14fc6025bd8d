// Package export renders catalog and order reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/deppfellow/storefront/internal/lib/money"
	"github.com/deppfellow/storefront/internal/model"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

var (
	productHeaders = []string{
		"ID", "Slug", "Name", "Collection", "Material", "Color",
		"Price (cents)", "Price", "Compare at (cents)", "Stock", "Featured", "Active",
		"Created at", "Updated at",
	}
	orderHeaders = []string{
		"Reference", "Created at", "Status", "Payment", "Customer", "Email", "Phone",
		"City", "Items", "Subtotal (cents)", "Shipping (cents)", "Total (cents)", "Total",
		"Wompi transaction", "Paid at",
	}
)

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetValue(h)
		cell.GetStyle().Font.Bold = true
	}
}

// Products writes one row per product.
func Products(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add products sheet: %w", err)
	}
	addHeader(sheet, productHeaders)

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Slug)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Collection)
		row.AddCell().SetValue(p.Material)
		row.AddCell().SetValue(p.Color)
		row.AddCell().SetInt64(p.PriceInCents)
		row.AddCell().SetValue(money.Format(p.PriceInCents, p.Currency))
		if p.CompareAtPriceInCents != nil {
			row.AddCell().SetInt64(*p.CompareAtPriceInCents)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.IsFeatured)
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetValue(p.CreatedAt.Format(timeLayout))
		row.AddCell().SetValue(p.UpdatedAt.Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write products workbook: %w", err)
	}
	return nil
}

// Orders writes one row per order. Items are summarized as "qty x name".
func Orders(w io.Writer, orders []model.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add orders sheet: %w", err)
	}
	addHeader(sheet, orderHeaders)

	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			items = append(items, fmt.Sprintf("%d x %s", item.Quantity, item.ProductName))
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(o.Reference)
		row.AddCell().SetValue(o.CreatedAt.Format(timeLayout))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetValue(o.Customer.Name)
		row.AddCell().SetValue(o.Customer.Email)
		row.AddCell().SetValue(o.Customer.Phone)
		row.AddCell().SetValue(o.Shipping.City)
		row.AddCell().SetValue(strings.Join(items, "; "))
		row.AddCell().SetInt64(o.SubtotalInCents)
		row.AddCell().SetInt64(o.ShippingInCents)
		row.AddCell().SetInt64(o.TotalInCents)
		row.AddCell().SetValue(money.Format(o.TotalInCents, o.Currency))
		row.AddCell().SetValue(deref(o.WompiTransactionID))
		row.AddCell().SetValue(formatTime(o.PaidAt))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write orders workbook: %w", err)
	}
	return nil
}

// Filename returns e.g. orders-20260101.xlsx.
func Filename(kind string, at time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", kind, at.Format("20060102"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
