package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/deppfellow/storefront/internal/model"
)

func TestProducts(t *testing.T) {
	p := model.Product{
		Slug:         "bolso-tote-cafe",
		Name:         "Bolso Tote Café",
		Collection:   "Tote",
		PriceInCents: 45000000,
		Currency:     "COP",
		Stock:        4,
		IsActive:     true,
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Products(&buf, []model.Product{p}))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Slug", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "bolso-tote-cafe", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "$ 450.000 COP", sheet.Rows[1].Cells[7].Value)
	assert.Equal(t, "2026-01-02 03:04:05", sheet.Rows[1].Cells[12].Value)
}

func TestOrders(t *testing.T) {
	txID := "1234-1"
	o := model.Order{
		Reference:     "ORD-1",
		Status:        model.OrderStatusPaid,
		PaymentStatus: model.PaymentStatusApproved,
		Currency:      "COP",
		TotalInCents:  46500000,
		Customer:      model.CustomerInfo{Name: "Ana", Email: "ana@example.com"},
		Items: []model.OrderItem{
			{ProductName: "Tote", Quantity: 1},
			{ProductName: "Clutch", Quantity: 2},
		},
		WompiTransactionID: &txID,
	}

	var buf bytes.Buffer
	require.NoError(t, Orders(&buf, []model.Order{o}))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	row := file.Sheets[0].Rows[1]
	assert.Equal(t, "ORD-1", row.Cells[0].Value)
	assert.Equal(t, "paid", row.Cells[2].Value)
	assert.Equal(t, "1 x Tote; 2 x Clutch", row.Cells[8].Value)
	assert.Equal(t, "1234-1", row.Cells[13].Value)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "orders-20261017.xlsx", Filename("orders", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
}
