package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

const orderColumns = `id, reference, user_id, cart_token, status, payment_status, currency,
	subtotal_in_cents, shipping_in_cents, total_in_cents,
	customer_name, customer_email, customer_phone,
	shipping_address, shipping_city, shipping_department, shipping_notes,
	wompi_transaction_id, payment_method, tracking_number, paid_at,
	created_at, updated_at`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.CartToken, &o.Status, &o.PaymentStatus, &o.Currency,
		&o.SubtotalInCents, &o.ShippingInCents, &o.TotalInCents,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.Department, &o.Shipping.Notes,
		&o.WompiTransactionID, &o.PaymentMethod, &o.TrackingNumber, &o.PaidAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("orders")
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, db DBTX, query string, args ...any) ([]model.Order, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, db DBTX, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	rows, err := db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_slug,
			unit_price_in_cents, quantity, line_total_in_cents
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_name, id`, ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    model.OrderItem
			orderID uuid.UUID
		)
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.ProductName, &item.ProductSlug,
			&item.UnitPriceInCents, &item.Quantity, &item.LineTotalInCents); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) getOne(ctx context.Context, db DBTX, query string, args ...any) (*model.Order, error) {
	o, err := scanOrder(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	orders := []model.Order{*o}
	if err := r.attachItems(ctx, db, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// Create inserts an order and its item snapshots in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	var created *model.Order
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		created, err = scanOrder(tx.QueryRow(ctx, `
			INSERT INTO orders (
				reference, user_id, cart_token, status, payment_status, currency,
				subtotal_in_cents, shipping_in_cents, total_in_cents,
				customer_name, customer_email, customer_phone,
				shipping_address, shipping_city, shipping_department, shipping_notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING `+orderColumns,
			o.Reference, o.UserID, o.CartToken, o.Status, o.PaymentStatus, o.Currency,
			o.SubtotalInCents, o.ShippingInCents, o.TotalInCents,
			o.Customer.Name, o.Customer.Email, o.Customer.Phone,
			o.Shipping.Address, o.Shipping.City, o.Shipping.Department, o.Shipping.Notes,
		))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		created.Items = make([]model.OrderItem, 0, len(o.Items))
		for _, item := range o.Items {
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_items (
					order_id, product_id, product_name, product_slug,
					unit_price_in_cents, quantity, line_total_in_cents
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				created.ID, item.ProductID, item.ProductName, item.ProductSlug,
				item.UnitPriceInCents, item.Quantity, item.LineTotalInCents,
			).Scan(&item.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			created.Items = append(created.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *OrderRepository) GetByReference(ctx context.Context, reference string) (*model.Order, error) {
	return r.getOne(ctx, r.db, "SELECT "+orderColumns+" FROM orders WHERE reference = $1", reference)
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, r.db, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.queryOrders(ctx, r.db,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

// List returns one page of orders, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, f model.OrderFilter) ([]model.Order, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = " + w.arg(f.Status))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args := append(w.args, f.Limit, (f.Page-1)*f.Limit)
	orders, err := r.queryOrders(ctx, r.db, fmt.Sprintf(
		"SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, w.String(), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// ListCreatedBetween returns orders created in [from, to), oldest first.
func (r *OrderRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	return r.queryOrders(ctx, r.db,
		"SELECT "+orderColumns+" FROM orders WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at",
		from, to)
}

// MarkPaid captures an approved payment in one transaction: the order row and
// its products are locked, stock is decremented (clamped at zero), the order
// is marked paid and the cart it came from is deleted.
//
// Products sold beyond their stock are reported as shortfalls. An order that
// is no longer awaiting payment returns ErrOrderNotAwaitingPayment untouched.
func (r *OrderRepository) MarkPaid(ctx context.Context, p model.MarkPaidParams) (*model.Order, []model.StockShortfall, error) {
	var (
		paid       *model.Order
		shortfalls []model.StockShortfall
	)

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		order, err := r.getOne(ctx, tx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", p.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.AwaitingPayment() {
			paid = order
			return ErrOrderNotAwaitingPayment
		}

		wanted := map[uuid.UUID]int{}
		for _, item := range order.Items {
			if item.ProductID != nil {
				wanted[*item.ProductID] += item.Quantity
			}
		}

		ids := make([]uuid.UUID, 0, len(wanted))
		for id := range wanted {
			ids = append(ids, id)
		}
		// Consistent lock order across concurrent captures.
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		rows, err := tx.Query(ctx, "SELECT id, stock FROM products WHERE id = ANY($1) ORDER BY id::text FOR UPDATE", ids)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		stock := map[uuid.UUID]int{}
		for rows.Next() {
			var (
				id  uuid.UUID
				qty int
			)
			if err := rows.Scan(&id, &qty); err != nil {
				rows.Close()
				return fmt.Errorf("scan product stock: %w", err)
			}
			stock[id] = qty
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range ids {
			available, ok := stock[id]
			if !ok {
				continue
			}
			requested := wanted[id]
			remaining := available - requested
			if remaining < 0 {
				shortfalls = append(shortfalls, model.StockShortfall{ProductID: id, Requested: requested, Available: available})
				remaining = 0
			}
			if _, err := tx.Exec(ctx, "UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1", id, remaining); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		paid, err = scanOrder(tx.QueryRow(ctx, `
			UPDATE orders SET
				status = $2,
				payment_status = $3,
				wompi_transaction_id = $4,
				payment_method = NULLIF($5, ''),
				paid_at = $6,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+orderColumns,
			order.ID, model.OrderStatusPaid, model.PaymentStatusApproved, p.TransactionID, p.PaymentMethod, p.PaidAt))
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		paid.Items = order.Items

		if order.CartToken != "" {
			if _, err := tx.Exec(ctx, "DELETE FROM carts WHERE token = $1", order.CartToken); err != nil {
				return fmt.Errorf("delete paid cart: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return paid, nil, err
	}
	return paid, shortfalls, nil
}

// ApplyPaymentResult records a non-approved payment outcome. Only orders
// still awaiting payment are changed.
func (r *OrderRepository) ApplyPaymentResult(ctx context.Context, u model.PaymentUpdate) (*model.Order, error) {
	o, err := r.getOne(ctx, r.db, `
		UPDATE orders SET
			status = $2,
			payment_status = $3,
			wompi_transaction_id = COALESCE(NULLIF($4, ''), wompi_transaction_id),
			payment_method = COALESCE(NULLIF($5, ''), payment_method),
			updated_at = NOW()
		WHERE id = $1 AND status IN ('pending_payment', 'payment_failed')
		RETURNING `+orderColumns,
		u.OrderID, u.Status, u.PaymentStatus, u.TransactionID, u.PaymentMethod)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotAwaitingPayment
	}
	return o, err
}

// UpdateStatus moves an order from one fulfilment status to the next.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, trackingNumber *string) (*model.Order, error) {
	o, err := r.getOne(ctx, r.db, `
		UPDATE orders SET
			status = $3,
			tracking_number = COALESCE($4, tracking_number),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		id, from, to, trackingNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderStatusChanged
	}
	return o, err
}

// ExpirePending expires orders still waiting for payment created before cutoff
// and returns their references.
func (r *OrderRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE orders SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending_payment' AND created_at < $1
		RETURNING reference`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("expire pending orders: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
