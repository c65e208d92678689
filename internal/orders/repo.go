package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx persists a validated, paid-for order in one transaction:
// order row, item snapshots, guarded stock decrements, one ledger row per
// line, the initial status-history row, and the buyer's cart cleanup. Any
// failure rolls the whole thing back.
//
// Stock is re-checked here under FOR UPDATE even though the checkout service
// already pre-validated it: two concurrent checkouts can both pass the
// unlocked pre-check, and the row lock plus the conditional decrement is
// what actually prevents oversell.
func (r *Repo) CreateOrderTx(ctx context.Context, in NewOrder) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	o := &Order{
		ID:                uuid.NewString(),
		OrderNumber:       NewOrderNumber(now),
		UserID:            in.UserID,
		GuestEmail:        in.GuestEmail,
		Status:            StatusPending,
		PaymentStatus:     PaymentPaid,
		PaymentMethod:     in.PaymentMethod,
		PaymentRef:        in.PaymentRef,
		Subtotal:          in.Subtotal,
		ShippingCost:      in.ShippingCost,
		TaxAmount:         in.TaxAmount,
		DiscountAmount:    in.DiscountAmount,
		TotalAmount:       in.TotalAmount,
		Currency:          in.Currency,
		ShippingAddressID: in.ShippingAddressID,
		BillingAddressID:  in.BillingAddressID,
		ShippingMethod:    in.ShippingMethod,
		PromoCode:         in.PromoCode,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var userID, guestEmail *string
	if o.UserID != "" {
		userID = &o.UserID
	}
	if o.GuestEmail != "" {
		guestEmail = &o.GuestEmail
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, guest_email, status, payment_status,
		                    payment_method, payment_ref, subtotal, shipping_cost, tax_amount,
		                    discount_amount, total_amount, currency, shipping_address_id,
		                    billing_address_id, shipping_method, promo_code, notes,
		                    created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$20)`,
		o.ID, o.OrderNumber, userID, guestEmail, o.Status, o.PaymentStatus,
		o.PaymentMethod, o.PaymentRef, o.Subtotal, o.ShippingCost, o.TaxAmount,
		o.DiscountAmount, o.TotalAmount, o.Currency, o.ShippingAddressID,
		o.BillingAddressID, o.ShippingMethod, nullable(o.PromoCode), nullable(o.Notes), now)
	if err != nil {
		return nil, err
	}

	for _, it := range in.Items {
		// lock the product row for the check-then-decrement pair
		var stock, sales int
		err := tx.QueryRow(ctx, `
			SELECT stock_quantity, sales_count FROM products
			WHERE id = $1 AND is_active FOR UPDATE`, it.ProductID).Scan(&stock, &sales)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if stock < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: it.ProductID, Name: it.Name,
				Requested: it.Quantity, Available: stock,
			}
		}

		ct, err := tx.Exec(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2,
			    sales_count = sales_count + $3,
			    updated_at = now()
			WHERE id = $1 AND stock_quantity >= $2`, it.ProductID, it.Quantity, it.Quantity)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() != 1 {
			return nil, &InsufficientStockError{
				ProductID: it.ProductID, Name: it.Name,
				Requested: it.Quantity, Available: stock,
			}
		}

		item := OrderItem{
			ID:              uuid.NewString(),
			OrderID:         o.ID,
			ProductID:       it.ProductID,
			ProductName:     it.Name,
			ProductBrand:    it.Brand,
			ProductSKU:      it.SKU,
			ProductImageURL: it.ImageURL,
			ProductPrice:    it.ListPrice,
			SalePrice:       it.SalePrice,
			Quantity:        it.Quantity,
			LineTotal:       it.LineTotal,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_brand,
			                         product_sku, product_image_url, product_price, sale_price,
			                         quantity, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductBrand,
			item.ProductSKU, item.ProductImageURL, item.ProductPrice, item.SalePrice,
			item.Quantity, item.LineTotal)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO inventory_adjustments (id, product_id, adjustment_type, quantity_change,
			                                   old_quantity, new_quantity, reason)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), it.ProductID, AdjustmentSale, -it.Quantity,
			stock, stock-it.Quantity, "order "+o.OrderNumber)
		if err != nil {
			return nil, err
		}

		o.Items = append(o.Items, item)
	}

	changedBy := "guest"
	if o.UserID != "" {
		changedBy = o.UserID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, old_status, new_status, changed_by)
		VALUES ($1,$2,NULL,$3,$4)`,
		uuid.NewString(), o.ID, StatusPending, changedBy)
	if err != nil {
		return nil, err
	}

	// guest session carts are left alone on purpose; only the authenticated
	// buyer's cart is guaranteed to be cleared
	if o.UserID != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

const orderColumns = `id, order_number, COALESCE(user_id,''), COALESCE(guest_email,''), status,
       payment_status, payment_method, COALESCE(payment_ref,''), subtotal, shipping_cost,
       tax_amount, discount_amount, total_amount, currency, shipping_address_id,
       billing_address_id, shipping_method, COALESCE(promo_code,''), COALESCE(notes,''),
       delivered_at, created_at, updated_at`

func (r *Repo) GetOrder(ctx context.Context, id string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.listItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.listItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatusTx applies one admin-driven transition, enforcing the closed
// transition table and appending the audit row in the same transaction.
// The first arrival at delivered stamps delivered_at.
func (r *Repo) UpdateStatusTx(ctx context.Context, orderID string, to Status, changedBy, notes string) (*Order, Status, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrOrderNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if !CanTransition(from, to) {
		return nil, "", &InvalidTransitionError{From: from, To: to}
	}

	if to == StatusDelivered {
		_, err = tx.Exec(ctx, `UPDATE orders SET status=$2, delivered_at=COALESCE(delivered_at, now()),
			updated_at=now() WHERE id=$1`, orderID, to)
	} else {
		_, err = tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, to)
	}
	if err != nil {
		return nil, "", err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, old_status, new_status, changed_by, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.NewString(), orderID, from, to, changedBy, nullable(notes))
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", err
	}
	o, err := r.GetOrder(ctx, orderID)
	return o, from, err
}

// AdjustStock is the admin restock/correction path. Sales never go through
// here; they are ledgered inside CreateOrderTx.
func (r *Repo) AdjustStock(ctx context.Context, productID string, change int, reason, adminID string) (*InventoryAdjustment, error) {
	if change == 0 {
		return nil, errors.New("quantity_change must be non-zero")
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stock int
	err = tx.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	if stock+change < 0 {
		return nil, &InsufficientStockError{ProductID: productID, Requested: -change, Available: stock}
	}

	if _, err := tx.Exec(ctx, `UPDATE products SET stock_quantity = stock_quantity + $2,
		updated_at = now() WHERE id=$1`, productID, change); err != nil {
		return nil, err
	}

	typ := AdjustmentRestock
	if change < 0 {
		typ = AdjustmentManual
	}
	adj := &InventoryAdjustment{
		ID:             uuid.NewString(),
		ProductID:      productID,
		AdjustmentType: typ,
		QuantityChange: change,
		OldQuantity:    stock,
		NewQuantity:    stock + change,
		Reason:         reason,
		AdminID:        adminID,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_adjustments (id, product_id, adjustment_type, quantity_change,
		                                   old_quantity, new_quantity, reason, admin_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		adj.ID, adj.ProductID, adj.AdjustmentType, adj.QuantityChange,
		adj.OldQuantity, adj.NewQuantity, adj.Reason, nullable(adj.AdminID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return adj, nil
}

func (r *Repo) listItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_brand, product_sku,
		       COALESCE(product_image_url,''), product_price, sale_price, quantity, line_total
		FROM order_items WHERE order_id=$1 ORDER BY product_name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductBrand,
			&it.ProductSKU, &it.ProductImageURL, &it.ProductPrice, &it.SalePrice,
			&it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.GuestEmail, &o.Status,
		&o.PaymentStatus, &o.PaymentMethod, &o.PaymentRef, &o.Subtotal, &o.ShippingCost,
		&o.TaxAmount, &o.DiscountAmount, &o.TotalAmount, &o.Currency, &o.ShippingAddressID,
		&o.BillingAddressID, &o.ShippingMethod, &o.PromoCode, &o.Notes,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
