package repository

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/delivery"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) OrderProgress(ctx context.Context, q sqlx.ExtContext, salesOrderID int64) ([]delivery.ItemProgress, error) {
	var items []delivery.ItemProgress
	err := sqlx.SelectContext(ctx, q, &items, `
        SELECT soi.id, soi.product_id, soi.quantity AS ordered,
               COALESCE(SUM(dni.quantity_delivered), 0) AS delivered
        FROM sales_order_items soi
        LEFT JOIN delivery_note_items dni ON dni.sales_order_item_id = soi.id
        WHERE soi.sales_order_id = $1 AND soi.is_deleted = false
        GROUP BY soi.id, soi.product_id, soi.quantity
        ORDER BY soi.id`, salesOrderID)
	return items, err
}

func (r *PGRepository) LockOrderLines(ctx context.Context, q sqlx.ExtContext, salesOrderID int64, itemIDs []int64) ([]delivery.OrderLine, error) {
	if len(itemIDs) == 0 {
		return []delivery.OrderLine{}, nil
	}
	query, args, err := sqlx.In(`
        SELECT soi.id, soi.sales_order_id, soi.product_id, soi.quantity,
               COALESCE(pp.price, p.price) AS unit_price
        FROM sales_order_items soi
        JOIN sales_orders so ON so.id = soi.sales_order_id
        JOIN products p ON p.id = soi.product_id
        LEFT JOIN product_prices pp ON pp.product_id = soi.product_id AND pp.customer_id = so.customer_id
        WHERE soi.sales_order_id = ? AND soi.is_deleted = false AND soi.id IN (?)
        ORDER BY soi.id
        FOR UPDATE OF soi`, salesOrderID, itemIDs)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var lines []delivery.OrderLine
	err = sqlx.SelectContext(ctx, q, &lines, query, args...)
	return lines, err
}

func (r *PGRepository) InsertDeliveryNote(ctx context.Context, q sqlx.ExtContext, dn *model.DeliveryNote) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO delivery_notes (
            pair_id, delivery_note_code, sales_order_id, delivery_date, status,
            created_by, created_at, updated_at
        )
        VALUES (
            :pair_id, :delivery_note_code, :sales_order_id, :delivery_date, :status,
            :created_by, NOW(), NOW()
        )
        RETURNING id, created_at, updated_at`, dn)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&dn.ID, &dn.CreatedAt, &dn.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) InsertDeliveryNoteItem(ctx context.Context, q sqlx.ExtContext, item *model.DeliveryNoteItem) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO delivery_note_items (
            delivery_note_id, sales_order_item_id, product_id, quantity_delivered,
            unit_price, line_amount
        )
        VALUES (
            :delivery_note_id, :sales_order_item_id, :product_id, :quantity_delivered,
            :unit_price, :line_amount
        )
        RETURNING id`, item)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&item.ID)
	}
	return rows.Err()
}

func (r *PGRepository) InsertInvoice(ctx context.Context, q sqlx.ExtContext, inv *model.Invoice) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO invoices (pair_id, invoice_no, sales_order_id, status, subtotal, created_at, updated_at)
        VALUES (:pair_id, :invoice_no, :sales_order_id, :status, :subtotal, NOW(), NOW())
        RETURNING id, created_at, updated_at`, inv)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) InsertInvoiceItem(ctx context.Context, q sqlx.ExtContext, item *model.InvoiceItem) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO invoice_items (
            invoice_id, sales_order_item_id, product_id, quantity, unit_price, line_amount
        )
        VALUES (
            :invoice_id, :sales_order_item_id, :product_id, :quantity, :unit_price, :line_amount
        )
        RETURNING id`, item)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&item.ID)
	}
	return rows.Err()
}

func (r *PGRepository) UpdateInvoiceSubtotal(ctx context.Context, q sqlx.ExtContext, id int64, subtotal decimal.Decimal) error {
	_, err := q.ExecContext(ctx, `UPDATE invoices SET subtotal = $2, updated_at = NOW() WHERE id = $1`, id, subtotal)
	return err
}

func (r *PGRepository) CancelInvoices(ctx context.Context, q sqlx.ExtContext, pairID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `
        UPDATE invoices SET status = 'cancelled', updated_at = NOW()
        WHERE pair_id = $1 AND status <> 'cancelled'`, pairID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
