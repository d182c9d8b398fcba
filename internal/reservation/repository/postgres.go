package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/jmoiron/sqlx"
)

const activeReservation = `is_deleted = false AND status = 'reserved' AND used_in_dn_id IS NULL`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]model.ReservationView, error) {
	items := []model.ReservationView{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT r.id, r.sales_order_id, r.product_id, r.quantity_reserved, r.status,
               r.is_deleted, r.used_in_dn_id, r.created_at, r.updated_at,
               p.product_no, p.name AS product_name, p.stock, p.reserved, p.available
        FROM stock_reservations r
        JOIN products p ON p.id = r.product_id
        WHERE r.sales_order_id = $1 AND r.is_deleted = false
        ORDER BY r.id DESC`, salesOrderID)
	return items, err
}

func (r *PGRepository) LockSalesOrder(ctx context.Context, q sqlx.ExtContext, id int64) (*model.SalesOrder, error) {
	var so model.SalesOrder
	err := sqlx.GetContext(ctx, q, &so, `SELECT * FROM sales_orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &so, nil
}

func (r *PGRepository) UpdateSalesOrderStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.SalesOrderStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE sales_orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *PGRepository) Position(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (reservation.Position, error) {
	var pos reservation.Position
	err := sqlx.GetContext(ctx, q, &pos, `
        SELECT
            (SELECT COALESCE(SUM(quantity), 0) FROM sales_order_items
              WHERE sales_order_id = $1 AND product_id = $2 AND is_deleted = false) AS ordered,
            (SELECT COALESCE(SUM(dni.quantity_delivered), 0)
               FROM delivery_note_items dni
               JOIN delivery_notes dn ON dn.id = dni.delivery_note_id
              WHERE dn.sales_order_id = $1 AND dni.product_id = $2) AS delivered,
            (SELECT COALESCE(SUM(quantity_reserved), 0) FROM stock_reservations
              WHERE sales_order_id = $1 AND product_id = $2 AND `+activeReservation+`) AS reserved`,
		salesOrderID, productID)
	return pos, err
}

func (r *PGRepository) StatusLines(ctx context.Context, q sqlx.ExtContext, salesOrderID int64) ([]reservation.StatusLine, error) {
	var lines []reservation.StatusLine
	err := sqlx.SelectContext(ctx, q, &lines, `
        WITH ordered AS (
            SELECT product_id, SUM(quantity) AS ordered
            FROM sales_order_items
            WHERE sales_order_id = $1 AND is_deleted = false
            GROUP BY product_id
        ), delivered AS (
            SELECT dni.product_id, SUM(dni.quantity_delivered) AS delivered
            FROM delivery_note_items dni
            JOIN delivery_notes dn ON dn.id = dni.delivery_note_id
            WHERE dn.sales_order_id = $1
            GROUP BY dni.product_id
        ), reserved AS (
            SELECT product_id, SUM(quantity_reserved) AS reserved
            FROM stock_reservations
            WHERE sales_order_id = $1 AND `+activeReservation+`
            GROUP BY product_id
        )
        SELECT o.product_id, o.ordered,
               COALESCE(d.delivered, 0) AS delivered,
               COALESCE(rv.reserved, 0) AS reserved
        FROM ordered o
        LEFT JOIN delivered d ON d.product_id = o.product_id
        LEFT JOIN reserved rv ON rv.product_id = o.product_id
        ORDER BY o.product_id`, salesOrderID)
	return lines, err
}

func (r *PGRepository) SoftDeleteOrderItems(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `
        UPDATE sales_order_items SET is_deleted = true, updated_at = NOW()
        WHERE sales_order_id = $1 AND product_id = $2 AND is_deleted = false`, salesOrderID, productID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Reservation, error) {
	return getReservation(ctx, q, `SELECT * FROM stock_reservations WHERE id = $1`, id)
}

func (r *PGRepository) FindActive(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (*model.Reservation, error) {
	return getReservation(ctx, q, `
        SELECT * FROM stock_reservations
        WHERE sales_order_id = $1 AND product_id = $2 AND `+activeReservation+`
        ORDER BY id LIMIT 1`, salesOrderID, productID)
}

func (r *PGRepository) LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Reservation, error) {
	return getReservation(ctx, q, `SELECT * FROM stock_reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) LockOpen(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) ([]model.Reservation, error) {
	var rows []model.Reservation
	err := sqlx.SelectContext(ctx, q, &rows, `
        SELECT * FROM stock_reservations
        WHERE sales_order_id = $1 AND product_id = $2 AND `+activeReservation+`
        ORDER BY id ASC
        FOR UPDATE`, salesOrderID, productID)
	return rows, err
}

func (r *PGRepository) Insert(ctx context.Context, q sqlx.ExtContext, res *model.Reservation) error {
	query := `
        INSERT INTO stock_reservations (
            sales_order_id, product_id, quantity_reserved, status, is_deleted,
            used_in_dn_id, created_at, updated_at
        )
        VALUES (
            :sales_order_id, :product_id, :quantity_reserved, :status, :is_deleted,
            :used_in_dn_id, NOW(), NOW()
        )
        RETURNING id, created_at, updated_at`
	rows, err := sqlx.NamedQueryContext(ctx, q, query, res)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, q sqlx.ExtContext, id, quantity int64) error {
	_, err := q.ExecContext(ctx, `UPDATE stock_reservations SET quantity_reserved = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	return err
}

func (r *PGRepository) MarkCancelled(ctx context.Context, q sqlx.ExtContext, id int64) error {
	_, err := q.ExecContext(ctx, `
        UPDATE stock_reservations SET status = 'cancelled', is_deleted = true, updated_at = NOW()
        WHERE id = $1`, id)
	return err
}

func (r *PGRepository) MarkShipped(ctx context.Context, q sqlx.ExtContext, id, deliveryNoteID int64) error {
	_, err := q.ExecContext(ctx, `
        UPDATE stock_reservations SET status = 'shipped', used_in_dn_id = $2, updated_at = NOW()
        WHERE id = $1`, id, deliveryNoteID)
	return err
}

func getReservation(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Reservation, error) {
	var res model.Reservation
	if err := sqlx.GetContext(ctx, q, &res, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}
