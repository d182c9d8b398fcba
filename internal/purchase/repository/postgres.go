package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	poColumns   = `id, po_no, supplier_id, order_date, expected_date, status, note, created_at, updated_at`
	itemColumns = `id, purchase_order_id, product_id, quantity_ordered, quantity_received, unit_price, created_at, updated_at`
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	po, err := getPO(ctx, r.DB, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, id)
	if err != nil || po == nil {
		return po, err
	}
	po.Items = []model.PurchaseOrderItem{}
	err = r.DB.SelectContext(ctx, &po.Items, `SELECT `+itemColumns+` FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY id`, id)
	return po, err
}

func (r *PGRepository) LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.PurchaseOrder, error) {
	return getPO(ctx, q, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) LockItems(ctx context.Context, q sqlx.ExtContext, poID int64) ([]model.PurchaseOrderItem, error) {
	var items []model.PurchaseOrderItem
	err := sqlx.SelectContext(ctx, q, &items, `
        SELECT `+itemColumns+` FROM purchase_order_items
        WHERE purchase_order_id = $1
        ORDER BY id
        FOR UPDATE`, poID)
	return items, err
}

func (r *PGRepository) Create(ctx context.Context, q sqlx.ExtContext, po *model.PurchaseOrder) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO purchase_orders (
            po_no, supplier_id, order_date, expected_date, status, note, created_at, updated_at
        )
        VALUES (
            :po_no, :supplier_id, :order_date, :expected_date, :status, :note, NOW(), NOW()
        )
        RETURNING id, created_at, updated_at`, po)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) InsertItem(ctx context.Context, q sqlx.ExtContext, item *model.PurchaseOrderItem) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO purchase_order_items (
            purchase_order_id, product_id, quantity_ordered, quantity_received, unit_price,
            created_at, updated_at
        )
        VALUES (
            :purchase_order_id, :product_id, :quantity_ordered, 0, :unit_price, NOW(), NOW()
        )
        RETURNING id, created_at, updated_at`, item)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) DeleteItem(ctx context.Context, q sqlx.ExtContext, poID, itemID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM purchase_order_items WHERE id = $1 AND purchase_order_id = $2`, itemID, poID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) Approve(ctx context.Context, q sqlx.ExtContext, id int64, poNo string) error {
	_, err := q.ExecContext(ctx, `
        UPDATE purchase_orders SET po_no = $2, status = 'approved', updated_at = NOW()
        WHERE id = $1`, id, poNo)
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.PurchaseOrderStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE purchase_orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *PGRepository) CountReceipts(ctx context.Context, q sqlx.ExtContext, poID int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, q, &n, `SELECT count(*) FROM goods_receipts WHERE purchase_order_id = $1`, poID)
	return n, err
}

func (r *PGRepository) Delete(ctx context.Context, q sqlx.ExtContext, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, id); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	return err
}

func (r *PGRepository) InsertReceipt(ctx context.Context, q sqlx.ExtContext, gr *model.GoodsReceipt) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO goods_receipts (
            gr_no, purchase_order_id, received_date, status, note, created_at, updated_at
        )
        VALUES (
            :gr_no, :purchase_order_id, :received_date, :status, :note, NOW(), NOW()
        )
        RETURNING id, created_at, updated_at`, gr)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&gr.ID, &gr.CreatedAt, &gr.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) InsertReceiptItem(ctx context.Context, q sqlx.ExtContext, item *model.GoodsReceiptItem) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO goods_receipt_items (goods_receipt_id, purchase_order_item_id, quantity_received)
        VALUES (:goods_receipt_id, :purchase_order_item_id, :quantity_received)
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

func (r *PGRepository) AddReceived(ctx context.Context, q sqlx.ExtContext, itemID, qty int64) error {
	_, err := q.ExecContext(ctx, `
        UPDATE purchase_order_items
        SET quantity_received = quantity_received + $2, updated_at = NOW()
        WHERE id = $1`, itemID, qty)
	return err
}

func getPO(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := sqlx.GetContext(ctx, q, &po, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}
