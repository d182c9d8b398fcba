package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const quotationColumns = `id, quotation_no, customer_id, doc_date, status, subtotal, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*model.Quotation, error) {
	qt, err := getQuotation(ctx, r.DB, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	if err != nil || qt == nil {
		return qt, err
	}
	qt.Items = []model.QuotationItem{}
	err = r.DB.SelectContext(ctx, &qt.Items, `
        SELECT id, quotation_id, product_id, description, quantity, unit_price, line_amount
        FROM quotation_items WHERE quotation_id = $1 ORDER BY id`, id)
	return qt, err
}

func (r *PGRepository) LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Quotation, error) {
	return getQuotation(ctx, q, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) Create(ctx context.Context, q sqlx.ExtContext, qt *model.Quotation) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO quotations (quotation_no, customer_id, doc_date, status, subtotal, created_at, updated_at)
        VALUES (:quotation_no, :customer_id, :doc_date, :status, :subtotal, NOW(), NOW())
        RETURNING id, created_at, updated_at`, qt)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&qt.ID, &qt.CreatedAt, &qt.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) InsertItem(ctx context.Context, q sqlx.ExtContext, item *model.QuotationItem) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO quotation_items (quotation_id, product_id, description, quantity, unit_price, line_amount)
        VALUES (:quotation_id, :product_id, :description, :quantity, :unit_price, :line_amount)
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

func (r *PGRepository) Approve(ctx context.Context, q sqlx.ExtContext, id int64, quotationNo string) error {
	_, err := q.ExecContext(ctx, `
        UPDATE quotations SET quotation_no = $2, status = 'APPROVED', updated_at = NOW()
        WHERE id = $1`, id, quotationNo)
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.QuotationStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE quotations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func getQuotation(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Quotation, error) {
	var qt model.Quotation
	if err := sqlx.GetContext(ctx, q, &qt, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &qt, nil
}
