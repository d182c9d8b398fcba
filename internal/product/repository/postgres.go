package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, product_no, name, unit, price, cost, stock, reserved, available,
    reorder_point, lead_time, is_deleted, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return getProduct(ctx, r.DB, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_deleted = false`, id)
}

func (r *PGRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.Product, int, error) {
	var count int
	where := ` FROM products WHERE is_deleted = false AND stock <= reorder_point`
	if err := r.DB.GetContext(ctx, &count, `SELECT count(*)`+where); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + where + ` ORDER BY (stock - reorder_point) ASC, id ASC`
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	products := []model.Product{}
	err := r.DB.SelectContext(ctx, &products, query)
	return products, count, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	args := []interface{}{f.ProductID}
	where := ` FROM stock_movements WHERE product_id = $1`
	if f.MovementType != "" {
		where += ` AND movement_type = $2`
		args = append(args, f.MovementType)
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT count(*)`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT *` + where + ` ORDER BY created_at DESC`
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	items := []model.StockMovement{}
	err := r.DB.SelectContext(ctx, &items, query, args...)
	return items, count, err
}

func (r *PGRepository) LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Product, error) {
	return getProduct(ctx, q, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) LockByIDs(ctx context.Context, q sqlx.ExtContext, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	// Rebind for Postgres ($1, $2...)
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var products []model.Product
	err = sqlx.SelectContext(ctx, q, &products, query, args...)
	return products, err
}

func (r *PGRepository) LockByCode(ctx context.Context, q sqlx.ExtContext, code string) (*model.Product, error) {
	return getProduct(ctx, q, `SELECT `+productColumns+` FROM products WHERE product_no = $1 LIMIT 1 FOR UPDATE`, code)
}

func (r *PGRepository) Create(ctx context.Context, q sqlx.ExtContext, p *model.Product) error {
	query := `
        INSERT INTO products (
            product_no, name, unit, price, cost, stock, reserved,
            reorder_point, lead_time, is_deleted, created_at, updated_at
        )
        VALUES (
            :product_no, :name, :unit, :price, :cost, :stock, :reserved,
            :reorder_point, :lead_time, :is_deleted, NOW(), NOW()
        )
        RETURNING id, created_at, updated_at`
	// available is a generated column and is never written.
	rows, err := sqlx.NamedQueryContext(ctx, q, query, p)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) Rename(ctx context.Context, q sqlx.ExtContext, id int64, name string) error {
	_, err := q.ExecContext(ctx, `UPDATE products SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	return err
}

func (r *PGRepository) Restore(ctx context.Context, q sqlx.ExtContext, id int64, name string) error {
	_, err := q.ExecContext(ctx, `UPDATE products SET is_deleted = false, name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	return err
}

func (r *PGRepository) ApplyDelta(ctx context.Context, q sqlx.ExtContext, id int64, stockDelta, reservedDelta int64) (*model.Product, error) {
	return getProduct(ctx, q, `
        UPDATE products
        SET stock = stock + $2, reserved = reserved + $3, updated_at = NOW()
        WHERE id = $1
        RETURNING `+productColumns, id, stockDelta, reservedDelta)
}

func (r *PGRepository) LogMovement(ctx context.Context, q sqlx.ExtContext, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, movement_type, stock_change, reserved_change,
            stock_after, reserved_after, reference_type, reference_id,
            notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :stock_change, :reserved_change,
            :stock_after, :reserved_after, :reference_type, :reference_id,
            :notes, :created_by, :created_at
        )`
	_, err := sqlx.NamedExecContext(ctx, q, query, m)
	return err
}

func getProduct(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Product, error) {
	var p model.Product
	err := sqlx.GetContext(ctx, q, &p, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
