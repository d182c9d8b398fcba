package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stockflow-service/internal/bom"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/jmoiron/sqlx"
)

const bomColumns = `id, bom_code, bom_name, is_deleted, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*model.BOM, error) {
	b, err := getBOM(ctx, r.DB, `SELECT `+bomColumns+` FROM boms WHERE id = $1 AND is_deleted = false`, id)
	if err != nil || b == nil {
		return b, err
	}
	b.Components, err = components(ctx, r.DB, id)
	return b, err
}

func (r *PGRepository) ComponentStock(ctx context.Context, bomID int64) ([]bom.ComponentStock, error) {
	items := []bom.ComponentStock{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT c.product_id, p.product_no, p.name AS product_name, c.quantity_required,
               p.stock, p.reserved, p.is_deleted
        FROM bom_components c
        JOIN products p ON p.id = c.product_id
        WHERE c.bom_id = $1
        ORDER BY c.id`, bomID)
	return items, err
}

func (r *PGRepository) LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.BOM, error) {
	b, err := getBOM(ctx, q, `SELECT `+bomColumns+` FROM boms WHERE id = $1 AND is_deleted = false FOR UPDATE`, id)
	if err != nil || b == nil {
		return b, err
	}
	b.Components, err = components(ctx, q, id)
	return b, err
}

func (r *PGRepository) LockCodes(ctx context.Context, q sqlx.ExtContext) error {
	return postgres.AdvisoryLock(ctx, q, "boms:code")
}

func (r *PGRepository) LastCode(ctx context.Context, q sqlx.ExtContext) (string, error) {
	var code string
	err := sqlx.GetContext(ctx, q, &code, `
        SELECT bom_code FROM boms
        WHERE bom_code LIKE 'BOM-%'
        ORDER BY length(bom_code) DESC, bom_code DESC
        LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return code, err
}

func (r *PGRepository) Create(ctx context.Context, q sqlx.ExtContext, b *model.BOM) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, `
        INSERT INTO boms (bom_code, bom_name, is_deleted, created_at, updated_at)
        VALUES (:bom_code, :bom_name, false, NOW(), NOW())
        RETURNING id, created_at, updated_at`, b)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) Rename(ctx context.Context, q sqlx.ExtContext, id int64, name string) error {
	_, err := q.ExecContext(ctx, `UPDATE boms SET bom_name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	return err
}

func (r *PGRepository) ReplaceComponents(ctx context.Context, q sqlx.ExtContext, bomID int64, comps []model.BOMComponent) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM bom_components WHERE bom_id = $1`, bomID); err != nil {
		return err
	}
	for _, c := range comps {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO bom_components (bom_id, product_id, quantity_required) VALUES ($1, $2, $3)`,
			bomID, c.ProductID, c.QuantityRequired); err != nil {
			return err
		}
	}
	_, err := q.ExecContext(ctx, `UPDATE boms SET updated_at = NOW() WHERE id = $1`, bomID)
	return err
}

func (r *PGRepository) SoftDelete(ctx context.Context, q sqlx.ExtContext, id int64) error {
	_, err := q.ExecContext(ctx, `UPDATE boms SET is_deleted = true, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func getBOM(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.BOM, error) {
	var b model.BOM
	if err := sqlx.GetContext(ctx, q, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func components(ctx context.Context, q sqlx.QueryerContext, bomID int64) ([]model.BOMComponent, error) {
	items := []model.BOMComponent{}
	err := sqlx.SelectContext(ctx, q, &items, `
        SELECT id, bom_id, product_id, quantity_required
        FROM bom_components WHERE bom_id = $1 ORDER BY id`, bomID)
	return items, err
}
