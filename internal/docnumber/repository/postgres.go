package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct{}

func NewPGRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) LockScope(ctx context.Context, q sqlx.ExtContext, scope string) error {
	return postgres.AdvisoryLock(ctx, q, scope)
}

func (r *PGRepository) LastPairSequence(ctx context.Context, q sqlx.ExtContext, fiscalYear int) (int64, error) {
	var seq int64
	err := sqlx.GetContext(ctx, q, &seq, `
        SELECT sequence FROM doc_pairs
        WHERE fiscal_year = $1
        ORDER BY sequence DESC
        LIMIT 1
        FOR UPDATE`, fiscalYear)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return seq, err
}

func (r *PGRepository) InsertPair(ctx context.Context, q sqlx.ExtContext, pair *model.DocPair) error {
	return sqlx.GetContext(ctx, q, pair, `
        INSERT INTO doc_pairs (fiscal_year, year_yy, sequence, status, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, fiscal_year, year_yy, sequence, status, created_at`,
		pair.FiscalYear, pair.YearYY, pair.Sequence, pair.Status)
}

func (r *PGRepository) LockPair(ctx context.Context, q sqlx.ExtContext, id int64) (*model.DocPair, error) {
	var pair model.DocPair
	err := sqlx.GetContext(ctx, q, &pair, `SELECT * FROM doc_pairs WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (r *PGRepository) UpdatePairStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.DocPairStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE doc_pairs SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *PGRepository) IncrementCounter(ctx context.Context, q sqlx.ExtContext, fiscalYear int, kind docnumber.Kind, prefix string) (int64, error) {
	var seq int64
	err := sqlx.GetContext(ctx, q, &seq, `
        INSERT INTO doc_counters (fiscal_year, kind, prefix, last_seq, updated_at)
        VALUES ($1, $2, $3, 1, NOW())
        ON CONFLICT (fiscal_year, kind)
        DO UPDATE SET last_seq = doc_counters.last_seq + 1, updated_at = NOW()
        RETURNING last_seq`, fiscalYear, string(kind), prefix)
	return seq, err
}
