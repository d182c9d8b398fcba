package usecase

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type docNumberUseCase struct {
	tx        postgres.Transactor
	allocator *docnumber.Allocator
	logger    logger.Logger
}

func NewDocNumberUseCase(tx postgres.Transactor, allocator *docnumber.Allocator, log logger.Logger) docnumber.UseCase {
	return &docNumberUseCase{tx: tx, allocator: allocator, logger: log}
}

func (uc *docNumberUseCase) Allocate(ctx context.Context, kind docnumber.Kind) (*docnumber.Number, error) {
	if !kind.Valid() {
		return nil, apperr.Validation("allocate", "kind must be one of paired, quotation, po, gr")
	}
	var num *docnumber.Number
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		num, err = uc.allocator.Allocate(ctx, tx, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Document number allocated", zap.String("kind", string(kind)), zap.String("number", num.Value))
	return num, nil
}
