package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/quotation"
	"github.com/fekuna/omnipos-stockflow-service/internal/quotation/dto"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type quotationUseCase struct {
	repo      quotation.Repository
	allocator *docnumber.Allocator
	tx        postgres.Transactor
	logger    logger.Logger
	now       func() time.Time
}

func NewQuotationUseCase(repo quotation.Repository, allocator *docnumber.Allocator, tx postgres.Transactor, log logger.Logger) quotation.UseCase {
	return &quotationUseCase{
		repo:      repo,
		allocator: allocator,
		tx:        tx,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *quotationUseCase) Create(ctx context.Context, input *dto.CreateInput) (*model.Quotation, error) {
	const op = "create quotation"
	if input.CustomerID <= 0 {
		return nil, apperr.Validation(op, "customer_id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validation(op, "at least one line is required")
	}

	items := make([]model.QuotationItem, 0, len(input.Items))
	for _, l := range input.Items {
		desc := strings.TrimSpace(l.Description)
		switch {
		case l.ProductID == nil && desc == "":
			return nil, apperr.Validation(op, "each line needs a product or a description")
		case l.ProductID != nil && *l.ProductID <= 0:
			return nil, apperr.Validation(op, "invalid product id %d", *l.ProductID)
		case l.Quantity <= 0:
			return nil, apperr.Validation(op, "quantity must be greater than zero")
		case l.UnitPrice.IsNegative():
			return nil, apperr.Validation(op, "unit_price must not be negative")
		}
		items = append(items, model.QuotationItem{
			ProductID:   l.ProductID,
			Description: desc,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	docDate := uc.now()
	if input.DocDate != nil {
		docDate = *input.DocDate
	}
	qt := &model.Quotation{
		CustomerID: input.CustomerID,
		DocDate:    docDate,
		Status:     model.QuotationDraft,
		Subtotal:   quotation.Price(items),
	}
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := uc.repo.Create(ctx, tx, qt); err != nil {
			return err
		}
		for i := range items {
			items[i].QuotationID = qt.ID
			if err := uc.repo.InsertItem(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	qt.Items = items

	uc.logger.Info("Quotation drafted",
		zap.Int64("quotation_id", qt.ID),
		zap.Int64("customer_id", qt.CustomerID),
		zap.String("subtotal", qt.Subtotal.StringFixed(2)),
	)
	return qt, nil
}

func (uc *quotationUseCase) Get(ctx context.Context, id int64) (*model.Quotation, error) {
	qt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if qt == nil {
		return nil, apperr.NotFound("get quotation", "quotation", id)
	}
	return qt, nil
}

// Approve numbers a draft from the MQ counter.
func (uc *quotationUseCase) Approve(ctx context.Context, id int64) (*model.Quotation, error) {
	const op = "approve quotation"

	var qt *model.Quotation
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		qt, err = uc.lock(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if qt.Status != model.QuotationDraft {
			return apperr.Conflict(op, "quotation", id, "only a DRAFT quotation can be approved, status is %s", qt.Status)
		}
		num, err := uc.allocator.Allocate(ctx, tx, docnumber.KindQuotation)
		if err != nil {
			return err
		}
		if err := uc.repo.Approve(ctx, tx, id, num.Value); err != nil {
			return err
		}
		qt.QuotationNo = &num.Value
		qt.Status = model.QuotationApproved
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Quotation approved", zap.Int64("quotation_id", id), zap.String("quotation_no", *qt.QuotationNo))
	return qt, nil
}

// Void flips the status only; an issued number stays consumed.
func (uc *quotationUseCase) Void(ctx context.Context, id int64) (*model.Quotation, error) {
	const op = "void quotation"

	var qt *model.Quotation
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		qt, err = uc.lock(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if qt.Status == model.QuotationVoid {
			return apperr.Conflict(op, "quotation", id, "quotation is already void")
		}
		qt.Status = model.QuotationVoid
		return uc.repo.UpdateStatus(ctx, tx, id, model.QuotationVoid)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Quotation voided", zap.Int64("quotation_id", id))
	return qt, nil
}

func (uc *quotationUseCase) lock(ctx context.Context, tx sqlx.ExtContext, op string, id int64) (*model.Quotation, error) {
	qt, err := uc.repo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if qt == nil {
		return nil, apperr.NotFound(op, "quotation", id)
	}
	return qt, nil
}
