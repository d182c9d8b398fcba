package quotation

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*model.Quotation, error)

	LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Quotation, error)
	Create(ctx context.Context, q sqlx.ExtContext, qt *model.Quotation) error
	InsertItem(ctx context.Context, q sqlx.ExtContext, item *model.QuotationItem) error
	Approve(ctx context.Context, q sqlx.ExtContext, id int64, quotationNo string) error
	UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.QuotationStatus) error
}
