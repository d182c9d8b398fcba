package purchase

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*model.PurchaseOrder, error)

	LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.PurchaseOrder, error)
	LockItems(ctx context.Context, q sqlx.ExtContext, poID int64) ([]model.PurchaseOrderItem, error)
	Create(ctx context.Context, q sqlx.ExtContext, po *model.PurchaseOrder) error
	InsertItem(ctx context.Context, q sqlx.ExtContext, item *model.PurchaseOrderItem) error
	DeleteItem(ctx context.Context, q sqlx.ExtContext, poID, itemID int64) (int64, error)
	Approve(ctx context.Context, q sqlx.ExtContext, id int64, poNo string) error
	UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.PurchaseOrderStatus) error
	CountReceipts(ctx context.Context, q sqlx.ExtContext, poID int64) (int64, error)
	Delete(ctx context.Context, q sqlx.ExtContext, id int64) error

	InsertReceipt(ctx context.Context, q sqlx.ExtContext, gr *model.GoodsReceipt) error
	InsertReceiptItem(ctx context.Context, q sqlx.ExtContext, item *model.GoodsReceiptItem) error
	AddReceived(ctx context.Context, q sqlx.ExtContext, itemID, qty int64) error
}
