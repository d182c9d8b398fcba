package purchase

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateInput) (*model.PurchaseOrder, error)
	Get(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	AddItem(ctx context.Context, poID int64, input *dto.ItemInput) (*model.PurchaseOrderItem, error)
	RemoveItem(ctx context.Context, poID, itemID int64) error
	Approve(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	Delete(ctx context.Context, id int64) error
	Receive(ctx context.Context, input *dto.ReceiveInput) (*dto.ReceiveResult, error)
}
