package reservation

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation/dto"
)

type UseCase interface {
	Reserve(ctx context.Context, input *dto.ReserveInput) (*model.Reservation, error)
	BulkReserve(ctx context.Context, input *dto.BulkReserveInput) ([]model.Reservation, error)
	Update(ctx context.Context, input *dto.UpdateInput) (*model.Reservation, error)
	Cancel(ctx context.Context, id int64) error
	ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]model.ReservationView, error)
	RecomputeStatus(ctx context.Context, salesOrderID int64) (model.SalesOrderStatus, error)
	DeleteOrderItem(ctx context.Context, salesOrderID, productID int64) error
}
