package reservation

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]model.ReservationView, error)

	// Sales order header and lines
	LockSalesOrder(ctx context.Context, q sqlx.ExtContext, id int64) (*model.SalesOrder, error)
	UpdateSalesOrderStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.SalesOrderStatus) error
	Position(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (Position, error)
	StatusLines(ctx context.Context, q sqlx.ExtContext, salesOrderID int64) ([]StatusLine, error)
	SoftDeleteOrderItems(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (int64, error)

	// Reservation rows. Missing rows return nil.
	GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Reservation, error)
	FindActive(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (*model.Reservation, error)
	LockByID(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Reservation, error)
	// LockOpen returns the active rows of the pair ordered by id.
	LockOpen(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) ([]model.Reservation, error)
	Insert(ctx context.Context, q sqlx.ExtContext, r *model.Reservation) error
	UpdateQuantity(ctx context.Context, q sqlx.ExtContext, id, quantity int64) error
	MarkCancelled(ctx context.Context, q sqlx.ExtContext, id int64) error
	MarkShipped(ctx context.Context, q sqlx.ExtContext, id, deliveryNoteID int64) error
}
