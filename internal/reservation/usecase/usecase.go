package usecase

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/tracing"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation/dto"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const refReservation = "reservation"

type reservationUseCase struct {
	repo   reservation.Repository
	ledger *product.Ledger
	tx     postgres.Transactor
	events *events.Emitter
	logger logger.Logger
}

func NewReservationUseCase(repo reservation.Repository, ledger *product.Ledger, tx postgres.Transactor, emitter *events.Emitter, log logger.Logger) reservation.UseCase {
	return &reservationUseCase{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		events: emitter,
		logger: log,
	}
}

func (uc *reservationUseCase) Reserve(ctx context.Context, input *dto.ReserveInput) (*model.Reservation, error) {
	ctx, span := tracing.Start(ctx, "reservation.Reserve")
	defer span.End()

	if err := validateLine("reserve", input.SalesOrderID, input.ProductID, input.Quantity); err != nil {
		return nil, err
	}

	var (
		res    *model.Reservation
		status model.SalesOrderStatus
	)
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := uc.lockSalesOrder(ctx, tx, input.SalesOrderID); err != nil {
			return err
		}
		var err error
		res, err = uc.reserveLine(ctx, tx, input.SalesOrderID, input.ProductID, input.Quantity)
		if err != nil {
			return err
		}
		status, err = reservation.Recompute(ctx, tx, uc.repo, input.SalesOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Stock reserved",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("sales_order_id", res.SalesOrderID),
		zap.Int64("product_id", res.ProductID),
		zap.Int64("quantity", res.QuantityReserved),
	)
	uc.ledger.StockChanged(ctx)
	uc.emit(ctx, res.SalesOrderID, res, "reserved", status)
	return res, nil
}

func (uc *reservationUseCase) BulkReserve(ctx context.Context, input *dto.BulkReserveInput) ([]model.Reservation, error) {
	ctx, span := tracing.Start(ctx, "reservation.BulkReserve")
	defer span.End()

	if len(input.Items) == 0 {
		return nil, apperr.Validation("bulk reserve", "items must not be empty")
	}
	for _, it := range input.Items {
		if err := validateLine("bulk reserve", input.SalesOrderID, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	var (
		out    []model.Reservation
		status model.SalesOrderStatus
	)
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		out = out[:0]
		if err := uc.lockSalesOrder(ctx, tx, input.SalesOrderID); err != nil {
			return err
		}
		for _, it := range input.Items {
			res, err := uc.reserveLine(ctx, tx, input.SalesOrderID, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			out = append(out, *res)
		}
		var err error
		status, err = reservation.Recompute(ctx, tx, uc.repo, input.SalesOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Bulk reservation committed",
		zap.Int64("sales_order_id", input.SalesOrderID),
		zap.Int("lines", len(out)),
	)
	uc.ledger.StockChanged(ctx)
	for i := range out {
		uc.emit(ctx, input.SalesOrderID, &out[i], "reserved", status)
	}
	return out, nil
}

func (uc *reservationUseCase) Update(ctx context.Context, input *dto.UpdateInput) (*model.Reservation, error) {
	const op = "update reservation"
	ctx, span := tracing.Start(ctx, "reservation.Update")
	defer span.End()

	if input.ReservationID <= 0 {
		return nil, apperr.Validation(op, "reservation id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperr.Validation(op, "quantity must be greater than zero")
	}

	var (
		res    *model.Reservation
		delta  int64
		status model.SalesOrderStatus
	)
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		res, err = uc.lockActive(ctx, tx, op, input.ReservationID)
		if err != nil {
			return err
		}
		p, err := uc.ledger.Lock(ctx, tx, res.ProductID)
		if err != nil {
			return err
		}

		delta = input.Quantity - res.QuantityReserved
		if delta > 0 {
			pos, err := uc.repo.Position(ctx, tx, res.SalesOrderID, res.ProductID)
			if err != nil {
				return err
			}
			if err := reservation.CheckIncrease(op, p.ID, pos, p.Stock-p.Reserved, delta); err != nil {
				return err
			}
		}
		if delta != 0 {
			if err := uc.repo.UpdateQuantity(ctx, tx, res.ID, input.Quantity); err != nil {
				return err
			}
			movement := model.MovementReserve
			if delta < 0 {
				movement = model.MovementUnreserve
			}
			if _, err := uc.ledger.Apply(ctx, tx, product.Change{
				ProductID:     res.ProductID,
				ReservedDelta: delta,
				Movement:      movement,
				RefType:       refReservation,
				RefID:         res.ID,
				Notes:         "reservation quantity changed",
			}); err != nil {
				return err
			}
			res.QuantityReserved = input.Quantity
		}
		status, err = reservation.Recompute(ctx, tx, uc.repo, res.SalesOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Reservation updated",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("delta", delta),
		zap.Int64("quantity", res.QuantityReserved),
	)
	uc.ledger.StockChanged(ctx)
	uc.emit(ctx, res.SalesOrderID, res, "updated", status)
	return res, nil
}

func (uc *reservationUseCase) Cancel(ctx context.Context, id int64) error {
	const op = "cancel reservation"
	ctx, span := tracing.Start(ctx, "reservation.Cancel")
	defer span.End()

	if id <= 0 {
		return apperr.Validation(op, "reservation id is required")
	}

	var (
		res    *model.Reservation
		status model.SalesOrderStatus
	)
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		res, err = uc.lockActive(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if err := uc.repo.MarkCancelled(ctx, tx, res.ID); err != nil {
			return err
		}
		if _, err := uc.ledger.Apply(ctx, tx, product.Change{
			ProductID:     res.ProductID,
			ReservedDelta: -res.QuantityReserved,
			Movement:      model.MovementUnreserve,
			RefType:       refReservation,
			RefID:         res.ID,
			Notes:         "reservation cancelled",
		}); err != nil {
			return err
		}
		res.Status = model.ReservationCancelled
		res.IsDeleted = true
		status, err = reservation.Recompute(ctx, tx, uc.repo, res.SalesOrderID)
		return err
	})
	if err != nil {
		return err
	}

	uc.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("product_id", res.ProductID),
		zap.Int64("quantity", res.QuantityReserved),
	)
	uc.ledger.StockChanged(ctx)
	uc.emit(ctx, res.SalesOrderID, res, "cancelled", status)
	return nil
}

func (uc *reservationUseCase) ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]model.ReservationView, error) {
	if salesOrderID <= 0 {
		return nil, apperr.Validation("list reservations", "sales order id is required")
	}
	return uc.repo.ListBySalesOrder(ctx, salesOrderID)
}

func (uc *reservationUseCase) RecomputeStatus(ctx context.Context, salesOrderID int64) (model.SalesOrderStatus, error) {
	if salesOrderID <= 0 {
		return "", apperr.Validation("recompute status", "sales order id is required")
	}
	var status model.SalesOrderStatus
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := uc.lockSalesOrder(ctx, tx, salesOrderID); err != nil {
			return err
		}
		var err error
		status, err = reservation.Recompute(ctx, tx, uc.repo, salesOrderID)
		return err
	})
	return status, err
}

// DeleteOrderItem soft deletes the lines of a product on a sales order. It
// refuses while stock is reserved or anything was delivered for that product.
func (uc *reservationUseCase) DeleteOrderItem(ctx context.Context, salesOrderID, productID int64) error {
	const op = "delete order item"
	if salesOrderID <= 0 || productID <= 0 {
		return apperr.Validation(op, "sales order id and product id are required")
	}

	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := uc.lockSalesOrder(ctx, tx, salesOrderID); err != nil {
			return err
		}
		active, err := uc.repo.FindActive(ctx, tx, salesOrderID, productID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.Conflict(op, "reservation", active.ID, "product %d still has an active reservation; cancel it first", productID)
		}
		pos, err := uc.repo.Position(ctx, tx, salesOrderID, productID)
		if err != nil {
			return err
		}
		if pos.Delivered > 0 {
			return apperr.Conflict(op, "product", productID, "product %d was already delivered on sales order %d", productID, salesOrderID)
		}
		n, err := uc.repo.SoftDeleteOrderItems(ctx, tx, salesOrderID, productID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(op, "sales_order_item", productID)
		}
		_, err = reservation.Recompute(ctx, tx, uc.repo, salesOrderID)
		return err
	})
	if err != nil {
		return err
	}
	uc.logger.Info("Sales order item deleted", zap.Int64("sales_order_id", salesOrderID), zap.Int64("product_id", productID))
	return nil
}

// reserveLine inserts one reservation. The caller holds the sales order lock.
func (uc *reservationUseCase) reserveLine(ctx context.Context, tx sqlx.ExtContext, salesOrderID, productID, qty int64) (*model.Reservation, error) {
	const op = "reserve"

	p, err := uc.ledger.Lock(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	dup, err := uc.repo.FindActive(ctx, tx, salesOrderID, productID)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, apperr.Conflict(op, "reservation", dup.ID,
			"sales order %d already has an active reservation for product %d; update it instead", salesOrderID, productID)
	}
	pos, err := uc.repo.Position(ctx, tx, salesOrderID, productID)
	if err != nil {
		return nil, err
	}
	if err := reservation.CheckIncrease(op, productID, pos, p.Stock-p.Reserved, qty); err != nil {
		return nil, err
	}

	res := &model.Reservation{
		SalesOrderID:     salesOrderID,
		ProductID:        productID,
		QuantityReserved: qty,
		Status:           model.ReservationReserved,
	}
	if err := uc.repo.Insert(ctx, tx, res); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.Apply(ctx, tx, product.Change{
		ProductID:     productID,
		ReservedDelta: qty,
		Movement:      model.MovementReserve,
		RefType:       refReservation,
		RefID:         res.ID,
		Notes:         "reserved for sales order",
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// lockActive locks the sales order of reservation id and then the
// reservation itself, keeping the header-first lock order.
func (uc *reservationUseCase) lockActive(ctx context.Context, tx sqlx.ExtContext, op string, id int64) (*model.Reservation, error) {
	peek, err := uc.repo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if peek == nil || !peek.Active() {
		return nil, apperr.NotFound(op, "reservation", id)
	}
	if err := uc.lockSalesOrder(ctx, tx, peek.SalesOrderID); err != nil {
		return nil, err
	}
	res, err := uc.repo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if res == nil || !res.Active() {
		return nil, apperr.NotFound(op, "reservation", id)
	}
	return res, nil
}

func (uc *reservationUseCase) lockSalesOrder(ctx context.Context, tx sqlx.ExtContext, id int64) error {
	so, err := uc.repo.LockSalesOrder(ctx, tx, id)
	if err != nil {
		return err
	}
	if so == nil {
		return apperr.NotFound("lock sales order", "sales_order", id)
	}
	return nil
}

func (uc *reservationUseCase) emit(ctx context.Context, salesOrderID int64, res *model.Reservation, action string, status model.SalesOrderStatus) {
	uc.events.Emit(ctx, events.ReservationChanged, salesOrderID, dto.ChangedEvent{
		SalesOrderID:  salesOrderID,
		ReservationID: res.ID,
		ProductID:     res.ProductID,
		Quantity:      res.QuantityReserved,
		Action:        action,
		OrderStatus:   status,
	})
}

func validateLine(op string, salesOrderID, productID, qty int64) error {
	if salesOrderID <= 0 || productID <= 0 {
		return apperr.Validation(op, "sales order id and product id are required")
	}
	if qty <= 0 {
		return apperr.Validation(op, "quantity must be greater than zero")
	}
	return nil
}
