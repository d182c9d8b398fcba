package reservation

import (
	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
)

// Position is the demand picture of one (sales order, product) pair.
type Position struct {
	Ordered   int64 `db:"ordered"`
	Delivered int64 `db:"delivered"`
	Reserved  int64 `db:"reserved"`
}

// Remaining is what is still owed to the customer.
func (p Position) Remaining() int64 {
	return max(p.Ordered-p.Delivered, 0)
}

// Unreserved is the part of Remaining not yet covered by active reservations.
func (p Position) Unreserved() int64 {
	return max(p.Ordered-p.Delivered-p.Reserved, 0)
}

// CheckIncrease validates reserving qty more units of a product whose current
// availability is available.
func CheckIncrease(op string, productID int64, pos Position, available, qty int64) error {
	if qty > pos.Unreserved() {
		return apperr.Insufficient(op, "product", productID, "remaining unreserved", qty, pos.Unreserved())
	}
	if qty > available {
		return apperr.Insufficient(op, "product", productID, "available", qty, available)
	}
	return nil
}

// StatusLine is one ordered product of a sales order with its totals.
type StatusLine struct {
	ProductID int64 `db:"product_id"`
	Position
}

// OrderStatus derives the reservation status of a sales order. An order with
// no lines is awaiting reservation.
func OrderStatus(lines []StatusLine) model.SalesOrderStatus {
	if len(lines) == 0 {
		return model.SOAwaitingReservation
	}
	allFull, anyReserved := true, false
	for _, l := range lines {
		if l.Reserved > 0 {
			anyReserved = true
		}
		if l.Reserved < l.Remaining() {
			allFull = false
		}
	}
	switch {
	case allFull:
		return model.SOFullyReserved
	case anyReserved:
		return model.SOPartiallyReserved
	default:
		return model.SOAwaitingReservation
	}
}
