package delivery

import (
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
)

// DeliverNow caps a shipment at what is both still owed and reserved.
func DeliverNow(ordered, deliveredBefore, reservedLeft int64) int64 {
	remaining := max(ordered-deliveredBefore, 0)
	return max(min(remaining, reservedLeft), 0)
}

// Consumption is one step of walking the open reservations of a line.
// A partial take splits the row: the remainder stays reserved and a new
// shipped row records the taken part.
type Consumption struct {
	ReservationID int64
	Take          int64
	Remainder     int64
}

func (c Consumption) Split() bool {
	return c.Remainder > 0
}

// ConsumeFIFO takes qty from rows in ascending id order. It returns the
// steps and the quantity it could not cover.
func ConsumeFIFO(rows []model.Reservation, qty int64) ([]Consumption, int64) {
	var steps []Consumption
	need := qty
	for _, r := range rows {
		if need <= 0 {
			break
		}
		if r.QuantityReserved <= 0 {
			continue
		}
		take := min(r.QuantityReserved, need)
		steps = append(steps, Consumption{
			ReservationID: r.ID,
			Take:          take,
			Remainder:     r.QuantityReserved - take,
		})
		need -= take
	}
	return steps, need
}

// ItemProgress is the ordered and delivered quantity of one order item.
type ItemProgress struct {
	ItemID    int64 `db:"id"`
	ProductID int64 `db:"product_id"`
	Ordered   int64 `db:"ordered"`
	Delivered int64 `db:"delivered"`
}

// OrderStatus reports fully delivered only when every item is.
func OrderStatus(items []ItemProgress) model.SalesOrderStatus {
	for _, it := range items {
		if it.Delivered < it.Ordered {
			return model.SOPartiallyDelivered
		}
	}
	return model.SOFullyDelivered
}
