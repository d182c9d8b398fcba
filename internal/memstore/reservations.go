package memstore

import (
	"context"
	"slices"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/jmoiron/sqlx"
)

// ReservationRepo implements reservation.Repository.
type ReservationRepo struct{ s *Store }

func (s *Store) Reservations() *ReservationRepo { return &ReservationRepo{s: s} }

func (r *ReservationRepo) ListBySalesOrder(_ context.Context, salesOrderID int64) ([]model.ReservationView, error) {
	out := []model.ReservationView{}
	r.s.read(func(d *state) {
		for _, res := range d.reservations {
			if res.SalesOrderID != salesOrderID || res.IsDeleted {
				continue
			}
			p := d.products[res.ProductID]
			out = append(out, model.ReservationView{
				Reservation: res,
				ProductCode: p.Code,
				ProductName: p.Name,
				Stock:       p.Stock,
				Reserved:    p.Reserved,
				Available:   p.Available,
			})
		}
	})
	slices.SortFunc(out, func(a, b model.ReservationView) int { return cmpID(b.ID, a.ID) })
	return out, nil
}

func (r *ReservationRepo) LockSalesOrder(_ context.Context, _ sqlx.ExtContext, id int64) (*model.SalesOrder, error) {
	var out *model.SalesOrder
	r.s.read(func(d *state) {
		if so, ok := d.salesOrders[id]; ok {
			out = &so
		}
	})
	return out, nil
}

func (r *ReservationRepo) UpdateSalesOrderStatus(_ context.Context, _ sqlx.ExtContext, id int64, status model.SalesOrderStatus) error {
	r.s.write(func(d *state) {
		if so, ok := d.salesOrders[id]; ok {
			so.Status = status
			so.UpdatedAt = r.s.now()
			d.salesOrders[id] = so
		}
	})
	return nil
}

func (r *ReservationRepo) Position(_ context.Context, _ sqlx.ExtContext, salesOrderID, productID int64) (reservation.Position, error) {
	var pos reservation.Position
	r.s.read(func(d *state) { pos = d.position(salesOrderID, productID) })
	return pos, nil
}

func (r *ReservationRepo) StatusLines(_ context.Context, _ sqlx.ExtContext, salesOrderID int64) ([]reservation.StatusLine, error) {
	var lines []reservation.StatusLine
	r.s.read(func(d *state) {
		seen := map[int64]bool{}
		for _, it := range d.orderItems {
			if it.SalesOrderID != salesOrderID || it.IsDeleted || seen[it.ProductID] {
				continue
			}
			seen[it.ProductID] = true
			lines = append(lines, reservation.StatusLine{
				ProductID: it.ProductID,
				Position:  d.position(salesOrderID, it.ProductID),
			})
		}
	})
	slices.SortFunc(lines, func(a, b reservation.StatusLine) int { return cmpID(a.ProductID, b.ProductID) })
	return lines, nil
}

func (r *ReservationRepo) SoftDeleteOrderItems(_ context.Context, _ sqlx.ExtContext, salesOrderID, productID int64) (int64, error) {
	var n int64
	r.s.write(func(d *state) {
		for id, it := range d.orderItems {
			if it.SalesOrderID == salesOrderID && it.ProductID == productID && !it.IsDeleted {
				it.IsDeleted = true
				d.orderItems[id] = it
				n++
			}
		}
	})
	return n, nil
}

func (r *ReservationRepo) GetByID(_ context.Context, _ sqlx.ExtContext, id int64) (*model.Reservation, error) {
	return r.get(id), nil
}

func (r *ReservationRepo) LockByID(_ context.Context, _ sqlx.ExtContext, id int64) (*model.Reservation, error) {
	return r.get(id), nil
}

func (r *ReservationRepo) get(id int64) *model.Reservation {
	var out *model.Reservation
	r.s.read(func(d *state) {
		if res, ok := d.reservations[id]; ok {
			out = &res
		}
	})
	return out
}

func (r *ReservationRepo) FindActive(ctx context.Context, q sqlx.ExtContext, salesOrderID, productID int64) (*model.Reservation, error) {
	open, _ := r.LockOpen(ctx, q, salesOrderID, productID)
	if len(open) == 0 {
		return nil, nil
	}
	return &open[0], nil
}

func (r *ReservationRepo) LockOpen(_ context.Context, _ sqlx.ExtContext, salesOrderID, productID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	r.s.read(func(d *state) { out = d.open(salesOrderID, productID) })
	return out, nil
}

func (r *ReservationRepo) Insert(_ context.Context, _ sqlx.ExtContext, res *model.Reservation) error {
	r.s.write(func(d *state) {
		res.ID = d.id()
		res.CreatedAt, res.UpdatedAt = r.s.now(), r.s.now()
		d.reservations[res.ID] = *res
	})
	return nil
}

func (r *ReservationRepo) UpdateQuantity(_ context.Context, _ sqlx.ExtContext, id, quantity int64) error {
	r.update(id, func(res *model.Reservation) { res.QuantityReserved = quantity })
	return nil
}

func (r *ReservationRepo) MarkCancelled(_ context.Context, _ sqlx.ExtContext, id int64) error {
	r.update(id, func(res *model.Reservation) {
		res.Status = model.ReservationCancelled
		res.IsDeleted = true
	})
	return nil
}

func (r *ReservationRepo) MarkShipped(_ context.Context, _ sqlx.ExtContext, id, deliveryNoteID int64) error {
	r.update(id, func(res *model.Reservation) {
		res.Status = model.ReservationShipped
		res.UsedInDNID = &deliveryNoteID
	})
	return nil
}

func (r *ReservationRepo) update(id int64, fn func(res *model.Reservation)) {
	r.s.write(func(d *state) {
		res, ok := d.reservations[id]
		if !ok {
			return
		}
		fn(&res)
		res.UpdatedAt = r.s.now()
		d.reservations[id] = res
	})
}

func (d *state) position(salesOrderID, productID int64) reservation.Position {
	var pos reservation.Position
	for _, it := range d.orderItems {
		if it.SalesOrderID == salesOrderID && it.ProductID == productID && !it.IsDeleted {
			pos.Ordered += it.Quantity
		}
	}
	for _, it := range d.dnItems {
		if it.ProductID == productID && d.deliveryNotes[it.DeliveryNoteID].SalesOrderID == salesOrderID {
			pos.Delivered += it.QuantityDelivered
		}
	}
	for _, res := range d.open(salesOrderID, productID) {
		pos.Reserved += res.QuantityReserved
	}
	return pos
}

func (d *state) open(salesOrderID, productID int64) []model.Reservation {
	var out []model.Reservation
	for _, res := range d.reservations {
		if res.SalesOrderID == salesOrderID && res.ProductID == productID && res.Active() {
			out = append(out, res)
		}
	}
	slices.SortFunc(out, func(a, b model.Reservation) int { return cmpID(a.ID, b.ID) })
	return out
}
