package memstore

import (
	"context"
	"slices"

	"github.com/fekuna/omnipos-stockflow-service/internal/delivery"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// DeliveryRepo implements delivery.Repository.
type DeliveryRepo struct{ s *Store }

func (s *Store) Deliveries() *DeliveryRepo { return &DeliveryRepo{s: s} }

func (r *DeliveryRepo) OrderProgress(_ context.Context, _ sqlx.ExtContext, salesOrderID int64) ([]delivery.ItemProgress, error) {
	var out []delivery.ItemProgress
	r.s.read(func(d *state) {
		for _, it := range d.orderItems {
			if it.SalesOrderID != salesOrderID || it.IsDeleted {
				continue
			}
			p := delivery.ItemProgress{ItemID: it.ID, ProductID: it.ProductID, Ordered: it.Quantity}
			for _, dn := range d.dnItems {
				if dn.SalesOrderItemID == it.ID {
					p.Delivered += dn.QuantityDelivered
				}
			}
			out = append(out, p)
		}
	})
	slices.SortFunc(out, func(a, b delivery.ItemProgress) int { return cmpID(a.ItemID, b.ItemID) })
	return out, nil
}

func (r *DeliveryRepo) LockOrderLines(_ context.Context, _ sqlx.ExtContext, salesOrderID int64, itemIDs []int64) ([]delivery.OrderLine, error) {
	out := []delivery.OrderLine{}
	r.s.read(func(d *state) {
		so := d.salesOrders[salesOrderID]
		for _, id := range itemIDs {
			it, ok := d.orderItems[id]
			if !ok || it.SalesOrderID != salesOrderID || it.IsDeleted {
				continue
			}
			price, ok := d.customerPrice[[2]int64{it.ProductID, so.CustomerID}]
			if !ok {
				price = d.products[it.ProductID].Price
			}
			out = append(out, delivery.OrderLine{
				ID:           it.ID,
				SalesOrderID: it.SalesOrderID,
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				UnitPrice:    price,
			})
		}
	})
	slices.SortFunc(out, func(a, b delivery.OrderLine) int { return cmpID(a.ID, b.ID) })
	return out, nil
}

func (r *DeliveryRepo) InsertDeliveryNote(_ context.Context, _ sqlx.ExtContext, dn *model.DeliveryNote) error {
	var err error
	r.s.write(func(d *state) {
		for _, existing := range d.deliveryNotes {
			if existing.Code == dn.Code {
				err = ErrDuplicateKey
				return
			}
		}
		dn.ID = d.id()
		dn.CreatedAt, dn.UpdatedAt = r.s.now(), r.s.now()
		d.deliveryNotes[dn.ID] = *dn
	})
	return err
}

func (r *DeliveryRepo) InsertDeliveryNoteItem(_ context.Context, _ sqlx.ExtContext, item *model.DeliveryNoteItem) error {
	r.s.write(func(d *state) {
		item.ID = d.id()
		d.dnItems = append(d.dnItems, *item)
	})
	return nil
}

func (r *DeliveryRepo) InsertInvoice(_ context.Context, _ sqlx.ExtContext, inv *model.Invoice) error {
	var err error
	r.s.write(func(d *state) {
		for _, existing := range d.invoices {
			if existing.InvoiceNo == inv.InvoiceNo {
				err = ErrDuplicateKey
				return
			}
		}
		inv.ID = d.id()
		inv.CreatedAt, inv.UpdatedAt = r.s.now(), r.s.now()
		d.invoices[inv.ID] = *inv
	})
	return err
}

func (r *DeliveryRepo) InsertInvoiceItem(_ context.Context, _ sqlx.ExtContext, item *model.InvoiceItem) error {
	r.s.write(func(d *state) {
		item.ID = d.id()
		d.invoiceItems = append(d.invoiceItems, *item)
	})
	return nil
}

func (r *DeliveryRepo) UpdateInvoiceSubtotal(_ context.Context, _ sqlx.ExtContext, id int64, subtotal decimal.Decimal) error {
	r.s.write(func(d *state) {
		if inv, ok := d.invoices[id]; ok {
			inv.Subtotal = subtotal
			d.invoices[id] = inv
		}
	})
	return nil
}

func (r *DeliveryRepo) CancelInvoices(_ context.Context, _ sqlx.ExtContext, pairID int64) (int64, error) {
	var n int64
	r.s.write(func(d *state) {
		for id, inv := range d.invoices {
			if inv.PairID == pairID && inv.Status != model.InvoiceCancelled {
				inv.Status = model.InvoiceCancelled
				d.invoices[id] = inv
				n++
			}
		}
	})
	return n, nil
}
