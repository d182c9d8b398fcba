package memstore

import (
	"context"
	"slices"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct{ s *Store }

func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{s: s} }

func (r *PurchaseRepo) GetByID(_ context.Context, id int64) (*model.PurchaseOrder, error) {
	var out *model.PurchaseOrder
	r.s.read(func(d *state) {
		po, ok := d.purchaseOrders[id]
		if !ok {
			return
		}
		po.Items = d.itemsOf(id)
		out = &po
	})
	return out, nil
}

func (r *PurchaseRepo) LockByID(_ context.Context, _ sqlx.ExtContext, id int64) (*model.PurchaseOrder, error) {
	var out *model.PurchaseOrder
	r.s.read(func(d *state) {
		if po, ok := d.purchaseOrders[id]; ok {
			out = &po
		}
	})
	return out, nil
}

func (r *PurchaseRepo) LockItems(_ context.Context, _ sqlx.ExtContext, poID int64) ([]model.PurchaseOrderItem, error) {
	var out []model.PurchaseOrderItem
	r.s.read(func(d *state) { out = d.itemsOf(poID) })
	return out, nil
}

func (r *PurchaseRepo) Create(_ context.Context, _ sqlx.ExtContext, po *model.PurchaseOrder) error {
	r.s.write(func(d *state) {
		po.ID = d.id()
		po.CreatedAt, po.UpdatedAt = r.s.now(), r.s.now()
		stored := *po
		stored.Items = nil
		d.purchaseOrders[po.ID] = stored
	})
	return nil
}

func (r *PurchaseRepo) InsertItem(_ context.Context, _ sqlx.ExtContext, item *model.PurchaseOrderItem) error {
	r.s.write(func(d *state) {
		item.ID = d.id()
		item.CreatedAt, item.UpdatedAt = r.s.now(), r.s.now()
		d.poItems[item.ID] = *item
	})
	return nil
}

func (r *PurchaseRepo) DeleteItem(_ context.Context, _ sqlx.ExtContext, poID, itemID int64) (int64, error) {
	var n int64
	r.s.write(func(d *state) {
		if it, ok := d.poItems[itemID]; ok && it.PurchaseOrderID == poID {
			delete(d.poItems, itemID)
			n = 1
		}
	})
	return n, nil
}

func (r *PurchaseRepo) Approve(_ context.Context, _ sqlx.ExtContext, id int64, poNo string) error {
	r.s.write(func(d *state) {
		if po, ok := d.purchaseOrders[id]; ok {
			po.PONo = &poNo
			po.Status = model.POApproved
			d.purchaseOrders[id] = po
		}
	})
	return nil
}

func (r *PurchaseRepo) UpdateStatus(_ context.Context, _ sqlx.ExtContext, id int64, status model.PurchaseOrderStatus) error {
	r.s.write(func(d *state) {
		if po, ok := d.purchaseOrders[id]; ok {
			po.Status = status
			d.purchaseOrders[id] = po
		}
	})
	return nil
}

func (r *PurchaseRepo) CountReceipts(_ context.Context, _ sqlx.ExtContext, poID int64) (int64, error) {
	var n int64
	r.s.read(func(d *state) {
		for _, gr := range d.receipts {
			if gr.PurchaseOrderID == poID {
				n++
			}
		}
	})
	return n, nil
}

func (r *PurchaseRepo) Delete(_ context.Context, _ sqlx.ExtContext, id int64) error {
	r.s.write(func(d *state) {
		for itemID, it := range d.poItems {
			if it.PurchaseOrderID == id {
				delete(d.poItems, itemID)
			}
		}
		delete(d.purchaseOrders, id)
	})
	return nil
}

func (r *PurchaseRepo) InsertReceipt(_ context.Context, _ sqlx.ExtContext, gr *model.GoodsReceipt) error {
	var err error
	r.s.write(func(d *state) {
		for _, existing := range d.receipts {
			if existing.GRNo == gr.GRNo {
				err = ErrDuplicateKey
				return
			}
		}
		gr.ID = d.id()
		gr.CreatedAt, gr.UpdatedAt = r.s.now(), r.s.now()
		d.receipts[gr.ID] = *gr
	})
	return err
}

func (r *PurchaseRepo) InsertReceiptItem(_ context.Context, _ sqlx.ExtContext, item *model.GoodsReceiptItem) error {
	r.s.write(func(d *state) {
		item.ID = d.id()
		d.receiptItems = append(d.receiptItems, *item)
	})
	return nil
}

func (r *PurchaseRepo) AddReceived(_ context.Context, _ sqlx.ExtContext, itemID, qty int64) error {
	r.s.write(func(d *state) {
		if it, ok := d.poItems[itemID]; ok {
			it.QuantityReceived += qty
			d.poItems[itemID] = it
		}
	})
	return nil
}

func (d *state) itemsOf(poID int64) []model.PurchaseOrderItem {
	out := []model.PurchaseOrderItem{}
	for _, it := range d.poItems {
		if it.PurchaseOrderID == poID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b model.PurchaseOrderItem) int { return cmpID(a.ID, b.ID) })
	return out
}
