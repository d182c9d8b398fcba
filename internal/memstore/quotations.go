package memstore

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct{ s *Store }

func (s *Store) Quotations() *QuotationRepo { return &QuotationRepo{s: s} }

func (r *QuotationRepo) GetByID(_ context.Context, id int64) (*model.Quotation, error) {
	var out *model.Quotation
	r.s.read(func(d *state) {
		qt, ok := d.quotations[id]
		if !ok {
			return
		}
		qt.Items = []model.QuotationItem{}
		for _, it := range d.quotationItems {
			if it.QuotationID == id {
				qt.Items = append(qt.Items, it)
			}
		}
		out = &qt
	})
	return out, nil
}

func (r *QuotationRepo) LockByID(_ context.Context, _ sqlx.ExtContext, id int64) (*model.Quotation, error) {
	var out *model.Quotation
	r.s.read(func(d *state) {
		if qt, ok := d.quotations[id]; ok {
			out = &qt
		}
	})
	return out, nil
}

func (r *QuotationRepo) Create(_ context.Context, _ sqlx.ExtContext, qt *model.Quotation) error {
	r.s.write(func(d *state) {
		qt.ID = d.id()
		qt.CreatedAt, qt.UpdatedAt = r.s.now(), r.s.now()
		stored := *qt
		stored.Items = nil
		d.quotations[qt.ID] = stored
	})
	return nil
}

func (r *QuotationRepo) InsertItem(_ context.Context, _ sqlx.ExtContext, item *model.QuotationItem) error {
	r.s.write(func(d *state) {
		item.ID = d.id()
		d.quotationItems = append(d.quotationItems, *item)
	})
	return nil
}

func (r *QuotationRepo) Approve(_ context.Context, _ sqlx.ExtContext, id int64, quotationNo string) error {
	r.s.write(func(d *state) {
		if qt, ok := d.quotations[id]; ok {
			qt.QuotationNo = &quotationNo
			qt.Status = model.QuotationApproved
			d.quotations[id] = qt
		}
	})
	return nil
}

func (r *QuotationRepo) UpdateStatus(_ context.Context, _ sqlx.ExtContext, id int64, status model.QuotationStatus) error {
	r.s.write(func(d *state) {
		if qt, ok := d.quotations[id]; ok {
			qt.Status = status
			d.quotations[id] = qt
		}
	})
	return nil
}
