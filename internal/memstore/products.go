package memstore

import (
	"context"
	"slices"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*model.Product, error) {
	var out *model.Product
	r.s.read(func(d *state) {
		if p, ok := d.products[id]; ok && !p.IsDeleted {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, f *dto.LowStockFilters) ([]model.Product, int, error) {
	var items []model.Product
	r.s.read(func(d *state) {
		for _, p := range d.products {
			if !p.IsDeleted && p.Stock <= p.ReorderPoint {
				items = append(items, p)
			}
		}
	})
	slices.SortFunc(items, func(a, b model.Product) int {
		if c := cmpID(a.Stock-a.ReorderPoint, b.Stock-b.ReorderPoint); c != 0 {
			return c
		}
		return cmpID(a.ID, b.ID)
	})
	return page(items, f.Page, f.PageSize), len(items), nil
}

func (r *ProductRepo) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	r.s.read(func(d *state) {
		for i := len(d.movements) - 1; i >= 0; i-- {
			m := d.movements[i]
			if m.ProductID == f.ProductID && (f.MovementType == "" || m.MovementType == f.MovementType) {
				items = append(items, m)
			}
		}
	})
	return page(items, f.Page, f.PageSize), len(items), nil
}

func (r *ProductRepo) LockByID(_ context.Context, _ sqlx.ExtContext, id int64) (*model.Product, error) {
	var out *model.Product
	r.s.read(func(d *state) {
		if p, ok := d.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) LockByIDs(_ context.Context, _ sqlx.ExtContext, ids []int64) ([]model.Product, error) {
	out := []model.Product{}
	r.s.read(func(d *state) {
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				out = append(out, p)
			}
		}
	})
	slices.SortFunc(out, func(a, b model.Product) int { return cmpID(a.ID, b.ID) })
	return out, nil
}

func (r *ProductRepo) LockByCode(_ context.Context, _ sqlx.ExtContext, code string) (*model.Product, error) {
	var out *model.Product
	r.s.read(func(d *state) {
		for _, p := range d.products {
			if p.Code == code {
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Create(_ context.Context, _ sqlx.ExtContext, p *model.Product) error {
	var err error
	r.s.write(func(d *state) {
		for _, existing := range d.products {
			if existing.Code == p.Code {
				err = ErrDuplicateKey
				return
			}
		}
		p.ID = d.id()
		p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
		p.Available = p.Stock - p.Reserved
		d.products[p.ID] = *p
	})
	return err
}

func (r *ProductRepo) Rename(_ context.Context, _ sqlx.ExtContext, id int64, name string) error {
	r.s.write(func(d *state) {
		if p, ok := d.products[id]; ok {
			p.Name = name
			p.UpdatedAt = r.s.now()
			d.products[id] = p
		}
	})
	return nil
}

func (r *ProductRepo) Restore(_ context.Context, _ sqlx.ExtContext, id int64, name string) error {
	r.s.write(func(d *state) {
		if p, ok := d.products[id]; ok {
			p.IsDeleted = false
			p.Name = name
			p.UpdatedAt = r.s.now()
			d.products[id] = p
		}
	})
	return nil
}

func (r *ProductRepo) ApplyDelta(_ context.Context, _ sqlx.ExtContext, id int64, stockDelta, reservedDelta int64) (*model.Product, error) {
	var out *model.Product
	r.s.write(func(d *state) {
		p, ok := d.products[id]
		if !ok {
			return
		}
		p.Stock += stockDelta
		p.Reserved += reservedDelta
		p.Available = p.Stock - p.Reserved
		p.UpdatedAt = r.s.now()
		d.products[id] = p
		out = &p
	})
	return out, nil
}

func (r *ProductRepo) LogMovement(_ context.Context, _ sqlx.ExtContext, m *model.StockMovement) error {
	r.s.write(func(d *state) {
		d.movements = append(d.movements, *m)
	})
	return nil
}
