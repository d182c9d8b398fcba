package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/fekuna/omnipos-stockflow-service/internal/bom"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// BOMRepo implements bom.Repository.
type BOMRepo struct{ s *Store }

func (s *Store) BOMs() *BOMRepo { return &BOMRepo{s: s} }

func (r *BOMRepo) GetByID(_ context.Context, id int64) (*model.BOM, error) {
	return r.get(id), nil
}

func (r *BOMRepo) LockByID(_ context.Context, _ sqlx.ExtContext, id int64) (*model.BOM, error) {
	return r.get(id), nil
}

func (r *BOMRepo) get(id int64) *model.BOM {
	var out *model.BOM
	r.s.read(func(d *state) {
		b, ok := d.boms[id]
		if !ok || b.IsDeleted {
			return
		}
		b.Components = []model.BOMComponent{}
		for _, c := range d.components {
			if c.BOMID == id {
				b.Components = append(b.Components, c)
			}
		}
		out = &b
	})
	return out
}

func (r *BOMRepo) ComponentStock(_ context.Context, bomID int64) ([]bom.ComponentStock, error) {
	out := []bom.ComponentStock{}
	r.s.read(func(d *state) {
		for _, c := range d.components {
			if c.BOMID != bomID {
				continue
			}
			p := d.products[c.ProductID]
			out = append(out, bom.ComponentStock{
				ProductID:        c.ProductID,
				ProductCode:      p.Code,
				ProductName:      p.Name,
				QuantityRequired: c.QuantityRequired,
				Stock:            p.Stock,
				Reserved:         p.Reserved,
				IsDeleted:        p.IsDeleted,
			})
		}
	})
	return out, nil
}

func (r *BOMRepo) LockCodes(context.Context, sqlx.ExtContext) error {
	return nil
}

func (r *BOMRepo) LastCode(_ context.Context, _ sqlx.ExtContext) (string, error) {
	var codes []string
	r.s.read(func(d *state) {
		for _, b := range d.boms {
			if strings.HasPrefix(b.Code, bom.CodePrefix) {
				codes = append(codes, b.Code)
			}
		}
	})
	return maxNumbered(codes), nil
}

func (r *BOMRepo) Create(_ context.Context, _ sqlx.ExtContext, b *model.BOM) error {
	var err error
	r.s.write(func(d *state) {
		for _, existing := range d.boms {
			if existing.Code == b.Code {
				err = ErrDuplicateKey
				return
			}
		}
		b.ID = d.id()
		b.CreatedAt, b.UpdatedAt = r.s.now(), r.s.now()
		stored := *b
		stored.Components = nil
		d.boms[b.ID] = stored
	})
	return err
}

func (r *BOMRepo) Rename(_ context.Context, _ sqlx.ExtContext, id int64, name string) error {
	r.s.write(func(d *state) {
		if b, ok := d.boms[id]; ok {
			b.Name = name
			d.boms[id] = b
		}
	})
	return nil
}

func (r *BOMRepo) ReplaceComponents(_ context.Context, _ sqlx.ExtContext, bomID int64, comps []model.BOMComponent) error {
	r.s.write(func(d *state) {
		d.components = slices.DeleteFunc(d.components, func(c model.BOMComponent) bool { return c.BOMID == bomID })
		for _, c := range comps {
			c.ID = d.id()
			c.BOMID = bomID
			d.components = append(d.components, c)
		}
	})
	return nil
}

func (r *BOMRepo) SoftDelete(_ context.Context, _ sqlx.ExtContext, id int64) error {
	r.s.write(func(d *state) {
		if b, ok := d.boms[id]; ok {
			b.IsDeleted = true
			d.boms[id] = b
		}
	})
	return nil
}

// maxNumbered picks the highest code, longer codes first.
func maxNumbered(codes []string) string {
	var best string
	for _, c := range codes {
		if len(c) > len(best) || (len(c) == len(best) && c > best) {
			best = c
		}
	}
	return best
}
