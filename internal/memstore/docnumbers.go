package memstore

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// DocNumberRepo implements docnumber.Repository.
type DocNumberRepo struct{ s *Store }

func (s *Store) DocNumbers() *DocNumberRepo { return &DocNumberRepo{s: s} }

func (r *DocNumberRepo) LockScope(context.Context, sqlx.ExtContext, string) error {
	return nil
}

func (r *DocNumberRepo) LastPairSequence(_ context.Context, _ sqlx.ExtContext, fiscalYear int) (int64, error) {
	var last int64
	r.s.read(func(d *state) {
		for _, p := range d.pairs {
			if p.FiscalYear == fiscalYear && p.Sequence > last {
				last = p.Sequence
			}
		}
	})
	return last, nil
}

func (r *DocNumberRepo) InsertPair(_ context.Context, _ sqlx.ExtContext, pair *model.DocPair) error {
	var err error
	r.s.write(func(d *state) {
		for _, p := range d.pairs {
			if p.FiscalYear == pair.FiscalYear && p.Sequence == pair.Sequence {
				err = ErrDuplicateKey
				return
			}
		}
		pair.ID = d.id()
		pair.CreatedAt = r.s.now()
		d.pairs[pair.ID] = *pair
	})
	return err
}

func (r *DocNumberRepo) LockPair(_ context.Context, _ sqlx.ExtContext, id int64) (*model.DocPair, error) {
	var out *model.DocPair
	r.s.read(func(d *state) {
		if p, ok := d.pairs[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *DocNumberRepo) UpdatePairStatus(_ context.Context, _ sqlx.ExtContext, id int64, status model.DocPairStatus) error {
	r.s.write(func(d *state) {
		if p, ok := d.pairs[id]; ok {
			p.Status = status
			d.pairs[id] = p
		}
	})
	return nil
}

func (r *DocNumberRepo) IncrementCounter(_ context.Context, _ sqlx.ExtContext, fiscalYear int, kind docnumber.Kind, _ string) (int64, error) {
	var seq int64
	r.s.write(func(d *state) {
		key := fmt.Sprintf("%d/%s", fiscalYear, kind)
		d.counters[key]++
		seq = d.counters[key]
	})
	return seq, nil
}
