package docnumber

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// Allocator issues numbers inside a caller-owned transaction.
type Allocator struct {
	repo     Repository
	calendar Calendar
	now      func() time.Time
}

func NewAllocator(repo Repository, calendar Calendar) *Allocator {
	if calendar == nil {
		calendar = BuddhistCalendar{}
	}
	return &Allocator{repo: repo, calendar: calendar, now: time.Now}
}

// WithClock replaces the time source.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

func (a *Allocator) FiscalYear() FiscalYear {
	return a.calendar.FiscalYear(a.now())
}

func (a *Allocator) Allocate(ctx context.Context, q sqlx.ExtContext, kind Kind) (*Number, error) {
	switch kind {
	case KindPaired:
		return a.AllocatePair(ctx, q)
	case KindQuotation, KindPurchaseOrder, KindGoodsReceipt:
		return a.allocateCounter(ctx, q, kind)
	}
	return nil, apperr.Validation("allocate", "unknown document kind %q", kind)
}

// AllocatePair claims the next delivery-note/invoice sequence. The inserted
// row is the claim; both numbers share its sequence.
func (a *Allocator) AllocatePair(ctx context.Context, q sqlx.ExtContext) (*Number, error) {
	fy := a.FiscalYear()
	if err := a.repo.LockScope(ctx, q, fmt.Sprintf("doc_pairs:%d", fy.Year)); err != nil {
		return nil, err
	}
	last, err := a.repo.LastPairSequence(ctx, q, fy.Year)
	if err != nil {
		return nil, err
	}
	pair := &model.DocPair{
		FiscalYear: fy.Year,
		YearYY:     fy.Short,
		Sequence:   last + 1,
		Status:     model.DocPairIssued,
	}
	if err := a.repo.InsertPair(ctx, q, pair); err != nil {
		return nil, err
	}
	dn := Format(PrefixDeliveryNote, fy, pair.Sequence)
	return &Number{
		Kind:           KindPaired,
		FiscalYear:     fy,
		Sequence:       pair.Sequence,
		Value:          dn,
		PairID:         pair.ID,
		DeliveryNoteNo: dn,
		InvoiceNo:      Format(PrefixInvoice, fy, pair.Sequence),
	}, nil
}

func (a *Allocator) allocateCounter(ctx context.Context, q sqlx.ExtContext, kind Kind) (*Number, error) {
	prefix, _ := kind.counterPrefix()
	fy := a.FiscalYear()
	seq, err := a.repo.IncrementCounter(ctx, q, fy.Year, kind, prefix)
	if err != nil {
		return nil, err
	}
	return &Number{Kind: kind, FiscalYear: fy, Sequence: seq, Value: Format(prefix, fy, seq)}, nil
}
