package docnumber_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber/usecase"
	"github.com/fekuna/omnipos-stockflow-service/internal/memstore"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, 6, 15, 10, 0, 0, 0, time.UTC) }
}

func newAllocator(s *memstore.Store, year int) *docnumber.Allocator {
	return docnumber.NewAllocator(s.DocNumbers(), docnumber.BuddhistCalendar{}).WithClock(fixedClock(year))
}

func TestAllocatePairSequential(t *testing.T) {
	s := memstore.New()
	uc := usecase.NewDocNumberUseCase(s, newAllocator(s, 2026), logger.NewNop())
	ctx := context.Background()

	first, err := uc.Allocate(ctx, docnumber.KindPaired)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, "MDN69-001", first.DeliveryNoteNo)
	assert.Equal(t, "MINV69-001", first.InvoiceNo)
	assert.Equal(t, model.DocPairIssued, s.Pair(first.PairID).Status)

	second, err := uc.Allocate(ctx, docnumber.KindPaired)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Sequence)
	assert.Equal(t, "MDN69-002", second.DeliveryNoteNo)
	assert.Equal(t, "MINV69-002", second.InvoiceNo)
}

func TestAllocatePairRestartsEachYear(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	_, err := usecase.NewDocNumberUseCase(s, newAllocator(s, 2026), logger.NewNop()).Allocate(ctx, docnumber.KindPaired)
	require.NoError(t, err)

	next, err := usecase.NewDocNumberUseCase(s, newAllocator(s, 2027), logger.NewNop()).Allocate(ctx, docnumber.KindPaired)
	require.NoError(t, err)
	assert.Equal(t, "MDN70-001", next.DeliveryNoteNo)
}

func TestRolledBackAllocationIsNotConsumed(t *testing.T) {
	s := memstore.New()
	alloc := newAllocator(s, 2026)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := alloc.AllocatePair(ctx, tx); err != nil {
			return err
		}
		return apperr.Validation("deliver", "nothing to ship")
	})
	require.Error(t, err)
	assert.Zero(t, s.PairCount())

	num, err := usecase.NewDocNumberUseCase(s, alloc, logger.NewNop()).Allocate(ctx, docnumber.KindPaired)
	require.NoError(t, err)
	assert.Equal(t, int64(1), num.Sequence)
}

func TestCounterKindsAreIndependent(t *testing.T) {
	s := memstore.New()
	uc := usecase.NewDocNumberUseCase(s, newAllocator(s, 2026), logger.NewNop())
	ctx := context.Background()

	q1, err := uc.Allocate(ctx, docnumber.KindQuotation)
	require.NoError(t, err)
	q2, err := uc.Allocate(ctx, docnumber.KindQuotation)
	require.NoError(t, err)
	po, err := uc.Allocate(ctx, docnumber.KindPurchaseOrder)
	require.NoError(t, err)
	gr, err := uc.Allocate(ctx, docnumber.KindGoodsReceipt)
	require.NoError(t, err)

	assert.Equal(t, "MQ69-001", q1.Value)
	assert.Equal(t, "MQ69-002", q2.Value)
	assert.Equal(t, "MPO69-001", po.Value)
	assert.Equal(t, "MGR69-001", gr.Value)
}

func TestAllocateRejectsUnknownKind(t *testing.T) {
	s := memstore.New()
	uc := usecase.NewDocNumberUseCase(s, newAllocator(s, 2026), logger.NewNop())

	_, err := uc.Allocate(context.Background(), docnumber.Kind("receipt"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStandaloneGoodsReceiptNumbersAdvance(t *testing.T) {
	s := memstore.New()
	uc := usecase.NewDocNumberUseCase(s, newAllocator(s, 2026), logger.NewNop())
	ctx := context.Background()

	first, err := uc.Allocate(ctx, docnumber.KindGoodsReceipt)
	require.NoError(t, err)
	second, err := uc.Allocate(ctx, docnumber.KindGoodsReceipt)
	require.NoError(t, err)

	assert.Equal(t, "MGR69-001", first.Value)
	assert.Equal(t, "MGR69-002", second.Value)
}

func TestConcurrentAllocationsAreDistinct(t *testing.T) {
	s := memstore.New()
	uc := usecase.NewDocNumberUseCase(s, newAllocator(s, 2026), logger.NewNop())
	ctx := context.Background()

	const n = 25
	for _, kind := range []docnumber.Kind{docnumber.KindPaired, docnumber.KindQuotation, docnumber.KindPurchaseOrder, docnumber.KindGoodsReceipt} {
		t.Run(string(kind), func(t *testing.T) {
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				seqs = map[int64]bool{}
			)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					num, err := uc.Allocate(ctx, kind)
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					seqs[num.Sequence] = true
					mu.Unlock()
				}()
			}
			wg.Wait()

			require.Len(t, seqs, n)
			for i := int64(1); i <= n; i++ {
				assert.True(t, seqs[i], "missing sequence %d", i)
			}
		})
	}
}
