package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/auth"
	"github.com/fekuna/omnipos-stockflow-service/internal/delivery"
	"github.com/fekuna/omnipos-stockflow-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/tracing"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const refDeliveryNote = "delivery_note"

type deliveryUseCase struct {
	repo         delivery.Repository
	reservations reservation.Repository
	pairs        docnumber.Repository
	allocator    *docnumber.Allocator
	ledger       *product.Ledger
	tx           postgres.Transactor
	events       *events.Emitter
	logger       logger.Logger
	now          func() time.Time
}

func NewDeliveryUseCase(
	repo delivery.Repository,
	reservations reservation.Repository,
	pairs docnumber.Repository,
	allocator *docnumber.Allocator,
	ledger *product.Ledger,
	tx postgres.Transactor,
	emitter *events.Emitter,
	log logger.Logger,
) delivery.UseCase {
	return &deliveryUseCase{
		repo:         repo,
		reservations: reservations,
		pairs:        pairs,
		allocator:    allocator,
		ledger:       ledger,
		tx:           tx,
		events:       emitter,
		logger:       log,
		now:          time.Now,
	}
}

// SendDelivery ships every selected item up to its reserved quantity and
// issues a delivery note and invoice sharing one number pair. Lines with
// nothing to ship are skipped; the call fails if no line ships.
func (uc *deliveryUseCase) SendDelivery(ctx context.Context, input *dto.SendInput) (*dto.SendResult, error) {
	const op = "send delivery"
	ctx, span := tracing.Start(ctx, "delivery.SendDelivery")
	defer span.End()

	if input.SalesOrderID <= 0 {
		return nil, apperr.Validation(op, "sales_order_id is required")
	}
	itemIDs := slices.Clone(input.ItemIDs)
	slices.Sort(itemIDs)
	itemIDs = slices.Compact(itemIDs)
	if len(itemIDs) == 0 {
		return nil, apperr.Validation(op, "at least one order item must be selected")
	}
	for _, id := range itemIDs {
		if id <= 0 {
			return nil, apperr.Validation(op, "invalid order item id %d", id)
		}
	}

	var out *dto.SendResult
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		so, err := uc.reservations.LockSalesOrder(ctx, tx, input.SalesOrderID)
		if err != nil {
			return err
		}
		if so == nil {
			return apperr.NotFound(op, "sales_order", input.SalesOrderID)
		}

		progress, err := uc.repo.OrderProgress(ctx, tx, so.ID)
		if err != nil {
			return err
		}
		deliveredBefore := make(map[int64]int64, len(progress))
		for _, p := range progress {
			deliveredBefore[p.ItemID] = p.Delivered
		}

		lines, err := uc.repo.LockOrderLines(ctx, tx, so.ID, itemIDs)
		if err != nil {
			return err
		}
		if missing := missingItem(itemIDs, lines); missing != 0 {
			return apperr.NotFound(op, "sales_order_item", missing)
		}
		productIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			productIDs = append(productIDs, l.ProductID)
		}
		products, err := uc.ledger.LockMany(ctx, tx, productIDs)
		if err != nil {
			return err
		}

		num, err := uc.allocator.AllocatePair(ctx, tx)
		if err != nil {
			return err
		}
		dn := &model.DeliveryNote{
			PairID:       num.PairID,
			Code:         num.DeliveryNoteNo,
			SalesOrderID: so.ID,
			DeliveryDate: uc.now(),
			Status:       model.DeliveryNoteShipping,
			CreatedBy:    auth.UserIDPtr(ctx),
		}
		if err := uc.repo.InsertDeliveryNote(ctx, tx, dn); err != nil {
			return err
		}
		inv := &model.Invoice{
			PairID:       num.PairID,
			InvoiceNo:    num.InvoiceNo,
			SalesOrderID: so.ID,
			Status:       model.InvoiceApproved,
			Subtotal:     decimal.Zero,
		}
		if err := uc.repo.InsertInvoice(ctx, tx, inv); err != nil {
			return err
		}

		res := &dto.SendResult{
			PairID:         num.PairID,
			DeliveryNoteID: dn.ID,
			DeliveryNoteNo: dn.Code,
			InvoiceID:      inv.ID,
			InvoiceNo:      inv.InvoiceNo,
			SalesOrderID:   so.ID,
			Subtotal:       decimal.Zero,
			Lines:          []dto.ShippedLine{},
		}
		for _, l := range lines {
			shipped, err := uc.shipLine(ctx, tx, op, l, deliveredBefore[l.ID], products[l.ProductID], dn.ID, inv.ID)
			if err != nil {
				return err
			}
			if shipped == nil {
				continue
			}
			deliveredBefore[l.ID] += shipped.Quantity
			res.Lines = append(res.Lines, *shipped)
			res.Subtotal = res.Subtotal.Add(shipped.LineAmount)
		}
		if len(res.Lines) == 0 {
			return apperr.Conflict(op, "sales_order", so.ID, "no selected item has reserved quantity left to deliver")
		}
		if err := uc.repo.UpdateInvoiceSubtotal(ctx, tx, inv.ID, res.Subtotal); err != nil {
			return err
		}

		after, err := uc.repo.OrderProgress(ctx, tx, so.ID)
		if err != nil {
			return err
		}
		status := delivery.OrderStatus(after)
		if err := uc.reservations.UpdateSalesOrderStatus(ctx, tx, so.ID, status); err != nil {
			return err
		}
		res.SalesOrderStatus = string(status)
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Delivery sent",
		zap.Int64("sales_order_id", out.SalesOrderID),
		zap.String("delivery_note_no", out.DeliveryNoteNo),
		zap.String("invoice_no", out.InvoiceNo),
		zap.Int("lines", len(out.Lines)),
		zap.String("subtotal", out.Subtotal.StringFixed(2)),
	)
	uc.ledger.StockChanged(ctx)
	uc.events.Emit(ctx, events.DeliverySent, out.SalesOrderID, out)
	return out, nil
}

// shipLine delivers one order item. It returns nil when the line has
// nothing reserved left to ship.
func (uc *deliveryUseCase) shipLine(
	ctx context.Context,
	tx sqlx.ExtContext,
	op string,
	line delivery.OrderLine,
	deliveredBefore int64,
	p *model.Product,
	deliveryNoteID, invoiceID int64,
) (*dto.ShippedLine, error) {
	open, err := uc.reservations.LockOpen(ctx, tx, line.SalesOrderID, line.ProductID)
	if err != nil {
		return nil, err
	}
	var reservedLeft int64
	for _, r := range open {
		reservedLeft += r.QuantityReserved
	}

	qty := delivery.DeliverNow(line.Quantity, deliveredBefore, reservedLeft)
	if qty <= 0 {
		return nil, nil
	}
	if deliveredBefore+qty > line.Quantity {
		return nil, apperr.Insufficient(op, "sales_order_item", line.ID, "remaining", qty, max(line.Quantity-deliveredBefore, 0))
	}
	cur, err := uc.ledger.Lock(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if cur.Stock < qty {
		return nil, apperr.Insufficient(op, "product", cur.ID, "stock", qty, cur.Stock)
	}

	amount := line.UnitPrice.Mul(decimal.NewFromInt(qty))
	if err := uc.repo.InsertDeliveryNoteItem(ctx, tx, &model.DeliveryNoteItem{
		DeliveryNoteID:    deliveryNoteID,
		SalesOrderItemID:  line.ID,
		ProductID:         line.ProductID,
		QuantityDelivered: qty,
		UnitPrice:         line.UnitPrice,
		LineAmount:        amount,
	}); err != nil {
		return nil, err
	}
	if err := uc.repo.InsertInvoiceItem(ctx, tx, &model.InvoiceItem{
		InvoiceID:        invoiceID,
		SalesOrderItemID: line.ID,
		ProductID:        line.ProductID,
		Quantity:         qty,
		UnitPrice:        line.UnitPrice,
		LineAmount:       amount,
	}); err != nil {
		return nil, err
	}

	if _, err := uc.ledger.Apply(ctx, tx, product.Change{
		ProductID:     line.ProductID,
		StockDelta:    -qty,
		ReservedDelta: -qty,
		Movement:      model.MovementDeliver,
		RefType:       refDeliveryNote,
		RefID:         deliveryNoteID,
	}); err != nil {
		return nil, err
	}

	steps, short := delivery.ConsumeFIFO(open, qty)
	if short > 0 {
		return nil, apperr.Insufficient(op, "sales_order_item", line.ID, "reserved", qty, qty-short)
	}
	for _, s := range steps {
		if !s.Split() {
			if err := uc.reservations.MarkShipped(ctx, tx, s.ReservationID, deliveryNoteID); err != nil {
				return nil, err
			}
			continue
		}
		if err := uc.reservations.UpdateQuantity(ctx, tx, s.ReservationID, s.Remainder); err != nil {
			return nil, err
		}
		dnID := deliveryNoteID
		if err := uc.reservations.Insert(ctx, tx, &model.Reservation{
			SalesOrderID:     line.SalesOrderID,
			ProductID:        line.ProductID,
			QuantityReserved: s.Take,
			Status:           model.ReservationShipped,
			UsedInDNID:       &dnID,
		}); err != nil {
			return nil, err
		}
	}

	return &dto.ShippedLine{
		SalesOrderItemID: line.ID,
		ProductID:        line.ProductID,
		Quantity:         qty,
		UnitPrice:        line.UnitPrice,
		LineAmount:       amount,
	}, nil
}

// VoidPair voids a delivery-note/invoice pair and cancels its invoice. The
// sequence number stays consumed.
func (uc *deliveryUseCase) VoidPair(ctx context.Context, pairID int64) (*model.DocPair, error) {
	const op = "void document pair"
	ctx, span := tracing.Start(ctx, "delivery.VoidPair")
	defer span.End()

	var (
		pair      *model.DocPair
		cancelled int64
	)
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		pair, err = uc.lockPair(ctx, tx, op, pairID)
		if err != nil {
			return err
		}
		if pair.Status == model.DocPairVoid {
			return apperr.Conflict(op, "document_pair", pairID, "document pair is already void")
		}
		if err := uc.pairs.UpdatePairStatus(ctx, tx, pairID, model.DocPairVoid); err != nil {
			return err
		}
		pair.Status = model.DocPairVoid
		cancelled, err = uc.repo.CancelInvoices(ctx, tx, pairID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Document pair voided", zap.Int64("pair_id", pairID), zap.Int64("invoices_cancelled", cancelled))
	uc.events.Emit(ctx, events.DocumentPairVoided, pairID, pair)
	return pair, nil
}

func (uc *deliveryUseCase) MarkReprint(ctx context.Context, pairID int64) (*model.DocPair, error) {
	const op = "reprint document pair"

	var pair *model.DocPair
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		pair, err = uc.lockPair(ctx, tx, op, pairID)
		if err != nil {
			return err
		}
		if pair.Status == model.DocPairVoid {
			return apperr.Conflict(op, "document_pair", pairID, "a void document pair cannot be reprinted")
		}
		pair.Status = model.DocPairReprint
		return uc.pairs.UpdatePairStatus(ctx, tx, pairID, model.DocPairReprint)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Document pair marked for reprint", zap.Int64("pair_id", pairID))
	return pair, nil
}

func (uc *deliveryUseCase) lockPair(ctx context.Context, tx sqlx.ExtContext, op string, id int64) (*model.DocPair, error) {
	pair, err := uc.pairs.LockPair(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, apperr.NotFound(op, "document_pair", id)
	}
	return pair, nil
}

func missingItem(ids []int64, lines []delivery.OrderLine) int64 {
	found := make(map[int64]bool, len(lines))
	for _, l := range lines {
		found[l.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return id
		}
	}
	return 0
}
