package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/tracing"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase/dto"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	refGoodsReceipt = "goods_receipt"
	receiptApproved = "approved"
)

type purchaseUseCase struct {
	repo      purchase.Repository
	ledger    *product.Ledger
	allocator *docnumber.Allocator
	tx        postgres.Transactor
	events    *events.Emitter
	logger    logger.Logger
	now       func() time.Time
}

func NewPurchaseUseCase(repo purchase.Repository, ledger *product.Ledger, allocator *docnumber.Allocator, tx postgres.Transactor, emitter *events.Emitter, log logger.Logger) purchase.UseCase {
	return &purchaseUseCase{
		repo:      repo,
		ledger:    ledger,
		allocator: allocator,
		tx:        tx,
		events:    emitter,
		logger:    log,
		now:       time.Now,
	}
}

// Create stores a draft. Drafts carry no number until approval.
func (uc *purchaseUseCase) Create(ctx context.Context, input *dto.CreateInput) (*model.PurchaseOrder, error) {
	const op = "create purchase order"
	if input.SupplierID <= 0 {
		return nil, apperr.Validation(op, "supplier_id is required")
	}
	for i := range input.Items {
		if err := validateItem(op, &input.Items[i]); err != nil {
			return nil, err
		}
	}

	orderDate := uc.now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}
	po := &model.PurchaseOrder{
		SupplierID:   input.SupplierID,
		OrderDate:    orderDate,
		ExpectedDate: input.ExpectedDate,
		Status:       model.PODraft,
		Note:         input.Note,
	}
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := uc.repo.Create(ctx, tx, po); err != nil {
			return err
		}
		if err := uc.checkProducts(ctx, tx, input.Items); err != nil {
			return err
		}
		for _, in := range input.Items {
			item, err := uc.insertItem(ctx, tx, po.ID, &in)
			if err != nil {
				return err
			}
			po.Items = append(po.Items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Purchase order drafted", zap.Int64("purchase_order_id", po.ID), zap.Int("items", len(po.Items)))
	return po, nil
}

func (uc *purchaseUseCase) Get(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	po, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperr.NotFound("get purchase order", "purchase_order", id)
	}
	return po, nil
}

func (uc *purchaseUseCase) AddItem(ctx context.Context, poID int64, input *dto.ItemInput) (*model.PurchaseOrderItem, error) {
	const op = "add purchase order item"
	if err := validateItem(op, input); err != nil {
		return nil, err
	}

	var item *model.PurchaseOrderItem
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := uc.lockDraft(ctx, tx, op, poID); err != nil {
			return err
		}
		if err := uc.checkProducts(ctx, tx, []dto.ItemInput{*input}); err != nil {
			return err
		}
		var err error
		item, err = uc.insertItem(ctx, tx, poID, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Purchase order item added", zap.Int64("purchase_order_id", poID), zap.Int64("item_id", item.ID))
	return item, nil
}

func (uc *purchaseUseCase) RemoveItem(ctx context.Context, poID, itemID int64) error {
	const op = "remove purchase order item"
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := uc.lockDraft(ctx, tx, op, poID); err != nil {
			return err
		}
		n, err := uc.repo.DeleteItem(ctx, tx, poID, itemID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(op, "purchase_order_item", itemID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.logger.Info("Purchase order item removed", zap.Int64("purchase_order_id", poID), zap.Int64("item_id", itemID))
	return nil
}

// Approve numbers a draft from the MPO counter.
func (uc *purchaseUseCase) Approve(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	const op = "approve purchase order"
	ctx, span := tracing.Start(ctx, "purchase.Approve")
	defer span.End()

	var po *model.PurchaseOrder
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		var err error
		po, err = uc.lockDraft(ctx, tx, op, id)
		if err != nil {
			return err
		}
		items, err := uc.repo.LockItems(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperr.Conflict(op, "purchase_order", id, "a purchase order without items cannot be approved")
		}
		num, err := uc.allocator.Allocate(ctx, tx, docnumber.KindPurchaseOrder)
		if err != nil {
			return err
		}
		if err := uc.repo.Approve(ctx, tx, id, num.Value); err != nil {
			return err
		}
		po.PONo = &num.Value
		po.Status = model.POApproved
		po.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Purchase order approved", zap.Int64("purchase_order_id", id), zap.String("po_no", *po.PONo))
	return po, nil
}

func (uc *purchaseUseCase) Delete(ctx context.Context, id int64) error {
	const op = "delete purchase order"
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := uc.lock(ctx, tx, op, id); err != nil {
			return err
		}
		n, err := uc.repo.CountReceipts(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(op, "purchase_order", id, "purchase order has %d goods receipt(s)", n)
		}
		return uc.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("Purchase order deleted", zap.Int64("purchase_order_id", id))
	return nil
}

// Receive records a goods receipt and adds the received quantities to stock.
func (uc *purchaseUseCase) Receive(ctx context.Context, input *dto.ReceiveInput) (*dto.ReceiveResult, error) {
	const op = "receive goods"
	ctx, span := tracing.Start(ctx, "purchase.Receive")
	defer span.End()

	if len(input.Items) == 0 {
		return nil, apperr.Validation(op, "at least one receipt line is required")
	}
	for _, l := range input.Items {
		if l.PurchaseOrderItemID <= 0 || l.QuantityReceived <= 0 {
			return nil, apperr.Validation(op, "receipt lines need an item id and a positive quantity")
		}
	}

	var out dto.ReceiveResult
	err := uc.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		po, err := uc.lock(ctx, tx, op, input.PurchaseOrderID)
		if err != nil {
			return err
		}
		if !purchase.Receivable(po.Status) {
			return apperr.Conflict(op, "purchase_order", po.ID, "goods can only be received on an approved purchase order, status is %s", po.Status)
		}
		items, err := uc.repo.LockItems(ctx, tx, po.ID)
		if err != nil {
			return err
		}
		plan, err := purchase.PlanReceipt(op, items, input.Items)
		if err != nil {
			return err
		}

		num, err := uc.allocator.Allocate(ctx, tx, docnumber.KindGoodsReceipt)
		if err != nil {
			return err
		}
		received := uc.now()
		if input.ReceivedDate != nil {
			received = *input.ReceivedDate
		}
		gr := &model.GoodsReceipt{
			GRNo:            num.Value,
			PurchaseOrderID: po.ID,
			ReceivedDate:    received,
			Status:          receiptApproved,
			Note:            input.Note,
		}
		if err := uc.repo.InsertReceipt(ctx, tx, gr); err != nil {
			return err
		}

		got := make(map[int64]int64, len(plan))
		for _, line := range plan {
			if err := uc.repo.InsertReceiptItem(ctx, tx, &model.GoodsReceiptItem{
				GoodsReceiptID:      gr.ID,
				PurchaseOrderItemID: line.Item.ID,
				QuantityReceived:    line.Quantity,
			}); err != nil {
				return err
			}
			if err := uc.repo.AddReceived(ctx, tx, line.Item.ID, line.Quantity); err != nil {
				return err
			}
			if _, err := uc.ledger.Apply(ctx, tx, product.Change{
				ProductID:  line.Item.ProductID,
				StockDelta: line.Quantity,
				Movement:   model.MovementReceive,
				RefType:    refGoodsReceipt,
				RefID:      gr.ID,
				Notes:      gr.GRNo,
			}); err != nil {
				return err
			}
			got[line.Item.ID] = line.Quantity
		}

		for i := range items {
			items[i].QuantityReceived += got[items[i].ID]
		}
		status := purchase.ReceiptStatus(items)
		if err := uc.repo.UpdateStatus(ctx, tx, po.ID, status); err != nil {
			return err
		}
		out = dto.ReceiveResult{
			GoodsReceiptID:      gr.ID,
			GRNo:                gr.GRNo,
			PurchaseOrderID:     po.ID,
			PurchaseOrderStatus: string(status),
			Lines:               len(plan),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Goods received",
		zap.Int64("purchase_order_id", out.PurchaseOrderID),
		zap.String("gr_no", out.GRNo),
		zap.String("status", out.PurchaseOrderStatus),
	)
	uc.ledger.StockChanged(ctx)
	uc.events.Emit(ctx, events.GoodsReceived, out.PurchaseOrderID, out)
	return &out, nil
}

func (uc *purchaseUseCase) lock(ctx context.Context, tx sqlx.ExtContext, op string, id int64) (*model.PurchaseOrder, error) {
	po, err := uc.repo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperr.NotFound(op, "purchase_order", id)
	}
	return po, nil
}

func (uc *purchaseUseCase) lockDraft(ctx context.Context, tx sqlx.ExtContext, op string, id int64) (*model.PurchaseOrder, error) {
	po, err := uc.lock(ctx, tx, op, id)
	if err != nil {
		return nil, err
	}
	if po.Status != model.PODraft {
		return nil, apperr.Conflict(op, "purchase_order", id, "purchase order is %s, not draft", po.Status)
	}
	return po, nil
}

func (uc *purchaseUseCase) checkProducts(ctx context.Context, tx sqlx.ExtContext, items []dto.ItemInput) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	_, err := uc.ledger.LockMany(ctx, tx, ids)
	return err
}

func (uc *purchaseUseCase) insertItem(ctx context.Context, tx sqlx.ExtContext, poID int64, in *dto.ItemInput) (*model.PurchaseOrderItem, error) {
	item := &model.PurchaseOrderItem{
		PurchaseOrderID: poID,
		ProductID:       in.ProductID,
		QuantityOrdered: in.QuantityOrdered,
		UnitPrice:       in.UnitPrice,
	}
	if err := uc.repo.InsertItem(ctx, tx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func validateItem(op string, in *dto.ItemInput) error {
	if in.ProductID <= 0 {
		return apperr.Validation(op, "product_id is required")
	}
	if in.QuantityOrdered <= 0 {
		return apperr.Validation(op, "quantity_ordered must be greater than zero")
	}
	if in.UnitPrice.IsNegative() {
		return apperr.Validation(op, "unit_price must not be negative")
	}
	return nil
}
