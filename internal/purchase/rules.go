package purchase

import (
	"slices"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/purchase/dto"
)

// Receivable reports whether goods may be received against a PO in status.
func Receivable(status model.PurchaseOrderStatus) bool {
	return status == model.POApproved || status == model.POPartial
}

// ReceiptStatus is completed once every line is fully received, otherwise
// partial.
func ReceiptStatus(items []model.PurchaseOrderItem) model.PurchaseOrderStatus {
	if len(items) == 0 {
		return model.POPartial
	}
	for _, it := range items {
		if it.QuantityReceived < it.QuantityOrdered {
			return model.POPartial
		}
	}
	return model.POCompleted
}

// ReceiptLine is the merged quantity received for one PO item.
type ReceiptLine struct {
	Item     model.PurchaseOrderItem
	Quantity int64
}

// PlanReceipt merges lines per PO item and checks each against what is
// still outstanding. The result is ordered by item id.
func PlanReceipt(op string, items []model.PurchaseOrderItem, lines []dto.ReceiveLine) ([]ReceiptLine, error) {
	byID := make(map[int64]model.PurchaseOrderItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	totals := make(map[int64]int64, len(lines))
	for _, l := range lines {
		if _, ok := byID[l.PurchaseOrderItemID]; !ok {
			return nil, apperr.NotFound(op, "purchase_order_item", l.PurchaseOrderItemID)
		}
		totals[l.PurchaseOrderItemID] += l.QuantityReceived
	}

	out := make([]ReceiptLine, 0, len(totals))
	for id, qty := range totals {
		it := byID[id]
		if outstanding := it.Outstanding(); qty > outstanding {
			return nil, apperr.Insufficient(op, "purchase_order_item", id, "outstanding", qty, outstanding)
		}
		out = append(out, ReceiptLine{Item: it, Quantity: qty})
	}
	slices.SortFunc(out, func(a, b ReceiptLine) int {
		switch {
		case a.Item.ID < b.Item.ID:
			return -1
		case a.Item.ID > b.Item.ID:
			return 1
		}
		return 0
	})
	return out, nil
}
