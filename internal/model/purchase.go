package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PODraft     PurchaseOrderStatus = "draft"
	POApproved  PurchaseOrderStatus = "approved"
	POPartial   PurchaseOrderStatus = "partial"
	POCompleted PurchaseOrderStatus = "completed"
)

type PurchaseOrder struct {
	BaseModel
	PONo         *string             `db:"po_no" json:"po_no"`
	SupplierID   int64               `db:"supplier_id" json:"supplier_id"`
	OrderDate    time.Time           `db:"order_date" json:"order_date"`
	ExpectedDate *time.Time          `db:"expected_date" json:"expected_date,omitempty"`
	Status       PurchaseOrderStatus `db:"status" json:"status"`
	Note         *string             `db:"note" json:"note,omitempty"`
	Items        []PurchaseOrderItem `db:"-" json:"items,omitempty"`
}

type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID  int64           `db:"purchase_order_id" json:"purchase_order_id"`
	ProductID        int64           `db:"product_id" json:"product_id"`
	QuantityOrdered  int64           `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityReceived int64           `db:"quantity_received" json:"quantity_received"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unit_price"`
}

func (i *PurchaseOrderItem) Outstanding() int64 {
	return i.QuantityOrdered - i.QuantityReceived
}

type GoodsReceipt struct {
	BaseModel
	GRNo            string    `db:"gr_no" json:"gr_no"`
	PurchaseOrderID int64     `db:"purchase_order_id" json:"purchase_order_id"`
	ReceivedDate    time.Time `db:"received_date" json:"received_date"`
	Status          string    `db:"status" json:"status"`
	Note            *string   `db:"note" json:"note,omitempty"`
}

type GoodsReceiptItem struct {
	ID                  int64 `db:"id" json:"id"`
	GoodsReceiptID      int64 `db:"goods_receipt_id" json:"goods_receipt_id"`
	PurchaseOrderItemID int64 `db:"purchase_order_item_id" json:"purchase_order_item_id"`
	QuantityReceived    int64 `db:"quantity_received" json:"quantity_received"`
}
