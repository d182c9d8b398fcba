package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ProductID       int64           `json:"product_id"`
	QuantityOrdered int64           `json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

type CreateInput struct {
	SupplierID   int64       `json:"supplier_id"`
	OrderDate    *time.Time  `json:"order_date,omitempty"`
	ExpectedDate *time.Time  `json:"expected_date,omitempty"`
	Note         *string     `json:"note,omitempty"`
	Items        []ItemInput `json:"items"`
}

type ReceiveLine struct {
	PurchaseOrderItemID int64 `json:"purchase_order_item_id"`
	QuantityReceived    int64 `json:"quantity_received"`
}

type ReceiveInput struct {
	PurchaseOrderID int64         `json:"-"`
	ReceivedDate    *time.Time    `json:"received_date,omitempty"`
	Note            *string       `json:"note,omitempty"`
	Items           []ReceiveLine `json:"items"`
}

type ReceiveResult struct {
	GoodsReceiptID      int64  `json:"goods_receipt_id"`
	GRNo                string `json:"gr_no"`
	PurchaseOrderID     int64  `json:"purchase_order_id"`
	PurchaseOrderStatus string `json:"purchase_order_status"`
	Lines               int    `json:"lines"`
}
