package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DeliveryNoteShipping = "shipping"
	InvoiceApproved      = "approved"
	InvoiceCancelled     = "cancelled"
)

type DeliveryNote struct {
	BaseModel
	PairID       int64     `db:"pair_id" json:"pair_id"`
	Code         string    `db:"delivery_note_code" json:"delivery_note_code"`
	SalesOrderID int64     `db:"sales_order_id" json:"sales_order_id"`
	DeliveryDate time.Time `db:"delivery_date" json:"delivery_date"`
	Status       string    `db:"status" json:"status"`
	CreatedBy    *string   `db:"created_by" json:"created_by,omitempty"`
}

type DeliveryNoteItem struct {
	ID                int64           `db:"id" json:"id"`
	DeliveryNoteID    int64           `db:"delivery_note_id" json:"delivery_note_id"`
	SalesOrderItemID  int64           `db:"sales_order_item_id" json:"sales_order_item_id"`
	ProductID         int64           `db:"product_id" json:"product_id"`
	QuantityDelivered int64           `db:"quantity_delivered" json:"quantity_delivered"`
	UnitPrice         decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineAmount        decimal.Decimal `db:"line_amount" json:"line_amount"`
}

type Invoice struct {
	BaseModel
	PairID       int64           `db:"pair_id" json:"pair_id"`
	InvoiceNo    string          `db:"invoice_no" json:"invoice_no"`
	SalesOrderID int64           `db:"sales_order_id" json:"sales_order_id"`
	Status       string          `db:"status" json:"status"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
}

type InvoiceItem struct {
	ID               int64           `db:"id" json:"id"`
	InvoiceID        int64           `db:"invoice_id" json:"invoice_id"`
	SalesOrderItemID int64           `db:"sales_order_item_id" json:"sales_order_item_id"`
	ProductID        int64           `db:"product_id" json:"product_id"`
	Quantity         int64           `db:"quantity" json:"quantity"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineAmount       decimal.Decimal `db:"line_amount" json:"line_amount"`
}
