package dto

import "github.com/shopspring/decimal"

type SendInput struct {
	SalesOrderID int64   `json:"sales_order_id"`
	ItemIDs      []int64 `json:"item_ids"`
}

type ShippedLine struct {
	SalesOrderItemID int64           `json:"sales_order_item_id"`
	ProductID        int64           `json:"product_id"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineAmount       decimal.Decimal `json:"line_amount"`
}

type SendResult struct {
	PairID           int64           `json:"pair_id"`
	DeliveryNoteID   int64           `json:"delivery_note_id"`
	DeliveryNoteNo   string          `json:"delivery_note_no"`
	InvoiceID        int64           `json:"invoice_id"`
	InvoiceNo        string          `json:"invoice_no"`
	SalesOrderID     int64           `json:"sales_order_id"`
	SalesOrderStatus string          `json:"sales_order_status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Lines            []ShippedLine   `json:"lines"`
}
