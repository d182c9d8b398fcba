package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "DRAFT"
	QuotationApproved QuotationStatus = "APPROVED"
	QuotationVoid     QuotationStatus = "VOID"
)

type Quotation struct {
	BaseModel
	QuotationNo *string         `db:"quotation_no" json:"quotation_no"`
	CustomerID  int64           `db:"customer_id" json:"customer_id"`
	DocDate     time.Time       `db:"doc_date" json:"doc_date"`
	Status      QuotationStatus `db:"status" json:"status"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	Items       []QuotationItem `db:"-" json:"items,omitempty"`
}

type QuotationItem struct {
	ID          int64           `db:"id" json:"id"`
	QuotationID int64           `db:"quotation_id" json:"quotation_id"`
	ProductID   *int64          `db:"product_id" json:"product_id,omitempty"`
	Description string          `db:"description" json:"description"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineAmount  decimal.Decimal `db:"line_amount" json:"line_amount"`
}
