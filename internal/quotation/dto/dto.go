package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineInput struct {
	ProductID   *int64          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateInput struct {
	CustomerID int64       `json:"customer_id"`
	DocDate    *time.Time  `json:"doc_date,omitempty"`
	Items      []LineInput `json:"items"`
}
