package quotation

import (
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	items := []model.QuotationItem{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("19.90")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.15")},
	}
	total := Price(items)
	assert.Equal(t, "59.70", items[0].LineAmount.StringFixed(2))
	assert.Equal(t, "59.85", total.StringFixed(2))
}
