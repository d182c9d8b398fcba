package quotation

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/fekuna/omnipos-stockflow-service/internal/quotation/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateInput) (*model.Quotation, error)
	Get(ctx context.Context, id int64) (*model.Quotation, error)
	Approve(ctx context.Context, id int64) (*model.Quotation, error)
	Void(ctx context.Context, id int64) (*model.Quotation, error)
}

// Price fills the line amounts of items and returns their sum.
func Price(items []model.QuotationItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].LineAmount = items[i].UnitPrice.Mul(decimal.NewFromInt(items[i].Quantity))
		total = total.Add(items[i].LineAmount)
	}
	return total
}
