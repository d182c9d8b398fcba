package delivery

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// OrderLine is a locked sales order item with the price in force for the
// order's customer.
type OrderLine struct {
	ID           int64           `db:"id"`
	SalesOrderID int64           `db:"sales_order_id"`
	ProductID    int64           `db:"product_id"`
	Quantity     int64           `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
}

type Repository interface {
	// OrderProgress lists live items of the order with delivered totals.
	OrderProgress(ctx context.Context, q sqlx.ExtContext, salesOrderID int64) ([]ItemProgress, error)
	// LockOrderLines locks the live items among itemIDs, ordered by id.
	LockOrderLines(ctx context.Context, q sqlx.ExtContext, salesOrderID int64, itemIDs []int64) ([]OrderLine, error)

	InsertDeliveryNote(ctx context.Context, q sqlx.ExtContext, dn *model.DeliveryNote) error
	InsertDeliveryNoteItem(ctx context.Context, q sqlx.ExtContext, item *model.DeliveryNoteItem) error
	InsertInvoice(ctx context.Context, q sqlx.ExtContext, inv *model.Invoice) error
	InsertInvoiceItem(ctx context.Context, q sqlx.ExtContext, item *model.InvoiceItem) error
	UpdateInvoiceSubtotal(ctx context.Context, q sqlx.ExtContext, id int64, subtotal decimal.Decimal) error
	CancelInvoices(ctx context.Context, q sqlx.ExtContext, pairID int64) (int64, error)
}
