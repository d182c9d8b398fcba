package reservation

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// Recompute derives the sales order status from current rows and stores it.
// The caller must hold the sales order lock.
func Recompute(ctx context.Context, q sqlx.ExtContext, repo Repository, salesOrderID int64) (model.SalesOrderStatus, error) {
	lines, err := repo.StatusLines(ctx, q, salesOrderID)
	if err != nil {
		return "", err
	}
	status := OrderStatus(lines)
	if err := repo.UpdateSalesOrderStatus(ctx, q, salesOrderID, status); err != nil {
		return "", err
	}
	return status, nil
}
