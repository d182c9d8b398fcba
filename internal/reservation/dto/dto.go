package dto

import "github.com/fekuna/omnipos-stockflow-service/internal/model"

type StatusResponse struct {
	SalesOrderID int64                  `json:"sales_order_id"`
	Status       model.SalesOrderStatus `json:"status"`
}

// ChangedEvent is the payload of ReservationChanged.
type ChangedEvent struct {
	SalesOrderID  int64                  `json:"sales_order_id"`
	ReservationID int64                  `json:"reservation_id,omitempty"`
	ProductID     int64                  `json:"product_id,omitempty"`
	Quantity      int64                  `json:"quantity"`
	Action        string                 `json:"action"`
	OrderStatus   model.SalesOrderStatus `json:"order_status"`
}
