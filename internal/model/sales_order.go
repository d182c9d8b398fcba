package model

type SalesOrderStatus string

const (
	SOAwaitingReservation SalesOrderStatus = "awaiting_reservation"
	SOPartiallyReserved   SalesOrderStatus = "partially_reserved"
	SOFullyReserved       SalesOrderStatus = "fully_reserved"
	SOPartiallyDelivered  SalesOrderStatus = "partially_delivered"
	SOFullyDelivered      SalesOrderStatus = "fully_delivered"
)

type SalesOrder struct {
	BaseModel
	OrderNo    string           `db:"sales_order_no" json:"sales_order_no"`
	CustomerID int64            `db:"customer_id" json:"customer_id"`
	Status     SalesOrderStatus `db:"status" json:"status"`
}

type SalesOrderItem struct {
	BaseModel
	SalesOrderID int64 `db:"sales_order_id" json:"sales_order_id"`
	ProductID    int64 `db:"product_id" json:"product_id"`
	Quantity     int64 `db:"quantity" json:"quantity"`
	IsDeleted    bool  `db:"is_deleted" json:"-"`
}
