package dto

type ReserveInput struct {
	SalesOrderID int64 `json:"sales_order_id"`
	ProductID    int64 `json:"product_id"`
	Quantity     int64 `json:"quantity"`
}

type BulkLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type BulkReserveInput struct {
	SalesOrderID int64      `json:"sales_order_id"`
	Items        []BulkLine `json:"items"`
}

type UpdateInput struct {
	ReservationID int64 `json:"-"`
	Quantity      int64 `json:"quantity"`
}
