package dto

type AdjustStockInput struct {
	ProductID  int64  `json:"-"`
	StockDelta int64  `json:"stock_delta"`
	Reason     string `json:"reason"`
}
