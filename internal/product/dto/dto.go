package dto

import "github.com/fekuna/omnipos-stockflow-service/internal/model"

type LowStockFilters struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type MovementFilters struct {
	ProductID    int64
	MovementType model.MovementType
	Page         int
	PageSize     int
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
