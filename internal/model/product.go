package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Code         string          `db:"product_no" json:"product_no"`
	Name         string          `db:"name" json:"name"`
	Unit         string          `db:"unit" json:"unit"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Cost         decimal.Decimal `db:"cost" json:"cost"`
	Stock        int64           `db:"stock" json:"stock"`
	Reserved     int64           `db:"reserved" json:"reserved"`
	Available    int64           `db:"available" json:"available"` // Generated column: stock - reserved
	ReorderPoint int64           `db:"reorder_point" json:"reorder_point"`
	LeadTime     int             `db:"lead_time" json:"lead_time"`
	IsDeleted    bool            `db:"is_deleted" json:"is_deleted"`
}

// ProductState is the soft-delete lifecycle of a product row.
type ProductState string

const (
	ProductActive  ProductState = "active"
	ProductDeleted ProductState = "deleted"
)

func (p *Product) State() ProductState {
	if p.IsDeleted {
		return ProductDeleted
	}
	return ProductActive
}

// ProductPrice is a customer-specific selling price.
type ProductPrice struct {
	ID         int64           `db:"id"`
	ProductID  int64           `db:"product_id"`
	CustomerID int64           `db:"customer_id"`
	Price      decimal.Decimal `db:"price"`
}
