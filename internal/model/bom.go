package model

type BOM struct {
	BaseModel
	Code       string         `db:"bom_code" json:"bom_code"`
	Name       string         `db:"bom_name" json:"bom_name"`
	IsDeleted  bool           `db:"is_deleted" json:"-"`
	Components []BOMComponent `db:"-" json:"components"`
}

type BOMComponent struct {
	ID               int64 `db:"id" json:"id"`
	BOMID            int64 `db:"bom_id" json:"bom_id"`
	ProductID        int64 `db:"product_id" json:"product_id"`
	QuantityRequired int64 `db:"quantity_required" json:"quantity_required"`
}
