package dto

type ComponentInput struct {
	ProductID        int64 `json:"product_id"`
	QuantityRequired int64 `json:"quantity_required"`
}

type CreateInput struct {
	Name       string           `json:"bom_name"`
	Components []ComponentInput `json:"components"`
}

type RenameInput struct {
	Name string `json:"bom_name"`
}

type ReplaceComponentsInput struct {
	Components []ComponentInput `json:"components"`
}

type QuantityInput struct {
	Qty int64 `json:"qty"`
}
