package dto

type CreateResult struct {
	BOMID     int64  `json:"bom_id"`
	BOMCode   string `json:"bom_code"`
	ProductID int64  `json:"product_id"`
}

type Buildability struct {
	BOMID        int64 `json:"bom_id"`
	MaxBuildable int64 `json:"max_buildable"`
}

type PreviewResult struct {
	BOMID      int64         `json:"bom_id"`
	BOMCode    string        `json:"bom_code"`
	Qty        int64         `json:"qty"`
	CanBuild   bool          `json:"can_build"`
	Components []PreviewLine `json:"components"`
}

type ProduceResult struct {
	BOMCode     string `json:"bom_code"`
	Qty         int64  `json:"qty"`
	FGProductID int64  `json:"fg_product_id"`
	FGStock     int64  `json:"fg_stock"`
}

type PreviewLine struct {
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_no"`
	ProductName string `json:"product_name"`
	PerUnit     int64  `json:"per_unit"`
	Required    int64  `json:"required"`
	Available   int64  `json:"available"`
	Shortage    int64  `json:"shortage"`
}
