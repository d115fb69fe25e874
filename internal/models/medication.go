package models

// Medication represents an entry in the medication catalog.
// Stock levels are bookkept by the inventory workflow; the treatment engine
// reads the catalog but never deducts stock when a step completes.
type Medication struct {
	BaseModel
	Name          string  `gorm:"size:255;not null" json:"name"`
	Unit          string  `gorm:"size:20" json:"unit"`
	UnitCost      float64 `json:"unitCost"`
	StockQuantity float64 `json:"stockQuantity"`
}
