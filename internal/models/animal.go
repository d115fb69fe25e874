package models

import (
	"time"
)

// AnimalStatus represents the current status of an animal in the herd
type AnimalStatus string

const (
	AnimalStatusHealthy        AnimalStatus = "healthy"
	AnimalStatusUnderTreatment AnimalStatus = "under_treatment"
	AnimalStatusDisposed       AnimalStatus = "disposed"
)

// Animal represents a single animal in the herd
type Animal struct {
	BaseModel
	TagNumber string       `gorm:"uniqueIndex;size:50;not null" json:"tagNumber"`
	Breed     string       `gorm:"size:100" json:"breed"`
	BirthDate *time.Time   `json:"birthDate,omitempty"`
	Gender    string       `gorm:"size:10" json:"gender"`
	Weight    float64      `json:"weight"`
	Status    AnimalStatus `gorm:"size:20;default:'healthy';index" json:"status"`

	// Relations
	Treatments []TreatmentInstance `gorm:"foreignKey:AnimalID" json:"-"`
}
