package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/treatment"
)

// AnimalStatus flips an animal's under-treatment status in the database.
type AnimalStatus struct {
	DB *gorm.DB
}

// NewAnimalStatus creates a new AnimalStatus service.
func NewAnimalStatus(db *gorm.DB) *AnimalStatus {
	return &AnimalStatus{DB: db}
}

// StartAnimalTreatment marks the animal as under treatment.
func (a *AnimalStatus) StartAnimalTreatment(ctx context.Context, animalID string) error {
	return a.setStatus(ctx, animalID, models.AnimalStatusUnderTreatment)
}

// EndAnimalTreatment returns the animal to normal status. The executor id
// is part of the collaborator contract for audit purposes; the status flip
// itself does not depend on it.
func (a *AnimalStatus) EndAnimalTreatment(ctx context.Context, animalID, executorID string) error {
	return a.setStatus(ctx, animalID, models.AnimalStatusHealthy)
}

func (a *AnimalStatus) setStatus(ctx context.Context, animalID string, status models.AnimalStatus) error {
	result := a.DB.WithContext(ctx).
		Model(&models.Animal{}).
		Where("id = ?", animalID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return treatment.ErrNotFound{Entity: treatment.EntityAnimal, ID: animalID}
	}
	return nil
}
