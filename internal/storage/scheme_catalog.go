// Package storage provides the GORM-backed implementations of the
// treatment engine's collaborator interfaces.
package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/treatment"
)

// SchemeCatalog reads treatment scheme definitions from the database.
type SchemeCatalog struct {
	DB *gorm.DB
}

// NewSchemeCatalog creates a new SchemeCatalog.
func NewSchemeCatalog(db *gorm.DB) *SchemeCatalog {
	return &SchemeCatalog{DB: db}
}

// GetScheme loads a scheme with its steps in declaration order.
func (c *SchemeCatalog) GetScheme(ctx context.Context, id string) (models.TreatmentScheme, error) {
	var scheme models.TreatmentScheme
	err := c.DB.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order asc")
		}).
		Preload("Steps.Medications").
		First(&scheme, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TreatmentScheme{}, treatment.ErrNotFound{Entity: treatment.EntityScheme, ID: id}
		}
		return models.TreatmentScheme{}, err
	}
	return scheme, nil
}
