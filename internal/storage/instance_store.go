package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/treatment"
)

// InstanceStore persists treatment instances and the completed-treatment
// history projection.
type InstanceStore struct {
	DB *gorm.DB
}

// NewInstanceStore creates a new InstanceStore.
func NewInstanceStore(db *gorm.DB) *InstanceStore {
	return &InstanceStore{DB: db}
}

// Create persists a fresh treatment instance.
func (s *InstanceStore) Create(ctx context.Context, instance *models.TreatmentInstance) error {
	return s.DB.WithContext(ctx).Create(instance).Error
}

// Update writes the instance's mutable fields and any newly recorded
// completed steps in one transaction, so the advance and the step record
// cannot diverge.
func (s *InstanceStore) Update(ctx context.Context, instance *models.TreatmentInstance) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"current_step_index": instance.CurrentStepIndex,
			"is_completed":       instance.IsCompleted,
			"completion_type":    instance.CompletionType,
			"completion_date":    instance.CompletionDate,
			"completion_comment": instance.CompletionComment,
		}
		if err := tx.Model(&models.TreatmentInstance{}).
			Where("id = ?", instance.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		for i := range instance.CompletedSteps {
			step := &instance.CompletedSteps[i]
			if step.ID != "" {
				continue // already persisted
			}
			step.InstanceID = instance.ID
			if err := tx.Create(step).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Get loads one instance with its completed steps.
func (s *InstanceStore) Get(ctx context.Context, id string) (models.TreatmentInstance, error) {
	var instance models.TreatmentInstance
	err := s.DB.WithContext(ctx).
		Preload("CompletedSteps", func(db *gorm.DB) *gorm.DB {
			return db.Order("date asc")
		}).
		First(&instance, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TreatmentInstance{}, treatment.ErrNotFound{Entity: treatment.EntityInstance, ID: id}
		}
		return models.TreatmentInstance{}, err
	}
	return instance, nil
}

// FindActiveByAnimal returns the animal's active instance, if any.
func (s *InstanceStore) FindActiveByAnimal(ctx context.Context, animalID string) (models.TreatmentInstance, bool, error) {
	var instance models.TreatmentInstance
	err := s.DB.WithContext(ctx).
		Where("animal_id = ? AND is_completed = ?", animalID, false).
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TreatmentInstance{}, false, nil
		}
		return models.TreatmentInstance{}, false, err
	}
	return instance, true, nil
}

// ListActive lists instances that have not reached a terminal state.
func (s *InstanceStore) ListActive(ctx context.Context) ([]models.TreatmentInstance, error) {
	return s.list(ctx, false)
}

// ListCompleted lists instances in a terminal state.
func (s *InstanceStore) ListCompleted(ctx context.Context) ([]models.TreatmentInstance, error) {
	return s.list(ctx, true)
}

func (s *InstanceStore) list(ctx context.Context, completed bool) ([]models.TreatmentInstance, error) {
	var instances []models.TreatmentInstance
	err := s.DB.WithContext(ctx).
		Preload("CompletedSteps", func(db *gorm.DB) *gorm.DB {
			return db.Order("date asc")
		}).
		Where("is_completed = ?", completed).
		Order("start_date desc").
		Find(&instances).Error
	if err != nil {
		return nil, err
	}
	return instances, nil
}

// AppendHistory appends one completed-treatment record to the reporting
// projection.
func (s *InstanceStore) AppendHistory(ctx context.Context, record models.TreatmentHistoryRecord) error {
	return s.DB.WithContext(ctx).Create(&record).Error
}

// ListHistory lists the completed-treatment projection, newest first.
func (s *InstanceStore) ListHistory(ctx context.Context) ([]models.TreatmentHistoryRecord, error) {
	var records []models.TreatmentHistoryRecord
	err := s.DB.WithContext(ctx).Order("date desc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
