// Package treatment implements the treatment-scheme execution engine: it
// starts treatments, records step completions, terminates treatments early
// and reports steps that became overdue. All state lives in the injected
// stores; the engine itself holds only locks and collaborators.
package treatment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
)

// SchemeCatalog resolves treatment scheme definitions.
type SchemeCatalog interface {
	GetScheme(ctx context.Context, id string) (models.TreatmentScheme, error)
}

// InstanceStore is the durable store for treatment instances and the
// completed-treatment history projection. Implementations return
// ErrNotFound for unknown ids; any other failure is treated as a
// persistence failure and fails the command.
type InstanceStore interface {
	Create(ctx context.Context, instance *models.TreatmentInstance) error
	Update(ctx context.Context, instance *models.TreatmentInstance) error
	Get(ctx context.Context, id string) (models.TreatmentInstance, error)
	FindActiveByAnimal(ctx context.Context, animalID string) (models.TreatmentInstance, bool, error)
	ListActive(ctx context.Context) ([]models.TreatmentInstance, error)
	ListCompleted(ctx context.Context) ([]models.TreatmentInstance, error)
	AppendHistory(ctx context.Context, record models.TreatmentHistoryRecord) error
	ListHistory(ctx context.Context) ([]models.TreatmentHistoryRecord, error)
}

// AnimalStatusService flips an animal's under-treatment status.
type AnimalStatusService interface {
	StartAnimalTreatment(ctx context.Context, animalID string) error
	EndAnimalTreatment(ctx context.Context, animalID, executorID string) error
}

// Engine is the state-machine core for treatment execution. Commands on the
// same instance are serialized; commands on different instances proceed in
// parallel. Construct it with NewEngine — there are no package singletons.
type Engine struct {
	schemes SchemeCatalog
	store   InstanceStore
	animals AnimalStatusService
	locks   *keyedMutex
	now     func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the engine's wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine backed by the supplied collaborators.
func NewEngine(schemes SchemeCatalog, store InstanceStore, animals AnimalStatusService, opts ...Option) *Engine {
	e := &Engine{
		schemes: schemes,
		store:   store,
		animals: animals,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartTreatment creates a new execution record for the given animal and
// scheme, starting at the first step, and flips the animal to
// under-treatment. The scheme must exist and be active, and the animal must
// not already have an active treatment.
func (e *Engine) StartTreatment(ctx context.Context, schemeID, animalID string) (models.TreatmentInstance, error) {
	unlock := e.locks.lock("animal:" + animalID)
	defer unlock()

	scheme, err := e.schemes.GetScheme(ctx, schemeID)
	if err != nil {
		return models.TreatmentInstance{}, err
	}
	if !scheme.IsActive {
		return models.TreatmentInstance{}, ErrInvalidState{Reason: fmt.Sprintf("scheme %s is not active", schemeID)}
	}
	if len(scheme.Steps) == 0 {
		return models.TreatmentInstance{}, ErrInvalidState{Reason: fmt.Sprintf("scheme %s has no steps", schemeID)}
	}

	// At most one active treatment per animal.
	if existing, ok, err := e.store.FindActiveByAnimal(ctx, animalID); err != nil {
		return models.TreatmentInstance{}, ErrPersistence{Op: "lookup active treatment", Err: err}
	} else if ok {
		return models.TreatmentInstance{}, ErrInvalidState{
			Reason: fmt.Sprintf("animal %s already has active treatment %s", animalID, existing.ID),
		}
	}

	instance := models.TreatmentInstance{
		SchemeID:         schemeID,
		AnimalID:         animalID,
		StartDate:        e.now(),
		CurrentStepIndex: 0,
		CompletedSteps:   []models.CompletedStep{},
	}
	if err := e.store.Create(ctx, &instance); err != nil {
		return models.TreatmentInstance{}, ErrPersistence{Op: "create treatment instance", Err: err}
	}

	if err := e.animals.StartAnimalTreatment(ctx, animalID); err != nil {
		// The instance is already durable; the status flip is reported
		// to the caller instead of being silently dropped.
		return instance, fmt.Errorf("treatment %s started but animal status update failed: %w", instance.ID, err)
	}
	return instance, nil
}

// CompleteStep records the execution of the step at the instance's current
// index. The supplied stepID must match that step. Completing the last step
// of the scheme terminates the treatment as a discharge and ends the
// animal's under-treatment status.
func (e *Engine) CompleteStep(ctx context.Context, instanceID, stepID, result, executorID string) error {
	unlock := e.locks.lock("instance:" + instanceID)
	defer unlock()

	instance, err := e.store.Get(ctx, instanceID)
	if err != nil {
		return err
	}
	if instance.IsCompleted {
		return ErrInvalidState{Reason: fmt.Sprintf("treatment %s is already completed", instanceID)}
	}

	scheme, err := e.schemes.GetScheme(ctx, instance.SchemeID)
	if err != nil {
		return err
	}
	steps := orderedSteps(scheme)
	if instance.CurrentStepIndex < 0 || instance.CurrentStepIndex >= len(steps) {
		return ErrInvalidState{
			Reason: fmt.Sprintf("treatment %s step index %d out of range for scheme %s", instanceID, instance.CurrentStepIndex, scheme.ID),
		}
	}
	current := steps[instance.CurrentStepIndex]
	if current.ID != stepID {
		return ErrInvalidState{
			Reason: fmt.Sprintf("step %s is not the current step of treatment %s (expected %s)", stepID, instanceID, current.ID),
		}
	}

	now := e.now()
	isLast := instance.CurrentStepIndex == len(steps)-1

	instance.CompletedSteps = append(instance.CompletedSteps, models.CompletedStep{
		InstanceID: instanceID,
		StepID:     stepID,
		Date:       now,
		Result:     result,
		ExecutorID: executorID,
	})
	if isLast {
		// Protocol exhaustion counts as a successful discharge.
		instance.IsCompleted = true
		instance.CompletionType = models.CompletionDischarge
		instance.CompletionDate = &now
	} else {
		instance.CurrentStepIndex++
	}

	if err := e.store.Update(ctx, &instance); err != nil {
		return ErrPersistence{Op: "record step completion", Err: err}
	}

	if isLast {
		if err := e.appendHistory(ctx, instance, now); err != nil {
			return err
		}
		if err := e.animals.EndAnimalTreatment(ctx, instance.AnimalID, executorID); err != nil {
			return fmt.Errorf("treatment %s completed but animal status update failed: %w", instanceID, err)
		}
	}
	return nil
}

// CompleteTreatment terminates the instance regardless of its current step.
// A discharge returns the animal to normal status; a disposal leaves the
// animal transition to the caller (archival is a separate concern).
func (e *Engine) CompleteTreatment(ctx context.Context, instanceID string, completionType models.CompletionType, comment, executorID string) error {
	if completionType != models.CompletionDischarge && completionType != models.CompletionDisposal {
		return ErrInvalidState{Reason: fmt.Sprintf("unknown completion type %q", completionType)}
	}

	unlock := e.locks.lock("instance:" + instanceID)
	defer unlock()

	instance, err := e.store.Get(ctx, instanceID)
	if err != nil {
		return err
	}
	if instance.IsCompleted {
		return ErrInvalidState{Reason: fmt.Sprintf("treatment %s is already completed", instanceID)}
	}

	now := e.now()
	instance.IsCompleted = true
	instance.CompletionType = completionType
	instance.CompletionDate = &now
	instance.CompletionComment = comment

	if err := e.store.Update(ctx, &instance); err != nil {
		return ErrPersistence{Op: "record treatment completion", Err: err}
	}
	if err := e.appendHistory(ctx, instance, now); err != nil {
		return err
	}

	if completionType == models.CompletionDischarge {
		if err := e.animals.EndAnimalTreatment(ctx, instance.AnimalID, executorID); err != nil {
			return fmt.Errorf("treatment %s completed but animal status update failed: %w", instanceID, err)
		}
	}
	return nil
}

// Instance returns a single treatment instance.
func (e *Engine) Instance(ctx context.Context, id string) (models.TreatmentInstance, error) {
	return e.store.Get(ctx, id)
}

// ActiveInstances lists treatments that have not reached a terminal state.
func (e *Engine) ActiveInstances(ctx context.Context) ([]models.TreatmentInstance, error) {
	return e.store.ListActive(ctx)
}

// CompletedInstances lists treatments in a terminal state.
func (e *Engine) CompletedInstances(ctx context.Context) ([]models.TreatmentInstance, error) {
	return e.store.ListCompleted(ctx)
}

// History lists the completed-treatment projection used for reporting.
func (e *Engine) History(ctx context.Context) ([]models.TreatmentHistoryRecord, error) {
	return e.store.ListHistory(ctx)
}

func (e *Engine) appendHistory(ctx context.Context, instance models.TreatmentInstance, date time.Time) error {
	// The scheme name is denormalized so the report survives later scheme
	// edits; a missing scheme leaves it empty rather than failing the
	// already-recorded completion.
	var schemeName string
	if scheme, err := e.schemes.GetScheme(ctx, instance.SchemeID); err == nil {
		schemeName = scheme.Name
	}
	record := models.TreatmentHistoryRecord{
		InstanceID:     instance.ID,
		AnimalID:       instance.AnimalID,
		SchemeID:       instance.SchemeID,
		SchemeName:     schemeName,
		Date:           date,
		CompletionType: instance.CompletionType,
		Comment:        instance.CompletionComment,
	}
	if err := e.store.AppendHistory(ctx, record); err != nil {
		return ErrPersistence{Op: "append treatment history", Err: err}
	}
	return nil
}

// orderedSteps returns the scheme's steps in declaration order.
func orderedSteps(scheme models.TreatmentScheme) []models.TreatmentStep {
	steps := make([]models.TreatmentStep, len(scheme.Steps))
	copy(steps, scheme.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})
	return steps
}
