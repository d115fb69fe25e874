package treatment

import (
	"context"
	"time"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
)

// MissedSteps reports, for every active treatment, the steps up to and
// including the current one whose expected date has passed without a
// matching completed-step record. It performs no writes and is
// deterministic for a fixed clock; day boundaries are UTC.
func (e *Engine) MissedSteps(ctx context.Context) ([]models.MissedStep, error) {
	instances, err := e.store.ListActive(ctx)
	if err != nil {
		return nil, ErrPersistence{Op: "list active treatments", Err: err}
	}

	today := utcMidnight(e.now())
	missed := []models.MissedStep{}
	for _, instance := range instances {
		scheme, err := e.schemes.GetScheme(ctx, instance.SchemeID)
		if err != nil {
			if IsNotFound(err) {
				// The scheme was removed from the catalog after the
				// treatment started; there is nothing left to measure
				// the instance against.
				continue
			}
			return nil, err
		}
		missed = append(missed, missedForInstance(instance, scheme, today)...)
	}
	return missed, nil
}

// missedForInstance evaluates one instance against its scheme. Steps past
// the current index are never flagged, even when the protocol's day offsets
// are badly calibrated relative to elapsed time.
func missedForInstance(instance models.TreatmentInstance, scheme models.TreatmentScheme, today time.Time) []models.MissedStep {
	steps := orderedSteps(scheme)
	if len(steps) == 0 {
		return nil
	}

	completed := make(map[string]bool, len(instance.CompletedSteps))
	for _, cs := range instance.CompletedSteps {
		completed[cs.StepID] = true
	}

	limit := instance.CurrentStepIndex
	if limit > len(steps)-1 {
		limit = len(steps) - 1
	}

	start := utcMidnight(instance.StartDate)
	var missed []models.MissedStep
	for i := 0; i <= limit; i++ {
		step := steps[i]
		expected := start.AddDate(0, 0, step.DayOffset-1)
		if completed[step.ID] || !today.After(expected) {
			continue
		}
		missed = append(missed, models.MissedStep{
			TreatmentID:  instance.ID,
			AnimalID:     instance.AnimalID,
			SchemeID:     instance.SchemeID,
			StepID:       step.ID,
			ExpectedDate: expected,
		})
	}
	return missed
}

// utcMidnight truncates t to the start of its UTC calendar day.
func utcMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
