package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/metrics"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
)

type fakeMonitor struct {
	missed    []models.MissedStep
	active    []models.TreatmentInstance
	missedErr error
	activeErr error
	calls     int
}

func (f *fakeMonitor) MissedSteps(ctx context.Context) ([]models.MissedStep, error) {
	f.calls++
	return f.missed, f.missedErr
}

func (f *fakeMonitor) ActiveInstances(ctx context.Context) ([]models.TreatmentInstance, error) {
	return f.active, f.activeErr
}

func TestSweepUpdatesGauges(t *testing.T) {
	monitor := &fakeMonitor{
		missed: []models.MissedStep{
			{TreatmentID: "treatment-1", AnimalID: "animal-1", SchemeID: "scheme-1", StepID: "step-1", ExpectedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{TreatmentID: "treatment-2", AnimalID: "animal-2", SchemeID: "scheme-1", StepID: "step-1", ExpectedDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
		active: []models.TreatmentInstance{
			{BaseModel: models.BaseModel{ID: "treatment-1"}},
			{BaseModel: models.BaseModel{ID: "treatment-2"}},
			{BaseModel: models.BaseModel{ID: "treatment-3"}},
		},
	}
	sweeper := NewSweeper(monitor, time.Minute)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if got := testutil.ToFloat64(metrics.MissedSteps); got != 2 {
		t.Errorf("missed steps gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ActiveTreatments); got != 3 {
		t.Errorf("active treatments gauge = %v, want 3", got)
	}
}

func TestSweepPropagatesDetectorError(t *testing.T) {
	monitor := &fakeMonitor{missedErr: errors.New("store offline")}
	sweeper := NewSweeper(monitor, time.Minute)

	if err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatal("expected error from failing detector")
	}
}

func TestStartFailsWhenInitialSweepFails(t *testing.T) {
	monitor := &fakeMonitor{activeErr: errors.New("store offline")}
	sweeper := NewSweeper(monitor, time.Minute)
	defer sweeper.Stop()

	if err := sweeper.Start(); err == nil {
		t.Fatal("expected Start to surface the failed initial sweep")
	}
}
