package treatment

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
)

// The scenarios below follow one instance of the two-step scheme
// ({day 1, "Inject A"}, {day 4, "Inject B"}) started on 2024-01-01.

func TestMissedStepsNoneOnStartDay(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	engine, _, _ := newTestEngine(clock)
	ctx := context.Background()

	if _, err := engine.StartTreatment(ctx, "scheme-1", "animal-1"); err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}

	missed, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 0 {
		// Expected date for step 1 is the start day itself, which is
		// not yet strictly in the past.
		t.Errorf("missed on start day = %+v, want none", missed)
	}
}

func TestMissedStepsFirstStepOverdue(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	engine, _, _ := newTestEngine(clock)
	ctx := context.Background()

	instance, err := engine.StartTreatment(ctx, "scheme-1", "animal-1")
	if err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}

	clock.Set("2024-01-03")
	missed, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 1 {
		t.Fatalf("missed = %+v, want exactly one record", missed)
	}
	got := missed[0]
	if got.StepID != "step-1" || got.TreatmentID != instance.ID || got.AnimalID != "animal-1" {
		t.Errorf("unexpected missed record: %+v", got)
	}
	wantExpected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.ExpectedDate.Equal(wantExpected) {
		t.Errorf("expected date = %v, want %v", got.ExpectedDate, wantExpected)
	}
	// Step 2 must not be reported: the instance never reached it.
}

func TestMissedStepsAfterAdvance(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	engine, _, _ := newTestEngine(clock)
	ctx := context.Background()

	instance, err := engine.StartTreatment(ctx, "scheme-1", "animal-1")
	if err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}

	clock.Set("2024-01-02")
	if err := engine.CompleteStep(ctx, instance.ID, "step-1", "ok", "vet-a"); err != nil {
		t.Fatalf("CompleteStep failed: %v", err)
	}

	// Step 2 is expected on 2024-01-04, not yet missed the day before.
	clock.Set("2024-01-03")
	missed, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 0 {
		t.Errorf("missed on 2024-01-03 = %+v, want none", missed)
	}

	clock.Set("2024-01-05")
	missed, err = engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 1 || missed[0].StepID != "step-2" {
		t.Fatalf("missed on 2024-01-05 = %+v, want step-2 only", missed)
	}
	wantExpected := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	if !missed[0].ExpectedDate.Equal(wantExpected) {
		t.Errorf("expected date = %v, want %v", missed[0].ExpectedDate, wantExpected)
	}
}

func TestMissedStepsIdempotent(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	engine, _, _ := newTestEngine(clock)
	ctx := context.Background()

	if _, err := engine.StartTreatment(ctx, "scheme-1", "animal-1"); err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}
	clock.Set("2024-01-03")

	first, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("first MissedSteps failed: %v", err)
	}
	second, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("second MissedSteps failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive calls differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestMissedStepsIgnoresCompletedInstances(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	engine, _, _ := newTestEngine(clock)
	ctx := context.Background()

	instance, err := engine.StartTreatment(ctx, "scheme-1", "animal-1")
	if err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}
	if err := engine.CompleteTreatment(ctx, instance.ID, models.CompletionDisposal, "culled", "vet-a"); err != nil {
		t.Fatalf("CompleteTreatment failed: %v", err)
	}

	clock.Set("2024-02-01")
	missed, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 0 {
		t.Errorf("terminal instance reported missed steps: %+v", missed)
	}
}

// An instance whose scheme vanished from the catalog is skipped rather
// than failing the whole report.
func TestMissedStepsSkipsVanishedScheme(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	catalog := &fakeCatalog{schemes: map[string]models.TreatmentScheme{"scheme-1": twoStepScheme()}}
	store := newFakeStore()
	engine := NewEngine(catalog, store, newFakeAnimals(), WithClock(clock.Now))
	ctx := context.Background()

	if _, err := engine.StartTreatment(ctx, "scheme-1", "animal-1"); err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}
	delete(catalog.schemes, "scheme-1")

	clock.Set("2024-01-03")
	missed, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 0 {
		t.Errorf("instance without scheme reported missed steps: %+v", missed)
	}
}

// Midnight boundaries are UTC: at 23:00 UTC on the expected day the step
// is not yet missed, one hour later it is.
func TestMissedStepsUTCDayBoundary(t *testing.T) {
	clock := newFakeClock("2024-01-01")
	engine, _, _ := newTestEngine(clock)
	ctx := context.Background()

	if _, err := engine.StartTreatment(ctx, "scheme-1", "animal-1"); err != nil {
		t.Fatalf("StartTreatment failed: %v", err)
	}

	clock.mu.Lock()
	clock.now = time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	clock.mu.Unlock()
	missed, err := engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 0 {
		t.Errorf("step flagged before the UTC day rolled over: %+v", missed)
	}

	clock.mu.Lock()
	clock.now = time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC)
	clock.mu.Unlock()
	missed, err = engine.MissedSteps(ctx)
	if err != nil {
		t.Fatalf("MissedSteps failed: %v", err)
	}
	if len(missed) != 1 {
		t.Errorf("step not flagged after the UTC day rolled over: %+v", missed)
	}
}
