// Package scheduler runs the periodic missed-step sweep. The sweep is
// read-only: it asks the treatment engine for overdue steps, refreshes the
// Prometheus gauges and logs an alert line per overdue step for the
// dashboard to pick up.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/metrics"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
)

// TreatmentMonitor is the read-only slice of the engine the sweep needs.
type TreatmentMonitor interface {
	MissedSteps(ctx context.Context) ([]models.MissedStep, error)
	ActiveInstances(ctx context.Context) ([]models.TreatmentInstance, error)
}

// Sweeper periodically evaluates active treatments for overdue steps.
type Sweeper struct {
	monitor   TreatmentMonitor
	scheduler *gocron.Scheduler
	interval  time.Duration
}

// NewSweeper creates a sweeper over the given monitor.
func NewSweeper(monitor TreatmentMonitor, interval time.Duration) *Sweeper {
	return &Sweeper{
		monitor:   monitor,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
	}
}

// Start runs one immediate sweep and then schedules recurring sweeps.
func (s *Sweeper) Start() error {
	if err := s.Sweep(context.Background()); err != nil {
		log.Printf("initial missed-step sweep failed: %v", err)
		return fmt.Errorf("initial missed-step sweep failed: %w", err)
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if err := s.Sweep(context.Background()); err != nil {
			log.Printf("missed-step sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule missed-step sweep: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the recurring sweeps.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep runs a single evaluation pass and refreshes the gauges.
func (s *Sweeper) Sweep(ctx context.Context) error {
	active, err := s.monitor.ActiveInstances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active treatments: %w", err)
	}
	metrics.ActiveTreatments.Set(float64(len(active)))

	missed, err := s.monitor.MissedSteps(ctx)
	if err != nil {
		return fmt.Errorf("failed to detect missed steps: %w", err)
	}
	metrics.MissedSteps.Set(float64(len(missed)))

	for _, m := range missed {
		log.Printf("overdue treatment step: treatment=%s animal=%s scheme=%s step=%s expected=%s",
			m.TreatmentID, m.AnimalID, m.SchemeID, m.StepID, m.ExpectedDate.Format("2006-01-02"))
	}
	return nil
}
