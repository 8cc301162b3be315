package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/weatherwell/weathercore/internal/alerts"
)

// Scheduler runs the alert evaluator on a fixed cadence. SingletonMode keeps
// cycles strictly serialized: a slow cycle delays the next one rather than
// overlapping it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	evaluator *alerts.Evaluator
	config    alerts.Config
	interval  time.Duration
}

// New creates a Scheduler over an alert evaluator.
func New(evaluator *alerts.Evaluator, config alerts.Config, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		evaluator: evaluator,
		config:    config,
		interval:  interval,
	}
}

// Start schedules the periodic evaluation job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		log.Println("scheduler: running alert evaluation cycle")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.evaluator.RunCycle(ctx, s.config); err != nil {
			log.Printf("scheduler: alert cycle failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
