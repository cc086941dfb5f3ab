package scheduler

import (
	"fmt"
	"log"
	"time"

	"stockwatch/config"

	"github.com/go-co-op/gocron"
)

// CycleRunner is the scheduled entry point of the monitoring pipeline.
type CycleRunner interface {
	RunScheduledCycle()
}

// Scheduler drives the price check job. It supports two shapes of
// schedule: once a day at a fixed hour, or every N minutes. A
// configured run hour wins over the interval.
type Scheduler struct {
	cron   *gocron.Scheduler
	cfg    *config.Config
	runner CycleRunner
}

// New creates a scheduler for the given runner.
func New(cfg *config.Config, runner CycleRunner) *Scheduler {
	return &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		cfg:    cfg,
		runner: runner,
	}
}

// Start registers the price check job and starts the scheduler in the
// background.
func (s *Scheduler) Start() error {
	if at, ok := DailyRunTime(s.cfg.RunHour); ok {
		if _, err := s.cron.Every(1).Day().At(at).Do(s.runner.RunScheduledCycle); err != nil {
			return fmt.Errorf("schedule daily price check: %w", err)
		}
		log.Printf("Price check scheduled daily at %s", at)
	} else {
		if _, err := s.cron.Every(s.cfg.PriceCheckMinutes).Minutes().Do(s.runner.RunScheduledCycle); err != nil {
			return fmt.Errorf("schedule interval price check: %w", err)
		}
		log.Printf("Price check scheduled every %d minutes", s.cfg.PriceCheckMinutes)
	}

	s.cron.StartAsync()
	return nil
}

// Stop stops the scheduler. Jobs already running are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// DailyRunTime converts a configured run hour into a gocron "HH:MM"
// time string. Hours outside 0..23 select the interval schedule
// instead.
func DailyRunTime(runHour int) (string, bool) {
	if runHour < 0 || runHour > 23 {
		return "", false
	}
	return fmt.Sprintf("%02d:00", runHour), true
}
