package sweeper

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/voicerec/voicerec/pkg/logging"
)

// DailySpec fires the sweep at 01:00 local time, once per day.
const DailySpec = "0 1 * * *"

// Schedule runs a sweeper against one save location on the daily schedule.
// One Schedule exists per auto-delete entry; cron never overlaps runs of the
// same job, so a sweep is never concurrent with itself.
type Schedule struct {
	sweeper *Sweeper
	dir     string
	cron    *cron.Cron
	logger  *logging.Logger

	mu      sync.Mutex
	running bool
}

// NewSchedule returns a stopped schedule for dir.
func NewSchedule(sw *Sweeper, dir string, logger *logging.Logger) *Schedule {
	return &Schedule{
		sweeper: sw,
		dir:     dir,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the daily job and starts the clock.
func (s *Schedule) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(DailySpec, func() {
		s.logger.Debug("starting scheduled retention sweep", "dir", s.dir)
		s.sweeper.Sweep(s.dir)
	}); err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention sweep scheduled", "dir", s.dir, "spec", DailySpec)
	return nil
}

// Stop cancels the schedule and waits for a running sweep to finish.
func (s *Schedule) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("retention sweep stopped", "dir", s.dir)
}

// NextRun returns the next scheduled sweep time, or the zero time when the
// schedule is stopped.
func (s *Schedule) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
