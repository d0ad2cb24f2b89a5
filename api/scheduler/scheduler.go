package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Job schedules, evaluated in the scheduler's location
const (
	CleanupSpec      = "0 * * * *"
	DailyCleanupSpec = "5 0 * * *"
	AutoCompleteSpec = "@every 1m"
)

const jobTimeout = 5 * time.Minute

var errNotDue = errors.New("event is not due for completion")

// Scheduler runs the availability cleanup and event auto-complete jobs
type Scheduler struct {
	cron         *cron.Cron
	Events       databases.EventDatabase
	Availability databases.AvailabilityDatabase
	Hooks        *workflow.Hooks
	Location     *time.Location

	now func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(events databases.EventDatabase, availability databases.AvailabilityDatabase, hooks *workflow.Hooks, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := zapLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
			cron.WithLogger(logger),
		),
		Events:       events,
		Availability: availability,
		Hooks:        hooks,
		Location:     loc,
		now:          time.Now,
	}
}

// Start registers every job and starts the cron loop
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{CleanupSpec, "availability cleanup", s.runCleanup},
		{DailyCleanupSpec, "daily availability cleanup", s.runCleanup},
		{AutoCompleteSpec, "event auto-complete", s.runAutoComplete},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			zap.S().Errorw("failed to register job", "job", j.name, "error", err)
			return err
		}
	}
	s.cron.Start()
	zap.S().Infow("scheduler started", "timezone", s.Location.String())
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.CleanupPastAvailability(ctx); err != nil {
		zap.S().Errorw("availability cleanup failed", "error", err)
	}
}

func (s *Scheduler) runAutoComplete() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.AutoCompleteEvents(ctx); err != nil {
		zap.S().Errorw("event auto-complete failed", "error", err)
	}
}

// CleanupPastAvailability deletes resource and location overrides dated before
// today in the scheduler's location
func (s *Scheduler) CleanupPastAvailability(ctx context.Context) (models.CleanupResult, error) {
	today := workflow.Today(s.now(), s.Location)
	res, err := s.Availability.DeleteBefore(ctx, today)
	if err != nil {
		return res, err
	}
	if res.ResourceDeleted > 0 || res.LocationDeleted > 0 {
		zap.S().Infow("removed past availability",
			"before", today,
			"resourceDeleted", res.ResourceDeleted,
			"locationDeleted", res.LocationDeleted)
	}
	return res, nil
}

// AutoCompleteEvents completes every open event whose schedule has ended and runs
// the post-commit hooks for each. It returns how many events were completed.
func (s *Scheduler) AutoCompleteEvents(ctx context.Context) (int, error) {
	now := s.now()
	open, err := s.Events.Find(ctx, bson.M{"status": bson.M{"$nin": []models.EventStatus{
		models.EventStatusCompleted, models.EventStatusCancelled,
	}}})
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range open {
		candidate := open[i]
		if _, due := workflow.AutoComplete(&candidate, now, s.Location); !due {
			continue
		}

		var change workflow.Change
		stored, err := databases.UpdateWithRetry(ctx, s.Events, open[i].ID, 3, func(ev *models.Event) error {
			c, due := workflow.AutoComplete(ev, now, s.Location)
			if !due {
				return errNotDue
			}
			change = c
			return nil
		})
		if errors.Is(err, errNotDue) || errors.Is(err, databases.ErrNotFound) {
			continue
		}
		if err != nil {
			zap.S().Errorw("failed to complete event", "eventId", open[i].ID.Hex(), "error", err)
			continue
		}

		change.Event = *stored
		s.Hooks.Run(ctx, change)
		completed++
		zap.S().Infow("event completed after its schedule ended", "eventId", stored.ID.Hex())
	}
	return completed, nil
}

// zapLogger routes cron's own logging through zap
type zapLogger struct{}

func (zapLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw(msg, keysAndValues...)
}

func (zapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw(msg, append(keysAndValues, "error", err)...)
}
