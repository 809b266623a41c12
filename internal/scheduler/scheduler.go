// Package scheduler runs periodic background tasks using gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/audiorelay/internal/logger"
)

// TaskFunc is the signature of every scheduled task. The context is
// cancelled when the scheduler stops.
type TaskFunc func(ctx context.Context) error

// Job binds a task to a cron schedule.
type Job struct {
	Name     string
	Schedule string
	Task     TaskFunc
	// RunOnStart also runs the task once as soon as the scheduler starts.
	RunOnStart bool
}

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	jobs      []Job
	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
}

// NewScheduler creates a scheduler for jobs. Jobs are registered on Start.
func NewScheduler(log *slog.Logger, jobs []Job) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "scheduler")

	s, err := gocron.NewScheduler(gocron.WithLogger(logger.NewGocronLogger(log)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		jobs:      jobs,
	}, nil
}

// Start schedules all jobs and starts the scheduler. A job with an
// invalid schedule fails the whole start.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	taskCtx, cancel := context.WithCancel(ctx)

	for _, job := range s.jobs {
		opts := []gocron.JobOption{
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if job.RunOnStart {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		_, err := s.scheduler.NewJob(
			gocron.CronJob(job.Schedule, false),
			gocron.NewTask(s.wrap(job), taskCtx),
			opts...,
		)
		if err != nil {
			cancel()
			s.logger.Error("Failed to schedule task", "task_name", job.Name, "schedule", job.Schedule, "error", err)
			return fmt.Errorf("failed to schedule task %s: %w", job.Name, err)
		}
		s.logger.Info("Scheduled task", "task_name", job.Name, "schedule", job.Schedule)
	}

	s.scheduler.Start()
	s.cancel = cancel
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.jobs))
	return nil
}

func (s *Scheduler) wrap(job Job) func(ctx context.Context) {
	return func(ctx context.Context) {
		s.logger.Debug("Running scheduled task", "task_name", job.Name)
		startTime := time.Now()
		if err := job.Task(ctx); err != nil {
			s.logger.Error("Scheduled task failed", "task_name", job.Name, "error", err)
		}
		s.logger.Debug("Finished scheduled task", "task_name", job.Name, "duration", time.Since(startTime))
	}
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
