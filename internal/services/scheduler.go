package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// OverdueSweeper periodically flips past-due task assignments to overdue so
// clients see consistent state even when nobody touches a task.
type OverdueSweeper struct {
	tasks     TaskService
	logger    *slog.Logger
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewOverdueSweeper(tasks TaskService, logger *slog.Logger, interval time.Duration) *OverdueSweeper {
	return &OverdueSweeper{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
	}
}

func (s *OverdueSweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}

	sched.Start()
	s.logger.Info("Overdue sweeper started", "interval", s.interval)
	return nil
}

func (s *OverdueSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	flipped, err := s.tasks.SweepOverdue(ctx)
	if err != nil {
		s.logger.Error("Overdue sweep failed", "error", err)
		return
	}
	if flipped > 0 {
		s.logger.Info("Overdue sweep completed", "assignments_flipped", flipped)
	}
}

func (s *OverdueSweeper) Shutdown() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}
