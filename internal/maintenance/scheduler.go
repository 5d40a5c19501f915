// Package maintenance schedules periodic repository upkeep (git gc, and LFS
// pruning when enabled) against the configured workspaces.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/gitdriver/internal/gitcli"
	"git.home.luguber.info/inful/gitdriver/internal/logfields"
)

// Scheduler wraps gocron for periodic maintenance runs.
type Scheduler struct {
	scheduler gocron.Scheduler
	session   *gitcli.Session
	lfs       bool
}

// NewScheduler creates a scheduler bound to a loaded session.
func NewScheduler(session *gitcli.Session, lfs bool) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, session: session, lfs: lfs}, nil
}

// ScheduleGC registers a periodic garbage-collection job for each workspace.
// Returns the job id for later management.
func (s *Scheduler) ScheduleGC(interval time.Duration, workspaces []string) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runMaintenance, workspaces),
		gocron.WithName("repo-gc"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create maintenance job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting maintenance scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping maintenance scheduler")
	return s.scheduler.Shutdown()
}

// runMaintenance is called by gocron on each tick.
func (s *Scheduler) runMaintenance(workspaces []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	for _, dir := range workspaces {
		if code, err := s.session.GC(ctx, dir); err != nil {
			slog.Warn("gc aborted", logfields.Path(dir), logfields.Error(err))
			return
		} else if code != 0 {
			slog.Warn("gc failed", logfields.Path(dir), logfields.ExitCode(code))
		}
		if s.lfs && s.session.LFSAvailable() {
			if code, err := s.session.LFSPrune(ctx, dir); err != nil {
				slog.Warn("lfs prune aborted", logfields.Path(dir), logfields.Error(err))
				return
			} else if code != 0 {
				slog.Warn("lfs prune failed", logfields.Path(dir), logfields.ExitCode(code))
			}
		}
	}
}
