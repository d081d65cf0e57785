package scheduler

import (
	"context"
	"time"

	"github.com/Rrens/collabhub/internal/domain"
	"github.com/rs/zerolog/log"
)

const sprintSweepLockKey = "scheduler:sprint-expiry"

// Locker hands out advisory locks shared across service instances
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error)
}

// SweepResult summarises one sprint expiry pass
type SweepResult struct {
	Skipped    bool
	Expired    int
	Completed  int
	TasksMoved int64
	Failed     int
}

// SprintExpiry closes sprints whose end date has passed and returns their
// unfinished tasks to the backlog
type SprintExpiry struct {
	repo     domain.SprintRepository
	locker   Locker
	interval time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewSprintExpiry creates a sprint expiry scheduler. A nil locker runs
// every sweep without coordination.
func NewSprintExpiry(repo domain.SprintRepository, locker Locker, interval, lockTTL time.Duration) *SprintExpiry {
	return &SprintExpiry{
		repo:     repo,
		locker:   locker,
		interval: interval,
		lockTTL:  lockTTL,
		now:      time.Now,
	}
}

// Start sweeps once immediately and then on every interval until ctx is
// cancelled
func (s *SprintExpiry) Start(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("sprint expiry scheduler started")

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sprint expiry scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass. Failures on one sprint are logged and the
// pass moves on to the next; a failed sprint is picked up again next time.
func (s *SprintExpiry) Sweep(ctx context.Context) SweepResult {
	var result SweepResult

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, sprintSweepLockKey, s.lockTTL)
		if err != nil {
			log.Error().Err(err).Msg("failed to acquire sprint sweep lock")
			result.Skipped = true
			return result
		}
		if !acquired {
			log.Debug().Msg("sprint sweep running on another instance, skipping")
			result.Skipped = true
			return result
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("failed to release sprint sweep lock")
			}
		}()
	}

	start := s.now()
	sprints, err := s.repo.GetExpiredSprints(ctx, start)
	if err != nil {
		log.Error().Err(err).Msg("failed to load expired sprints")
		result.Failed++
		return result
	}
	result.Expired = len(sprints)

	for _, sprint := range sprints {
		if ctx.Err() != nil {
			break
		}

		moved, err := s.repo.MoveTasksToBacklog(ctx, sprint.ID)
		if err != nil {
			log.Error().
				Err(err).
				Str("sprint_id", sprint.ID.Hex()).
				Msg("failed to move sprint tasks to backlog")
			result.Failed++
			continue
		}
		result.TasksMoved += moved

		if err := s.repo.MarkSprintCompleted(ctx, sprint.ID); err != nil {
			log.Error().
				Err(err).
				Str("sprint_id", sprint.ID.Hex()).
				Msg("failed to mark sprint completed")
			result.Failed++
			continue
		}
		result.Completed++

		log.Info().
			Str("sprint_id", sprint.ID.Hex()).
			Str("sprint", sprint.Name).
			Int64("tasks_moved", moved).
			Msg("sprint expired")
	}

	log.Info().
		Int("expired", result.Expired).
		Int("completed", result.Completed).
		Int64("tasks_moved", result.TasksMoved).
		Int("failed", result.Failed).
		Dur("duration", s.now().Sub(start)).
		Msg("sprint sweep finished")

	return result
}
