package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/anonto42/campus-board/backend/pkg/lock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SyncMode selects which source ads a resync reads
type SyncMode string

const (
	SyncModeAll    SyncMode = "all"
	SyncModeActive SyncMode = "active"
)

// Resync triggers, recorded in the run history
const (
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
)

const (
	resyncLockKey     = "student-ads:resync"
	defaultResyncLock = 5 * time.Minute
)

// SyncResult describes a completed (or partially completed) resync
type SyncResult struct {
	RunID         string                `json:"runId"`
	Mode          SyncMode              `json:"mode"`
	InsertedCount int                   `json:"insertedCount"`
	Created       int                   `json:"created"`
	Updated       int                   `json:"updated"`
	Removed       int                   `json:"removed"`
	SourceCounts  map[models.AdType]int `json:"sourceCounts"`
	StartedAt     time.Time             `json:"startedAt"`
	FinishedAt    time.Time             `json:"finishedAt"`
}

// SyncStats are document counts per club ad collection and for the aggregate
type SyncStats struct {
	Sources   map[models.AdType]int64 `json:"sources"`
	Aggregate int64                   `json:"aggregate"`
}

// SyncService rebuilds the aggregate store from the club ad collections
type SyncService struct {
	sources []repositories.SourceAdRepository
	store   repositories.AdEnvelopeRepository
	runs    repositories.SyncRunRepository
	locker  lock.Locker
	lockTTL time.Duration
	log     logrus.FieldLogger
}

// NewSyncService creates a SyncService. runs may be nil to skip history; a nil locker
// falls back to an in-process lock.
func NewSyncService(
	store repositories.AdEnvelopeRepository,
	runs repositories.SyncRunRepository,
	locker lock.Locker,
	log logrus.FieldLogger,
	sources ...repositories.SourceAdRepository,
) *SyncService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &SyncService{
		sources: sources,
		store:   store,
		runs:    runs,
		locker:  locker,
		lockTTL: defaultResyncLock,
		log:     log.WithField("component", "sync"),
	}
}

// ResyncAll rebuilds the aggregate from every club ad regardless of status
func (s *SyncService) ResyncAll(ctx context.Context) (*SyncResult, error) {
	return s.Resync(ctx, SyncModeAll, TriggerAPI)
}

// ResyncActive rebuilds the aggregate from active club ads only
func (s *SyncService) ResyncActive(ctx context.Context) (*SyncResult, error) {
	return s.Resync(ctx, SyncModeActive, TriggerAPI)
}

// Resync reads every source, normalizes the ads and writes them to the aggregate store.
// Nothing is written unless all sources were read successfully.
func (s *SyncService) Resync(ctx context.Context, mode SyncMode, trigger string) (*SyncResult, error) {
	if mode != SyncModeAll && mode != SyncModeActive {
		return nil, fmt.Errorf("unknown sync mode %q", mode)
	}

	held, err := s.locker.Acquire(ctx, resyncLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSyncInProgress
		}
		return nil, fmt.Errorf("acquire resync lock: %w", err)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).Warn("Failed to release resync lock")
		}
	}()

	result := &SyncResult{
		RunID:        uuid.NewString(),
		Mode:         mode,
		SourceCounts: make(map[models.AdType]int, len(s.sources)),
		StartedAt:    time.Now(),
	}
	log := s.log.WithFields(logrus.Fields{"run_id": result.RunID, "mode": mode, "trigger": trigger})

	ads, err := s.fetch(ctx, mode, result.SourceCounts)
	if err != nil {
		result.FinishedAt = time.Now()
		log.WithError(err).Error("Resync aborted, aggregate left untouched")
		s.record(ctx, result, trigger, err)
		return nil, err
	}

	seeds := NormalizeAll(ads)
	stats, err := s.store.ReplaceAll(ctx, result.RunID, seeds)
	result.InsertedCount = stats.Written
	result.Created = stats.Created
	result.Updated = stats.Updated
	result.Removed = stats.Removed
	result.FinishedAt = time.Now()

	if err != nil {
		perr := &PartialSyncError{Inserted: stats.Written, Expected: len(seeds), Err: err}
		log.WithError(err).WithFields(logrus.Fields{
			"inserted": stats.Written,
			"expected": len(seeds),
		}).Error("Resync only partially applied, retry required")
		s.record(ctx, result, trigger, perr)
		return result, perr
	}

	log.WithFields(logrus.Fields{
		"inserted": result.InsertedCount,
		"created":  result.Created,
		"updated":  result.Updated,
		"removed":  result.Removed,
		"took":     result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("Resync completed")
	s.record(ctx, result, trigger, nil)
	return result, nil
}

// fetch reads all sources concurrently; counts is filled per ad type
func (s *SyncService) fetch(ctx context.Context, mode SyncMode, counts map[models.AdType]int) ([]models.AdPayload, error) {
	lists := make([][]models.AdPayload, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			var (
				ads []models.AdPayload
				err error
			)
			if mode == SyncModeActive {
				ads, err = src.ListActive(gctx)
			} else {
				ads, err = src.ListAll(gctx)
			}
			if err != nil {
				return &SourceUnavailableError{AdType: src.AdType(), Err: err}
			}
			lists[i] = ads
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.AdPayload
	for i, ads := range lists {
		counts[s.sources[i].AdType()] += len(ads)
		all = append(all, ads...)
	}
	return all, nil
}

func (s *SyncService) record(ctx context.Context, result *SyncResult, trigger string, runErr error) {
	if s.runs == nil {
		return
	}
	finished := result.FinishedAt
	run := &models.SyncRun{
		RunID:         result.RunID,
		Mode:          string(result.Mode),
		Trigger:       trigger,
		Status:        models.SyncStatusSucceeded,
		InsertedCount: result.InsertedCount,
		Created:       result.Created,
		Updated:       result.Updated,
		Removed:       result.Removed,
		EventCount:    result.SourceCounts[models.AdTypeEvent],
		ProductCount:  result.SourceCounts[models.AdTypeProduct],
		OtherCount:    result.SourceCounts[models.AdTypeOther],
		StartedAt:     result.StartedAt,
		FinishedAt:    &finished,
	}
	if runErr != nil {
		run.Status = models.SyncStatusFailed
		if errors.Is(runErr, ErrPartialSync) {
			run.Status = models.SyncStatusPartial
		}
		run.Error = runErr.Error()
	}
	if err := s.runs.CreateSyncRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.WithError(err).WithField("run_id", result.RunID).Warn("Failed to record sync run")
	}
}

// RecentRuns returns the latest recorded resyncs
func (s *SyncService) RecentRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if s.runs == nil {
		return []models.SyncRun{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.runs.ListRecentSyncRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return runs, nil
}

// Stats counts the documents in every club ad collection and in the aggregate
func (s *SyncService) Stats(ctx context.Context) (*SyncStats, error) {
	stats := &SyncStats{Sources: make(map[models.AdType]int64, len(s.sources))}
	for _, src := range s.sources {
		n, err := src.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: count %s ads: %v", ErrQueryFailed, src.AdType(), err)
		}
		stats.Sources[src.AdType()] = n
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count student ads: %v", ErrQueryFailed, err)
	}
	stats.Aggregate = n
	return stats, nil
}
