package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/campus-board/backend/internal/models"
	"gorm.io/gorm"
)

// SyncRunRepository stores the history of aggregate resyncs
type SyncRunRepository interface {
	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	ListRecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// PostgresSyncRunRepository implements SyncRunRepository for PostgreSQL
type PostgresSyncRunRepository struct {
	db *gorm.DB
}

// NewPostgresSyncRunRepository creates a new PostgresSyncRunRepository
func NewPostgresSyncRunRepository(db *gorm.DB) *PostgresSyncRunRepository {
	return &PostgresSyncRunRepository{db: db}
}

// CreateSyncRun records a finished sync run
func (r *PostgresSyncRunRepository) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// ListRecentSyncRuns returns the latest runs, newest first
func (r *PostgresSyncRunRepository) ListRecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// MemorySyncRunRepository keeps sync runs in process memory
type MemorySyncRunRepository struct {
	mu   sync.Mutex
	runs []models.SyncRun
}

// NewMemorySyncRunRepository creates an empty MemorySyncRunRepository
func NewMemorySyncRunRepository() *MemorySyncRunRepository {
	return &MemorySyncRunRepository{}
}

func (r *MemorySyncRunRepository) CreateSyncRun(_ context.Context, run *models.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, *run)
	return nil
}

func (r *MemorySyncRunRepository) ListRecentSyncRuns(_ context.Context, limit int) ([]models.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runs := append([]models.SyncRun{}, r.runs...)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
