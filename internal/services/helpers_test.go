package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/anonto42/campus-board/backend/pkg/lock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	events   *repositories.MemoryClubAdRepository[models.EventAd]
	products *repositories.MemoryClubAdRepository[models.ProductAd]
	others   *repositories.MemoryClubAdRepository[models.OtherAd]
	store    *repositories.MemoryAdEnvelopeRepository
	runs     *repositories.MemorySyncRunRepository
	locker   *lock.LocalLocker
	logs     *test.Hook

	sync       *SyncService
	feed       *FeedService
	engagement *EngagementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	f := &fixture{
		events:   repositories.NewMemoryClubAdRepository[models.EventAd](models.AdTypeEvent),
		products: repositories.NewMemoryClubAdRepository[models.ProductAd](models.AdTypeProduct),
		others:   repositories.NewMemoryClubAdRepository[models.OtherAd](models.AdTypeOther),
		store:    repositories.NewMemoryAdEnvelopeRepository(),
		runs:     repositories.NewMemorySyncRunRepository(),
		locker:   lock.NewLocalLocker(),
		logs:     hook,
	}
	f.sync = NewSyncService(f.store, f.runs, f.locker, log, f.events, f.products, f.others)
	f.feed = NewFeedService(f.store)
	f.engagement = NewEngagementService(f.store)
	return f
}

func (f *fixture) addEvent(t *testing.T, title, university string, tags []string, status string, age time.Duration) models.EventAd {
	t.Helper()
	ad := models.EventAd{
		ID:            primitive.NewObjectID(),
		Title:         title,
		Date:          baseTime.Add(7 * 24 * time.Hour),
		Time:          "18:00",
		Description:   title + " hosted by the computing society",
		University:    university,
		ContactNumber: []string{"555-0100"},
		Tags:          tags,
		Status:        status,
		CreatedAt:     baseTime.Add(-age),
		UpdatedAt:     baseTime.Add(-age),
	}
	require.NoError(t, f.events.Create(context.Background(), ad))
	return ad
}

func (f *fixture) addProduct(t *testing.T, name, university string, tags []string, status string, age time.Duration) models.ProductAd {
	t.Helper()
	ad := models.ProductAd{
		ID:            primitive.NewObjectID(),
		Name:          name,
		Description:   "Second hand " + name,
		University:    university,
		Price:         25,
		ContactNumber: []string{"555-0101"},
		Tags:          tags,
		Status:        status,
		CreatedAt:     baseTime.Add(-age),
		UpdatedAt:     baseTime.Add(-age),
	}
	require.NoError(t, f.products.Create(context.Background(), ad))
	return ad
}

func (f *fixture) addOther(t *testing.T, title, university string, tags []string, status string, age time.Duration) models.OtherAd {
	t.Helper()
	ad := models.OtherAd{
		ID:            primitive.NewObjectID(),
		Title:         title,
		Description:   "Notice: " + title,
		University:    university,
		ContactNumber: []string{"555-0102"},
		Tags:          tags,
		Status:        status,
		CreatedAt:     baseTime.Add(-age),
		UpdatedAt:     baseTime.Add(-age),
	}
	require.NoError(t, f.others.Create(context.Background(), ad))
	return ad
}

// failingSource is a source whose reads always fail
type failingSource struct {
	adType models.AdType
	err    error
}

func (s failingSource) AdType() models.AdType { return s.adType }
func (s failingSource) ListAll(context.Context) ([]models.AdPayload, error) {
	return nil, s.err
}
func (s failingSource) ListActive(context.Context) ([]models.AdPayload, error) {
	return nil, s.err
}
func (s failingSource) Count(context.Context) (int64, error) { return 0, s.err }

// brokenWriteStore reports that only keep seeds were written before the store failed
type brokenWriteStore struct {
	*repositories.MemoryAdEnvelopeRepository
	keep int
	err  error
}

func (s *brokenWriteStore) ReplaceAll(_ context.Context, _ string, seeds []models.EnvelopeSeed) (repositories.ReplaceStats, error) {
	n := s.keep
	if len(seeds) < n {
		n = len(seeds)
	}
	return repositories.ReplaceStats{Written: n, Created: n}, s.err
}
