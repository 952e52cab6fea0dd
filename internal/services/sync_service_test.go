package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResyncAll_SingleEventIsSearchable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, 0)

	res, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, SyncModeAll, res.Mode)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	found, err := f.feed.QueryFeed(ctx, models.FeedFilter{University: "ACME U", Search: "hack"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.AdTypeEvent, found[0].AdType)
	assert.Equal(t, "Hack Night", found[0].AdData.Headline())

	none, err := f.feed.QueryFeed(ctx, models.FeedFilter{University: "Other U"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResyncAll_IncludesEveryStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, time.Hour)
	f.addEvent(t, "Old Mixer", "ACME U", []string{"social"}, models.AdStatusInactive, 2*time.Hour)
	f.addProduct(t, "Calculator", "ACME U", []string{"books"}, models.AdStatusActive, 3*time.Hour)
	f.addOther(t, "Lost keys", "Other U", []string{"misc"}, models.AdStatusInactive, 4*time.Hour)

	res, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, res.InsertedCount)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, map[models.AdType]int{
		models.AdTypeEvent:   2,
		models.AdTypeProduct: 1,
		models.AdTypeOther:   1,
	}, res.SourceCounts)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestResyncActive_DropsInactiveAds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, time.Hour)
	f.addEvent(t, "Old Mixer", "ACME U", []string{"social"}, models.AdStatusInactive, 2*time.Hour)
	f.addProduct(t, "Calculator", "ACME U", []string{"books"}, models.AdStatusInactive, 3*time.Hour)
	f.addOther(t, "Room share", "ACME U", []string{"housing"}, models.AdStatusActive, 4*time.Hour)

	_, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)

	res, err := f.sync.ResyncActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 2, res.Removed)

	ads, err := f.feed.QueryFeed(ctx, models.FeedFilter{University: "ACME U"})
	require.NoError(t, err)
	require.Len(t, ads, 2)
	for _, ad := range ads {
		assert.True(t, ad.AdData.IsActive(), "inactive ad %q left in aggregate", ad.AdData.Headline())
	}
}

func TestResync_SourceFailureLeavesAggregateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, 0)
	_, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	boom := errors.New("connection reset")
	svc := NewSyncService(f.store, f.runs, f.locker, log,
		f.events, failingSource{adType: models.AdTypeProduct, err: boom}, f.others)

	res, err := svc.ResyncAll(ctx)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrSourceUnavailable)
	require.ErrorIs(t, err, boom)

	var srcErr *SourceUnavailableError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, models.AdTypeProduct, srcErr.AdType)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	runs, err := f.runs.ListRecentSyncRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, models.SyncStatusFailed, runs[0].Status)
}

func TestResync_PartialWriteIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, time.Hour)
	f.addProduct(t, "Calculator", "ACME U", []string{"books"}, models.AdStatusActive, 2*time.Hour)
	f.addOther(t, "Room share", "ACME U", []string{"housing"}, models.AdStatusActive, 3*time.Hour)

	store := &brokenWriteStore{
		MemoryAdEnvelopeRepository: repositories.NewMemoryAdEnvelopeRepository(),
		keep:                       1,
		err:                        errors.New("write concern timeout"),
	}
	log, _ := test.NewNullLogger()
	svc := NewSyncService(store, f.runs, nil, log, f.events, f.products, f.others)

	res, err := svc.ResyncActive(ctx)
	require.ErrorIs(t, err, ErrPartialSync)

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Inserted)
	assert.Equal(t, 3, partial.Expected)

	require.NotNil(t, res)
	assert.Equal(t, 1, res.InsertedCount)

	runs, err := f.runs.ListRecentSyncRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.SyncStatusPartial, runs[0].Status)
	assert.Contains(t, runs[0].Error, "write concern timeout")
}

func TestResync_SecondRunKeepsEnvelopesAndEngagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, time.Hour)
	f.addProduct(t, "Calculator", "ACME U", []string{"books"}, models.AdStatusActive, 2*time.Hour)

	first, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)

	ads, err := f.feed.QueryFeed(ctx, models.FeedFilter{University: "ACME U", AdType: models.AdTypeEvent})
	require.NoError(t, err)
	require.Len(t, ads, 1)
	id := ads[0].ID.Hex()

	_, err = f.engagement.ToggleLike(ctx, id, "u1")
	require.NoError(t, err)
	_, err = f.engagement.ToggleInterest(ctx, id, "u2")
	require.NoError(t, err)
	_, err = f.engagement.IncrementShare(ctx, id)
	require.NoError(t, err)

	second, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.InsertedCount, second.InsertedCount)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, 0, second.Removed)

	env, err := f.feed.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, env.Likes)
	assert.Equal(t, []string{"u2"}, env.Interests)
	assert.EqualValues(t, 1, env.ShareCount)
}

func TestResync_PicksUpSourceEditsAndDeletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, time.Hour)
	prod := f.addProduct(t, "Calculator", "ACME U", []string{"books"}, models.AdStatusActive, 2*time.Hour)

	_, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)

	ev.Title = "Hack Night II"
	require.NoError(t, f.events.Replace(ctx, ev.ID.Hex(), ev))
	require.NoError(t, f.products.Delete(ctx, prod.ID.Hex()))

	res, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 1, res.Removed)

	ads, err := f.feed.QueryFeed(ctx, models.FeedFilter{University: "ACME U"})
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "Hack Night II", ads[0].AdData.Headline())
}

func TestResync_EmptySourcesClearAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, 0)
	_, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)

	require.NoError(t, f.events.Delete(ctx, ev.ID.Hex()))
	res, err := f.sync.ResyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.InsertedCount)
	assert.Equal(t, 1, res.Removed)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestResync_RejectsOverlappingRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	held, err := f.locker.Acquire(ctx, resyncLockKey, time.Minute)
	require.NoError(t, err)

	_, err = f.sync.ResyncAll(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	require.NoError(t, held.Release(ctx))
	_, err = f.sync.ResyncAll(ctx)
	assert.NoError(t, err)
}

func TestResync_UnknownMode(t *testing.T) {
	f := newFixture(t)
	_, err := f.sync.Resync(context.Background(), SyncMode("everything"), TriggerAPI)
	assert.Error(t, err)
}

func TestResync_RecordsRunHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, 0)
	f.addOther(t, "Room share", "ACME U", []string{"housing"}, models.AdStatusInactive, time.Hour)

	res, err := f.sync.Resync(ctx, SyncModeActive, TriggerSchedule)
	require.NoError(t, err)

	runs, err := f.sync.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, res.RunID, run.RunID)
	assert.Equal(t, string(SyncModeActive), run.Mode)
	assert.Equal(t, TriggerSchedule, run.Trigger)
	assert.Equal(t, models.SyncStatusSucceeded, run.Status)
	assert.Equal(t, 1, run.InsertedCount)
	assert.Equal(t, 1, run.EventCount)
	assert.Equal(t, 0, run.OtherCount)
	require.NotNil(t, run.FinishedAt)
}

func TestStats_CountsSourcesAndAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "Hack Night", "ACME U", []string{"tech"}, models.AdStatusActive, 0)
	f.addEvent(t, "Old Mixer", "ACME U", []string{"social"}, models.AdStatusInactive, time.Hour)
	f.addProduct(t, "Calculator", "ACME U", []string{"books"}, models.AdStatusActive, 0)

	_, err := f.sync.ResyncActive(ctx)
	require.NoError(t, err)

	stats, err := f.sync.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Sources[models.AdTypeEvent])
	assert.EqualValues(t, 1, stats.Sources[models.AdTypeProduct])
	assert.EqualValues(t, 0, stats.Sources[models.AdTypeOther])
	assert.EqualValues(t, 2, stats.Aggregate)
}
