package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/journal/internal/error_values"
	"github.com/limbo/journal/internal/service"
	"github.com/limbo/journal/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// in-memory stand-in for the remote activities table
type activitiesRepoFake struct {
	rows       map[uuid.UUID]entity.Activity
	failing    bool
	rangeCalls int
}

func newActivitiesRepoFake() *activitiesRepoFake {
	return &activitiesRepoFake{rows: make(map[uuid.UUID]entity.Activity)}
}

func (f *activitiesRepoFake) storeErr(op string) error {
	return errorvalues.NewStoreError(op, errors.New("network unreachable"))
}

func (f *activitiesRepoFake) GetByDayRange(ctx context.Context, uid uuid.UUID, start, end time.Time) ([]entity.Activity, error) {
	f.rangeCalls++
	if f.failing {
		return nil, f.storeErr("day range query")
	}
	result := []entity.Activity{}
	for _, row := range f.rows {
		if row.UserID == uid && !row.Date.Before(start) && row.Date.Before(end) {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *activitiesRepoFake) GetMostRecentBefore(ctx context.Context, uid uuid.UUID, cutoff time.Time) (*entity.Activity, error) {
	if f.failing {
		return nil, f.storeErr("recency query")
	}
	var best *entity.Activity
	for _, row := range f.rows {
		if row.UserID != uid || !row.Date.Before(cutoff) {
			continue
		}
		if best == nil || row.Date.After(best.Date) {
			r := row
			best = &r
		}
	}
	return best, nil
}

func (f *activitiesRepoFake) GetAllByUser(ctx context.Context, uid uuid.UUID) ([]entity.Activity, error) {
	if f.failing {
		return nil, f.storeErr("fetch all query")
	}
	result := []entity.Activity{}
	for _, row := range f.rows {
		if row.UserID == uid {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *activitiesRepoFake) Insert(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error) {
	if f.failing {
		return nil, f.storeErr("insert")
	}
	row := entity.Activity{ID: uuid.New(), UserID: uid, Date: date, Content: content}
	f.rows[row.ID] = row
	return &row, nil
}

func (f *activitiesRepoFake) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*entity.Activity, error) {
	if f.failing {
		return nil, f.storeErr("update")
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, f.storeErr("update")
	}
	row.Content = content
	f.rows[id] = row
	return &row, nil
}

func (f *activitiesRepoFake) Delete(ctx context.Context, id uuid.UUID) error {
	if f.failing {
		return f.storeErr("delete")
	}
	delete(f.rows, id)
	return nil
}

type cacheFake struct {
	snapshot     []entity.Activity
	refreshCalls int
	clearCalls   int
}

func (c *cacheFake) Refresh(ctx context.Context, uid uuid.UUID) { c.refreshCalls++ }
func (c *cacheFake) Snapshot(uid uuid.UUID) []entity.Activity   { return c.snapshot }
func (c *cacheFake) Clear(uid uuid.UUID)                        { c.clearCalls++ }

type probeStub struct {
	online bool
}

func (p *probeStub) Online() bool { return p.online }

var (
	activityUserID = uuid.New()
	testLoc        = time.UTC
	testDay        = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
)

func newTestActivityService(repo *activitiesRepoFake, cache *cacheFake, probe *probeStub) *service.ActivityService {
	serv := service.NewActivityService(repo, cache, probe, testLoc)
	// run spawned refreshes inline so tests can observe them
	serv.SetSpawner(func(f func()) { f() })
	return serv
}

func TestSaveActivityUpsert(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	ctx := context.Background()

	first, err := serv.SaveActivity(ctx, activityUserID, testDay, "x")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "x", first.Content)

	// a second save on the same day mutates the same record
	second, err := serv.SaveActivity(ctx, activityUserID, testDay.Add(2*time.Hour), "y")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "y", second.Content)
	assert.Len(t, repo.rows, 1)
}

func TestSaveActivityDeleteOnEmpty(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	ctx := context.Background()

	saved, err := serv.SaveActivity(ctx, activityUserID, testDay, "x")
	require.NoError(t, err)
	require.NotNil(t, saved)

	deleted, err := serv.SaveActivity(ctx, activityUserID, testDay, "   ")
	require.NoError(t, err)
	assert.Nil(t, deleted)
	assert.Empty(t, repo.rows)
}

func TestSaveActivityEmptyNoExisting(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})

	result, err := serv.SaveActivity(context.Background(), activityUserID, testDay, "  \n\t ")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, repo.rows)
}

func TestSaveActivityTrimsContent(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})

	saved, err := serv.SaveActivity(context.Background(), activityUserID, testDay, "  note  \n")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "note", saved.Content)
	// the caller's original timestamp is kept on insert
	assert.True(t, saved.Date.Equal(testDay))
}

func TestSaveActivityNotAuthenticated(t *testing.T) {
	serv := newTestActivityService(newActivitiesRepoFake(), &cacheFake{}, &probeStub{online: true})
	_, err := serv.SaveActivity(context.Background(), uuid.Nil, testDay, "x")
	assert.ErrorIs(t, err, errorvalues.ErrNotAuthenticated)
}

func TestSaveActivityWriteFailurePropagates(t *testing.T) {
	repo := newActivitiesRepoFake()
	repo.failing = true
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	_, err := serv.SaveActivity(context.Background(), activityUserID, testDay, "x")
	require.Error(t, err)
	// the store error stays matchable through the service wrap
	assert.True(t, errorvalues.IsStoreError(err))
}

func TestGetMostRecentActivityBeforeStoreError(t *testing.T) {
	repo := newActivitiesRepoFake()
	repo.failing = true
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	_, err := serv.GetMostRecentActivityBefore(context.Background(), activityUserID, testDay)
	require.Error(t, err)
	assert.True(t, errorvalues.IsStoreError(err))
}

func TestGetActivitiesForDayBoundary(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	ctx := context.Background()

	// dated exactly at the next local midnight
	nextMidnight := time.Date(2024, 3, 2, 0, 0, 0, 0, testLoc)
	_, err := repo.Insert(ctx, activityUserID, nextMidnight, "boundary entry")
	require.NoError(t, err)

	onDay, err := serv.GetActivitiesForDay(ctx, activityUserID, testDay)
	require.NoError(t, err)
	assert.Empty(t, onDay, "upper boundary belongs to the next day")

	onNext, err := serv.GetActivitiesForDay(ctx, activityUserID, nextMidnight.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, onNext, 1)
}

func TestGetActivitiesForDaySchedulesRefresh(t *testing.T) {
	repo := newActivitiesRepoFake()
	cache := &cacheFake{}
	serv := newTestActivityService(repo, cache, &probeStub{online: true})

	_, err := serv.GetActivitiesForDay(context.Background(), activityUserID, testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.refreshCalls)
}

func TestGetActivitiesForDayOffline(t *testing.T) {
	repo := newActivitiesRepoFake()
	cached := entity.Activity{
		ID:      uuid.New(),
		UserID:  activityUserID,
		Date:    testDay.Add(-time.Hour),
		Content: "cached entry",
	}
	other := entity.Activity{
		ID:      uuid.New(),
		UserID:  activityUserID,
		Date:    testDay.AddDate(0, 0, -3),
		Content: "other day",
	}
	cache := &cacheFake{snapshot: []entity.Activity{cached, other}}
	serv := newTestActivityService(repo, cache, &probeStub{online: false})

	activities, err := serv.GetActivitiesForDay(context.Background(), activityUserID, testDay)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, cached.ID, activities[0].ID)
	// no remote call was issued
	assert.Zero(t, repo.rangeCalls)
	assert.Zero(t, cache.refreshCalls)
}

func TestGetActivitiesForDayStoreErrorFallsBack(t *testing.T) {
	repo := newActivitiesRepoFake()
	repo.failing = true
	cached := entity.Activity{
		ID:      uuid.New(),
		UserID:  activityUserID,
		Date:    testDay,
		Content: "stale but present",
	}
	cache := &cacheFake{snapshot: []entity.Activity{cached}}
	serv := newTestActivityService(repo, cache, &probeStub{online: true})

	activities, err := serv.GetActivitiesForDay(context.Background(), activityUserID, testDay)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "stale but present", activities[0].Content)
}

func TestGetMostRecentActivityBefore(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	ctx := context.Background()

	saved, err := serv.SaveActivity(ctx, activityUserID,
		time.Date(2024, 3, 1, 11, 0, 0, 0, testLoc), "Hello **world**")
	require.NoError(t, err)
	require.NotNil(t, saved)

	t.Run("found from the next day", func(t *testing.T) {
		last, err := serv.GetMostRecentActivityBefore(ctx, activityUserID,
			time.Date(2024, 3, 2, 8, 0, 0, 0, testLoc))
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, saved.ID, last.ID)
	})
	t.Run("nothing strictly before the same day", func(t *testing.T) {
		last, err := serv.GetMostRecentActivityBefore(ctx, activityUserID,
			time.Date(2024, 3, 1, 23, 0, 0, 0, testLoc))
		require.NoError(t, err)
		assert.Nil(t, last)
	})
}

func TestGetAllActivitiesForUser(t *testing.T) {
	repo := newActivitiesRepoFake()
	serv := newTestActivityService(repo, &cacheFake{}, &probeStub{online: true})
	ctx := context.Background()

	_, err := serv.SaveActivity(ctx, activityUserID, testDay, "kept")
	require.NoError(t, err)
	// an empty-content row slipped into the store is filtered defensively
	repo.rows[uuid.New()] = entity.Activity{
		ID: uuid.New(), UserID: activityUserID, Date: testDay.AddDate(0, 0, -1), Content: "   ",
	}

	activities, err := serv.GetAllActivitiesForUser(ctx, activityUserID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "kept", activities[0].Content)
}

func TestGetAllActivitiesForUserOffline(t *testing.T) {
	cache := &cacheFake{snapshot: []entity.Activity{
		{ID: uuid.New(), UserID: activityUserID, Date: testDay, Content: "from snapshot"},
	}}
	serv := newTestActivityService(newActivitiesRepoFake(), cache, &probeStub{online: false})

	activities, err := serv.GetAllActivitiesForUser(context.Background(), activityUserID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "from snapshot", activities[0].Content)
}
