package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/journal/internal/error_values"
	"github.com/limbo/journal/internal/repository"
	"github.com/limbo/journal/pkg/entity"
)

// ActivityService owns the per-day journal semantics: at most one activity
// per (user, calendar day), empty content deletes, reads degrade to the
// offline snapshot when the store is unreachable.
type ActivityService struct {
	repo  repository.ActivitiesRepositoryI
	cache OfflineCacheI
	probe ConnectivityProbe
	loc   *time.Location
	locks *dayLock
	// spawn runs the fire-and-forget cache refresh; swapped for a
	// synchronous func in tests
	spawn func(f func())
}

func NewActivityService(repo repository.ActivitiesRepositoryI, cache OfflineCacheI, probe ConnectivityProbe, loc *time.Location) *ActivityService {
	if repo == nil || cache == nil {
		log.Fatal("on activity service provided nil dependencies")
	}
	if probe == nil {
		probe = AlwaysOnline{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{
		repo:  repo,
		cache: cache,
		probe: probe,
		loc:   loc,
		locks: newDayLock(),
		spawn: func(f func()) { go f() },
	}
}

// SetSpawner replaces the background-task runner, used by tests to make the
// fire-and-forget refresh observable.
func (serv *ActivityService) SetSpawner(spawn func(f func())) {
	serv.spawn = spawn
}

// GetActivitiesForDay returns uid's activities inside the half-open day
// window of date. Online reads hit the store and schedule a snapshot refresh
// on the side; offline or failed reads fall back to the snapshot filtered
// client-side, trading freshness for availability.
func (serv *ActivityService) GetActivitiesForDay(ctx context.Context, uid uuid.UUID, date time.Time) ([]entity.Activity, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	if !serv.probe.Online() {
		return serv.dayFromSnapshot(uid, date), nil
	}
	start, end := entity.DayWindow(date, serv.loc)
	activities, err := serv.repo.GetByDayRange(ctx, uid, start, end)
	if err != nil {
		slog.Warn("day query degraded to offline snapshot", slog.String("error", err.Error()))
		return serv.dayFromSnapshot(uid, date), nil
	}
	serv.spawn(func() {
		serv.cache.Refresh(context.Background(), uid)
	})
	return dropEmpty(activities), nil
}

// SaveActivity is the upsert-or-delete policy keyed on (uid, day): trimmed
// empty content deletes the day's record if any, non-empty content replaces
// it or creates one. Callers never pass a record id; the day-window lookup
// resolves it. Returns nil on delete and no-op.
func (serv *ActivityService) SaveActivity(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	start, end := entity.DayWindow(date, serv.loc)
	unlock := serv.locks.lock(uid, entity.DayKey(date, serv.loc))
	defer unlock()

	existing, err := serv.repo.GetByDayRange(ctx, uid, start, end)
	if err != nil {
		return nil, fmt.Errorf("resolving existing activity error: %w", err)
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		if len(existing) == 0 {
			return nil, nil
		}
		if err := serv.repo.Delete(ctx, existing[0].ID); err != nil {
			return nil, fmt.Errorf("deleting emptied activity error: %w", err)
		}
		return nil, nil
	}
	if len(existing) > 0 {
		updated, err := serv.repo.UpdateContent(ctx, existing[0].ID, trimmed)
		if err != nil {
			return nil, fmt.Errorf("updating activity error: %w", err)
		}
		return updated, nil
	}
	// the caller's timestamp is stored as-is; bucketing normalizes later
	created, err := serv.repo.Insert(ctx, uid, date, trimmed)
	if err != nil {
		return nil, fmt.Errorf("creating activity error: %w", err)
	}
	return created, nil
}

// GetMostRecentActivityBefore finds the newest activity strictly before the
// local midnight of reference, the dashboard's "yesterday" entry.
func (serv *ActivityService) GetMostRecentActivityBefore(ctx context.Context, uid uuid.UUID, reference time.Time) (*entity.Activity, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	cutoff := entity.Midnight(reference, serv.loc)
	activity, err := serv.repo.GetMostRecentBefore(ctx, uid, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recency lookup error: %w", err)
	}
	return activity, nil
}

// GetAllActivitiesForUser is the source list for grouping and statistics.
func (serv *ActivityService) GetAllActivitiesForUser(ctx context.Context, uid uuid.UUID) ([]entity.Activity, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	if !serv.probe.Online() {
		return dropEmpty(serv.cache.Snapshot(uid)), nil
	}
	activities, err := serv.repo.GetAllByUser(ctx, uid)
	if err != nil {
		slog.Warn("fetch all degraded to offline snapshot", slog.String("error", err.Error()))
		return dropEmpty(serv.cache.Snapshot(uid)), nil
	}
	return dropEmpty(activities), nil
}

func (serv *ActivityService) dayFromSnapshot(uid uuid.UUID, date time.Time) []entity.Activity {
	snapshot := serv.cache.Snapshot(uid)
	result := make([]entity.Activity, 0, 1)
	for _, activity := range snapshot {
		if activity.UserID == uid && entity.InDayWindow(activity.Date, date, serv.loc) && !activity.Empty() {
			result = append(result, activity)
		}
	}
	return result
}

// dropEmpty filters out empty-content rows. The write policy should prevent
// them, but historical or race-created rows are tolerated.
func dropEmpty(activities []entity.Activity) []entity.Activity {
	result := make([]entity.Activity, 0, len(activities))
	for _, activity := range activities {
		if !activity.Empty() {
			result = append(result, activity)
		}
	}
	return result
}
