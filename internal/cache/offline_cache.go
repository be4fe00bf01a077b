package cache

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/limbo/journal/internal/repository"
	"github.com/limbo/journal/pkg/cleanup"
	"github.com/limbo/journal/pkg/entity"
	"github.com/tidwall/buntdb"
)

const (
	activitiesKeyPrefix = "cached_activities:"
	lastCachedKeyPrefix = "activities_last_cached:"
)

// OfflineCache keeps a best-effort durable snapshot of a user's activities
// so reads keep working while the remote store is unreachable. It is a read
// fallback only: nothing written locally is ever replayed upstream.
type OfflineCache struct {
	db   *buntdb.DB
	repo repository.ActivitiesRepositoryI
}

func New(path string, repo repository.ActivitiesRepositoryI) *OfflineCache {
	db, err := buntdb.Open(path)
	if err != nil {
		log.Fatal("opening offline cache db error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing offline cache db",
		F:    db.Close,
	})
	return &OfflineCache{
		db:   db,
		repo: repo,
	}
}

// NewWithDB wires an already opened buntdb, used by tests with ":memory:".
func NewWithDB(db *buntdb.DB, repo repository.ActivitiesRepositoryI) *OfflineCache {
	return &OfflineCache{
		db:   db,
		repo: repo,
	}
}

// Refresh overwrites the snapshot for uid with a fresh fetch-all. Errors are
// logged and swallowed: a failed refresh must leave the prior snapshot
// intact and stay invisible to whoever triggered it.
func (c *OfflineCache) Refresh(ctx context.Context, uid uuid.UUID) {
	if uid == uuid.Nil {
		return
	}
	activities, err := c.repo.GetAllByUser(ctx, uid)
	if err != nil {
		slog.Warn("offline cache refresh skipped", slog.String("error", err.Error()))
		return
	}
	serialized, err := sonic.Marshal(activities)
	if err != nil {
		slog.Warn("offline cache serialize error", slog.String("error", err.Error()))
		return
	}
	err = c.db.Update(func(tx *buntdb.Tx) error {
		if _, _, err := tx.Set(activitiesKeyPrefix+uid.String(), string(serialized), nil); err != nil {
			return err
		}
		_, _, err := tx.Set(lastCachedKeyPrefix+uid.String(), time.Now().UTC().Format(time.RFC3339), nil)
		return err
	})
	if err != nil {
		slog.Warn("offline cache write error", slog.String("error", err.Error()))
	}
}

// Snapshot returns the persisted snapshot for uid verbatim, or an empty list
// when none exists. Callers filter; no day bucketing happens here.
func (c *OfflineCache) Snapshot(uid uuid.UUID) []entity.Activity {
	var raw string
	err := c.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(activitiesKeyPrefix + uid.String())
		return err
	})
	if err != nil {
		if !errors.Is(err, buntdb.ErrNotFound) {
			slog.Warn("offline cache read error", slog.String("error", err.Error()))
		}
		return []entity.Activity{}
	}
	var activities []entity.Activity
	if err := sonic.Unmarshal([]byte(raw), &activities); err != nil {
		slog.Warn("offline cache deserialize error", slog.String("error", err.Error()))
		return []entity.Activity{}
	}
	return activities
}

// LastCachedAt reports when the snapshot for uid was last refreshed.
func (c *OfflineCache) LastCachedAt(uid uuid.UUID) (time.Time, bool) {
	var raw string
	err := c.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(lastCachedKeyPrefix + uid.String())
		return err
	})
	if err != nil {
		return time.Time{}, false
	}
	cachedAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return cachedAt, true
}

// Clear drops the snapshot for uid, used on sign-out.
func (c *OfflineCache) Clear(uid uuid.UUID) {
	err := c.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Delete(activitiesKeyPrefix + uid.String()); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		if _, err := tx.Delete(lastCachedKeyPrefix + uid.String()); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		slog.Warn("offline cache clear error", slog.String("error", err.Error()))
	}
}
