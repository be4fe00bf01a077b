// Package queries is the thin read-side glue between UI-facing handlers and
// the activity service: a keyed stale-while-revalidate memo so repeated
// dashboard reads don't hammer the store, with invalidation on save.
package queries

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/journal/internal/service"
	"github.com/limbo/journal/pkg/entity"
)

const defaultStaleAfter = 30 * time.Second

type cacheEntry struct {
	value     *entity.Activity
	fetchedAt time.Time
}

type Queries struct {
	serv       service.ActivityServiceI
	loc        *time.Location
	staleAfter time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	now   func() time.Time
	spawn func(f func())
}

func New(serv service.ActivityServiceI, loc *time.Location) *Queries {
	if serv == nil {
		log.Fatal("on queries provided nil activity service")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Queries{
		serv:       serv,
		loc:        loc,
		staleAfter: defaultStaleAfter,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
		spawn:      func(f func()) { go f() },
	}
}

// SetClock and SetSpawner pin time and background execution in tests.
func (q *Queries) SetClock(now func() time.Time)    { q.now = now }
func (q *Queries) SetSpawner(spawn func(f func())) { q.spawn = spawn }

func todayKey(uid uuid.UUID) string { return "today:" + uid.String() }
func lastKey(uid uuid.UUID) string  { return "last:" + uid.String() }

// Today returns the user's entry for the current day, memoized. A stale hit
// is served immediately while a background revalidation refreshes it.
func (q *Queries) Today(ctx context.Context, uid uuid.UUID) (*entity.Activity, error) {
	return q.get(ctx, todayKey(uid), func(ctx context.Context) (*entity.Activity, error) {
		activities, err := q.serv.GetActivitiesForDay(ctx, uid, q.now())
		if err != nil {
			return nil, err
		}
		if len(activities) == 0 {
			return nil, nil
		}
		return &activities[0], nil
	})
}

// Last returns the most recent entry strictly before today, memoized.
func (q *Queries) Last(ctx context.Context, uid uuid.UUID) (*entity.Activity, error) {
	return q.get(ctx, lastKey(uid), func(ctx context.Context) (*entity.Activity, error) {
		return q.serv.GetMostRecentActivityBefore(ctx, uid, q.now())
	})
}

// Save writes through the service and invalidates the keys the write could
// have changed: today's entry always, the last entry only when a past day
// was edited.
func (q *Queries) Save(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error) {
	saved, err := q.serv.SaveActivity(ctx, uid, date, content)
	if err != nil {
		return nil, err
	}
	q.Invalidate(todayKey(uid))
	if date.Before(entity.Midnight(q.now(), q.loc)) {
		q.Invalidate(lastKey(uid))
	}
	return saved, nil
}

func (q *Queries) Invalidate(key string) {
	q.mu.Lock()
	delete(q.entries, key)
	q.mu.Unlock()
}

// Forget drops every memoized entry for uid, used on sign-out.
func (q *Queries) Forget(uid uuid.UUID) {
	q.Invalidate(todayKey(uid))
	q.Invalidate(lastKey(uid))
}

func (q *Queries) get(ctx context.Context, key string, fetch func(ctx context.Context) (*entity.Activity, error)) (*entity.Activity, error) {
	q.mu.Lock()
	entry, ok := q.entries[key]
	q.mu.Unlock()

	if ok {
		if q.now().Sub(entry.fetchedAt) < q.staleAfter {
			return entry.value, nil
		}
		// serve stale, revalidate behind the caller's back
		q.spawn(func() {
			value, err := fetch(context.Background())
			if err != nil {
				return
			}
			q.store(key, value)
		})
		return entry.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	q.store(key, value)
	return value, nil
}

func (q *Queries) store(key string, value *entity.Activity) {
	q.mu.Lock()
	q.entries[key] = cacheEntry{value: value, fetchedAt: q.now()}
	q.mu.Unlock()
}
