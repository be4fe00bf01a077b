package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/journal/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type ActivityServiceI interface {
	// Activities of uid on the calendar day of date, offline-tolerant
	GetActivitiesForDay(ctx context.Context, uid uuid.UUID, date time.Time) ([]entity.Activity, error)
	// Upsert-or-delete keyed on (uid, day of date); nil activity on delete/no-op
	SaveActivity(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error)
	// Most recent activity strictly before the local midnight of reference
	GetMostRecentActivityBefore(ctx context.Context, uid uuid.UUID, reference time.Time) (*entity.Activity, error)
	// Every non-empty activity of uid
	GetAllActivitiesForUser(ctx context.Context, uid uuid.UUID) ([]entity.Activity, error)
}

// OfflineCacheI is the read-fallback snapshot the activity service degrades
// to when the store is unreachable.
type OfflineCacheI interface {
	Refresh(ctx context.Context, uid uuid.UUID)
	Snapshot(uid uuid.UUID) []entity.Activity
	Clear(uid uuid.UUID)
}

// ConnectivityProbe answers whether the remote store is worth trying.
// Injected so offline behavior is testable without touching the network.
type ConnectivityProbe interface {
	Online() bool
}

// AlwaysOnline is the default probe for deployments without a connectivity
// signal; store errors still degrade reads to the cache.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }
