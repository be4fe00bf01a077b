package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/journal/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates user's info
	Update(ctx context.Context, user *entity.User) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

// ActivitiesRepositoryI is the thin client over the remote activities table.
// It translates day-bounded and recency queries into filter/sort/limit SQL
// and carries no business logic; every failure is a StoreError.
type ActivitiesRepositoryI interface {
	// Activities of uid with date inside [start, end)
	GetByDayRange(ctx context.Context, uid uuid.UUID, start, end time.Time) ([]entity.Activity, error)
	// Most recent activity of uid strictly before cutoff, nil when none
	GetMostRecentBefore(ctx context.Context, uid uuid.UUID, cutoff time.Time) (*entity.Activity, error)
	// Every activity owned by uid
	GetAllByUser(ctx context.Context, uid uuid.UUID) ([]entity.Activity, error)
	// Inserts a new row, id assigned by the store
	Insert(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error)
	// Replaces content of the row with id
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*entity.Activity, error)
	// Removes the row with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
