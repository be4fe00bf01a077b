package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/journal/internal/error_values"
	"github.com/limbo/journal/pkg/cleanup"
	"github.com/limbo/journal/pkg/entity"
)

type ActivitiesRepository struct {
	conn PgConnection
}

func NewActivitiesRepo(cfg DBConfig) *ActivitiesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for activitiesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing activities pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &ActivitiesRepository{
		conn: pool,
	}
}

func NewActivitiesRepoWithConn(conn PgConnection) *ActivitiesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	return &ActivitiesRepository{
		conn: conn,
	}
}

func (ar *ActivitiesRepository) GetByDayRange(ctx context.Context, uid uuid.UUID, start, end time.Time) ([]entity.Activity, error) {
	rows, err := ar.conn.Query(
		ctx,
		`SELECT id, user_id, date, content FROM activities WHERE user_id = $1 AND date >= $2 AND date < $3;`,
		uid,
		start,
		end,
	)
	if err != nil {
		return nil, errorvalues.NewStoreError("day range query", err)
	}
	return scanActivities(rows)
}

func (ar *ActivitiesRepository) GetMostRecentBefore(ctx context.Context, uid uuid.UUID, cutoff time.Time) (*entity.Activity, error) {
	row := ar.conn.QueryRow(
		ctx,
		`SELECT id, user_id, date, content FROM activities WHERE user_id = $1 AND date < $2 ORDER BY date DESC LIMIT 1;`,
		uid,
		cutoff,
	)
	var activity entity.Activity
	if err := row.Scan(&activity.ID, &activity.UserID, &activity.Date, &activity.Content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errorvalues.NewStoreError("recency query", err)
	}
	return &activity, nil
}

func (ar *ActivitiesRepository) GetAllByUser(ctx context.Context, uid uuid.UUID) ([]entity.Activity, error) {
	rows, err := ar.conn.Query(
		ctx,
		`SELECT id, user_id, date, content FROM activities WHERE user_id = $1;`,
		uid,
	)
	if err != nil {
		return nil, errorvalues.NewStoreError("fetch all query", err)
	}
	return scanActivities(rows)
}

func (ar *ActivitiesRepository) Insert(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error) {
	row := ar.conn.QueryRow(
		ctx,
		`INSERT INTO activities (user_id, date, content) VALUES ($1, $2, $3) RETURNING id, user_id, date, content;`,
		uid,
		date,
		content,
	)
	var activity entity.Activity
	if err := row.Scan(&activity.ID, &activity.UserID, &activity.Date, &activity.Content); err != nil {
		return nil, errorvalues.NewStoreError("insert", err)
	}
	return &activity, nil
}

func (ar *ActivitiesRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*entity.Activity, error) {
	row := ar.conn.QueryRow(
		ctx,
		`UPDATE activities SET content = $1 WHERE id = $2 RETURNING id, user_id, date, content;`,
		content,
		id,
	)
	var activity entity.Activity
	if err := row.Scan(&activity.ID, &activity.UserID, &activity.Date, &activity.Content); err != nil {
		return nil, errorvalues.NewStoreError("update", err)
	}
	return &activity, nil
}

func (ar *ActivitiesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := ar.conn.Exec(ctx, `DELETE FROM activities WHERE id = $1;`, id)
	if err != nil {
		return errorvalues.NewStoreError("delete", err)
	}
	return nil
}

func scanActivities(rows pgx.Rows) ([]entity.Activity, error) {
	result := make([]entity.Activity, 0, 2)
	for rows.Next() {
		activity := entity.Activity{}
		err := rows.Scan(&activity.ID, &activity.UserID, &activity.Date, &activity.Content)
		if err != nil {
			return nil, errorvalues.NewStoreError("activity row parsing", err)
		}
		result = append(result, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, errorvalues.NewStoreError("activity rows", err)
	}
	return result, nil
}

// Ping reports store reachability, used by the connectivity probe.
func (ar *ActivitiesRepository) Ping(ctx context.Context) error {
	return ar.conn.Ping(ctx)
}
