package api

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/limbo/journal/pkg/entity"
)

type JWTServiceI interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ActivityQueriesI is the memoized read/write surface the dashboard
// handlers go through.
type ActivityQueriesI interface {
	Today(ctx context.Context, uid uuid.UUID) (*entity.Activity, error)
	Last(ctx context.Context, uid uuid.UUID) (*entity.Activity, error)
	Save(ctx context.Context, uid uuid.UUID, date time.Time, content string) (*entity.Activity, error)
	Forget(uid uuid.UUID)
}
