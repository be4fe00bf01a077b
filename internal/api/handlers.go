package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/journal/internal/error_values"
	"github.com/limbo/journal/internal/service"
	"github.com/limbo/journal/internal/stats"
	"github.com/limbo/journal/pkg/entity"
	"github.com/limbo/journal/pkg/httputil"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type SaveActivityRequest struct {
	// RFC3339; the calendar day is derived server-side
	Date    string `json:"date"`
	Content string `json:"content"`
}

type ActivitiesForDayResponse struct {
	UserID     string            `json:"uid"`
	Day        string            `json:"day"`
	Activities []entity.Activity `json:"activities"`
}

type GroupedActivitiesResponse struct {
	UserID string                       `json:"uid"`
	Days   map[string][]entity.Activity `json:"days"`
}

type StatsResponse struct {
	entity.ActivityStats
	WeekPresence   []entity.SeriesPoint `json:"week_presence"`
	MonthWordTrend []entity.SeriesPoint `json:"month_word_trend"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("registering error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserExists) {
			logger.Error("registering error: existed user")
			httputil.WriteErrorResponse(w, http.StatusConflict, "user with such name already exists", nil)
			return
		}
		logger.Error("registering error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during registration", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"uid": user.ID.String(),
	})
	logger.Info("successful registration")
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("login error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user with such name doesn't exist", nil)
			return
		case errors.Is(err, errorvalues.ErrWrongCredentials):
			logger.Error("login error: wrong password")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "invalid username or password", nil)
			return
		default:
			logger.Error("login error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during login", nil)
			return
		}
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("login error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"uid":   user.ID.String(),
		"token": token,
	})
	logger.Info("successful login")
}

// Logout drops the user's memoized queries and offline snapshot. The token
// itself stays valid until it expires, the client discards it.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("logout error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	s.activityQueries.Forget(uid)
	s.offlineCache.Clear(uid)
	httputil.WriteNoContent(w)
	logger.Info("signed out")
}

// DeleteAccount removes the user after a password re-check and drops the
// local traces (memoized queries and offline snapshot).
func (s *Server) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("delete account error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req DeleteAccountRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("delete account error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.userService.DeleteAccount(ctx, uid, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrWrongCredentials):
			logger.Error("delete account error: wrong password")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "invalid password", nil)
			return
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("delete account error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
			return
		default:
			logger.Error("delete account error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during account deletion", nil)
			return
		}
	}
	s.activityQueries.Forget(uid)
	s.offlineCache.Clear(uid)
	httputil.WriteNoContent(w)
	logger.Info("account deleted")
}

func (s *Server) GetTodayActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get today activity error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	activity, err := s.activityQueries.Today(ctx, uid)
	if err != nil {
		logger.Error("get today activity error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting today's activity", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"activity": activity})
	logger.Info("today's activity provided")
}

func (s *Server) GetLastActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get last activity error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	activity, err := s.activityQueries.Last(ctx, uid)
	if err != nil {
		logger.Error("get last activity error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting last activity", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"activity": activity})
	logger.Info("last activity provided")
}

func (s *Server) GetActivitiesForDay(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get activities error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	day := time.Now().In(s.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = time.ParseInLocation(entity.DayKeyFormat, raw, s.loc)
		if err != nil {
			logger.Error("get activities error: invalid date param")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	activities, err := s.activityService.GetActivitiesForDay(ctx, uid, day)
	if err != nil {
		logger.Error("get activities error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting activities", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, ActivitiesForDayResponse{
		UserID:     uid.String(),
		Day:        entity.DayKey(day, s.loc),
		Activities: activities,
	})
	logger.Info("day activities provided")
}

func (s *Server) GetAllActivities(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get all activities error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	activities, err := s.activityService.GetAllActivitiesForUser(ctx, uid)
	if err != nil {
		logger.Error("get all activities error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting activities", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GroupedActivitiesResponse{
		UserID: uid.String(),
		Days:   stats.GroupByDay(activities, s.loc),
	})
	logger.Info("grouped activities provided")
}

func (s *Server) SaveActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("save activity error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req SaveActivityRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("save activity error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	date := time.Now().In(s.loc)
	if req.Date != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			logger.Error("save activity error: invalid date in body")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date, expected RFC3339", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	activity, err := s.activityQueries.Save(ctx, uid, date, req.Content)
	if err != nil {
		// a silent write failure would look like data loss, always surface it
		logger.Error("save activity error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while saving activity", nil)
		return
	}
	if activity == nil {
		httputil.WriteNoContent(w)
		logger.Info("activity removed or empty save ignored")
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, activity)
	logger.Info("activity saved")
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get stats error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	activities, err := s.activityService.GetAllActivitiesForUser(ctx, uid)
	if err != nil {
		logger.Error("get stats error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting stats", nil)
		return
	}
	now := time.Now()
	httputil.WriteJSONResponse(w, http.StatusOK, StatsResponse{
		ActivityStats:  stats.Summary(activities, now, s.loc),
		WeekPresence:   stats.PresenceSeries(activities, 7, now, s.loc),
		MonthWordTrend: stats.WordCountSeries(activities, 30, now, s.loc),
	})
	logger.Info("stats provided")
}
