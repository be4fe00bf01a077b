package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/journal/internal/service"
)

type Server struct {
	mx              *chi.Mux
	userService     service.UserServiceI
	activityService service.ActivityServiceI
	activityQueries ActivityQueriesI
	offlineCache    service.OfflineCacheI
	jwtService      JWTServiceI
	loc             *time.Location
}

type ServicesList struct {
	UserService     service.UserServiceI
	ActivityService service.ActivityServiceI
	ActivityQueries ActivityQueriesI
	OfflineCache    service.OfflineCacheI
	JwtService      JWTServiceI
	Location        *time.Location
}

func New(servicesOptions *ServicesList) *Server {
	loc := servicesOptions.Location
	if loc == nil {
		loc = time.Local
	}
	return &Server{
		mx:              chi.NewMux(),
		userService:     servicesOptions.UserService,
		activityService: servicesOptions.ActivityService,
		activityQueries: servicesOptions.ActivityQueries,
		offlineCache:    servicesOptions.OfflineCache,
		jwtService:      servicesOptions.JwtService,
		loc:             loc,
	}
}

func (s *Server) RegisterRoutes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Post("/auth/logout", s.Logout)
			r.Delete("/auth/account", s.DeleteAccount)
			r.Get("/activities/today", s.GetTodayActivity)
			r.Get("/activities/last", s.GetLastActivity)
			r.Get("/activities/all", s.GetAllActivities)
			r.Get("/activities", s.GetActivitiesForDay)
			r.Put("/activities", s.SaveActivity)
			r.Get("/stats", s.GetStats)
		})
	})
}

func (s *Server) Run(address string) error {
	s.RegisterRoutes()
	log.Println("Server listening on " + address)
	return http.ListenAndServe(address, s.mx)
}

// Handler exposes the routed mux for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.mx
}
