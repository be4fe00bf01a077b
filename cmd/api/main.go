// @title Daily journal API
// @description API for the markdown daily-activity journal
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"
	"time"

	"github.com/limbo/journal/internal/api"
	"github.com/limbo/journal/internal/cache"
	"github.com/limbo/journal/internal/queries"
	"github.com/limbo/journal/internal/repository"
	"github.com/limbo/journal/internal/service"
	"github.com/limbo/journal/pkg/cleanup"
	"github.com/limbo/journal/pkg/config"
	jwtservice "github.com/limbo/journal/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	loc, err := time.LoadLocation(cfg.GetStringOrDefault("JOURNAL_TIMEZONE", "Local"))
	if err != nil {
		log.Fatal("loading timezone error: " + err.Error())
	}

	activitiesRepo := repository.NewActivitiesRepo(&dbCfg)
	offlineCache := cache.New(cfg.GetStringOrDefault("OFFLINE_CACHE_PATH", "./journal_cache.db"), activitiesRepo)
	probe := service.NewPingProbe(activitiesRepo.Ping, 15*time.Second)

	userService := service.NewUserService(repository.NewUsersRepo(&dbCfg))
	activityService := service.NewActivityService(activitiesRepo, offlineCache, probe, loc)
	activityQueries := queries.New(activityService, loc)

	serv := api.New(&api.ServicesList{
		UserService:     userService,
		ActivityService: activityService,
		ActivityQueries: activityQueries,
		OfflineCache:    offlineCache,
		JwtService:      jwtservice.New(cfg.GetString("JWT_SECRET")),
		Location:        loc,
	})
	err = serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
