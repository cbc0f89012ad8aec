package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/event_bus"
	"github.com/libradesk/libradesk/internal/utils"
	"github.com/libradesk/libradesk/pkg/branch"
	"github.com/libradesk/libradesk/pkg/timing"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	BranchRepo    branch.Repository
	BranchService *branch.ServiceImpl
	BranchHandler *branch.Handler

	TimingRepo     timing.Repository
	TimingService  *timing.ServiceImpl
	TimingRegistry *timing.Registry
	TimingHandler  *timing.Handler

	Health *HealthHandler
}

// BuildDependencies initializes and wires all application services and handlers.
// rdb is nil when the redis cache is disabled.
func BuildDependencies(db *pgxpool.Pool, rdb *redis.Client, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.BranchRepo = branch.NewRepo(db)
	deps.BranchService = branch.NewService(deps.BranchRepo, deps.EventBus)
	deps.BranchHandler = branch.NewHandler(deps.BranchService)

	deps.TimingRepo = timing.NewRepo(db)
	deps.TimingService = timing.NewService(deps.TimingRepo, deps.BranchService, deps.EventBus, cfg.Timings.TransactionalSave)
	deps.TimingRegistry = timing.NewRegistry(deps.TimingService, deps.BranchService, deps.Clock, cacheFactory(rdb, cfg.Redis), deps.EventBus).
		WithSessionLimits(cfg.Timings.MaxSessions, time.Duration(cfg.Timings.SessionIdleMinutes)*time.Minute)
	deps.TimingHandler = timing.NewHandler(deps.TimingRegistry, deps.TimingService)

	if cfg.Metrics.Enabled {
		timing.RegisterMetrics(deps.EventBus)
	}

	checks := []HealthCheck{{Name: "database", Ping: db.Ping}}
	if rdb != nil {
		checks = append(checks, HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	deps.Health = NewHealthHandler(checks...)

	return deps
}

func cacheFactory(rdb *redis.Client, cfg config.Redis) timing.CacheFactory {
	if rdb == nil {
		return func(string) timing.Cache { return timing.NewMemoryCache() }
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	return func(session string) timing.Cache {
		return timing.NewRedisCache(rdb, session, ttl)
	}
}
