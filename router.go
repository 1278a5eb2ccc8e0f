package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/handlers"
	"github.com/mindmap/mindmap-server/internal/config"
	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/internal/mindmap/handler"
	"github.com/mindmap/mindmap-server/internal/mindmap/repository"
	"github.com/mindmap/mindmap-server/internal/mindmap/service"
	"github.com/mindmap/mindmap-server/internal/socket"
	"github.com/mindmap/mindmap-server/internal/storage"
	"github.com/mindmap/mindmap-server/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// deps is everything the router needs; nil Redis and nil Verifier are allowed.
type deps struct {
	cfg      *config.Config
	source   config.Source
	backend  storage.Backend
	redis    *redis.Client
	verifier middleware.Verifier
	gatherer prometheus.Gatherer
	started  time.Time
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	checks := map[string]handlers.Check{"storage": d.backend.Ping}
	if d.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.redis.Ping(ctx).Err() }
	}
	handlers.RegisterHealth(r, d.started, checks)
	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{})))

	var opts []socket.Option
	if d.redis != nil {
		opts = append(opts, socket.WithRegistry(socket.NewRedisRegistry(d.redis, d.cfg.Socket.TokenTTL)))
	}
	svc := service.New(identity.ContextProvider{},
		repository.NewStore(d.backend),
		socket.NewIssuer(d.source, opts...))

	api := r.Group("/")
	// without a verifier every API call is anonymous and answered with 401
	if d.verifier != nil {
		api.Use(middleware.AuthMiddleware(d.verifier))
	}
	if d.cfg.RateLimit.Enabled {
		if d.cfg.RateLimit.UseRedis && d.redis != nil {
			win := time.Duration(d.cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(d.redis, d.cfg.RateLimit.RPS, d.cfg.RateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimitMiddleware(d.cfg.RateLimit.RPS, d.cfg.RateLimit.Burst))
		}
	}
	handler.RegisterMindMapRoutes(api, svc)
	return r
}
