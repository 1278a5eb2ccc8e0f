package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/internal/config"
	"github.com/mindmap/mindmap-server/internal/database"
	"github.com/mindmap/mindmap-server/internal/oidc"
	"github.com/mindmap/mindmap-server/internal/storage"
	"github.com/mindmap/mindmap-server/internal/tokens"
	"github.com/mindmap/mindmap-server/pkg/logger"
	"github.com/mindmap/mindmap-server/pkg/metrics"
	"github.com/mindmap/mindmap-server/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: backend=%s keycloak=%v redis=%v secret_set=%v",
		cfg.Storage.Backend, cfg.Keycloak.URL != "", cfg.Redis.Host != "", cfg.Secret != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatalf("storage backend %q: %v", cfg.Storage.Backend, err)
	}
	defer closeBackend()

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := newRouter(deps{
		cfg:      cfg,
		source:   config.NewSource(nil, cfg),
		backend:  backend,
		redis:    rdb,
		verifier: buildVerifier(ctx, cfg),
		gatherer: prometheus.DefaultGatherer,
		started:  time.Now(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("mind map service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// openBackend builds the namespace backend named by STORAGE_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case "memory":
		logger.Warnf("using in-memory storage; mind maps are lost on restart")
		return storage.NewMemoryResolver(), noop, nil
	case "", "fs":
		fs := afero.NewOsFs()
		if err := fs.MkdirAll(cfg.Storage.DataDir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		return storage.NewFSResolver(fs, cfg.Storage.DataDir), noop, nil
	case "mongo":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		b, err := storage.NewMongoResolver(ctx, col)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return b, closeFn, nil
	case "minio":
		b, err := storage.NewMinIOResolver(cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// connectRedis returns nil when Redis is not configured or unreachable.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Redis.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis at %s", cfg.Redis.Addr())
	return client
}

// buildVerifier prefers Keycloak, then an HS256 shared secret, then the
// insecure claims reader when explicitly allowed.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Keycloak.URL != "" {
		issuer := oidc.KeycloakIssuer(cfg.Keycloak.URL, cfg.Keycloak.Realm)
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err == nil {
			logger.Infof("verifying bearer tokens against %s", issuer)
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.JWT.Secret != "" {
		ver, err := tokens.NewHS256Verifier(cfg.JWT.Secret)
		if err == nil {
			logger.Infof("verifying HS256 bearer tokens with JWT_SECRET")
			return ver
		}
	}
	if cfg.Keycloak.AllowInsecure {
		logger.Warnf("enabling insecure token verifier (ALLOW_INSECURE_TOKEN=true)")
		return oidc.NewInsecureVerifier()
	}
	logger.Warnf("no token verifier configured; every API request will be rejected as unauthenticated")
	return nil
}
