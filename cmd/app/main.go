package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"questboard/internal/cache"
	"questboard/internal/config"
	"questboard/internal/db"
	httpServer "questboard/internal/http"
	"questboard/internal/http/handlers"
	"questboard/internal/http/middleware"
	"questboard/internal/leveling"
	"questboard/internal/logger"
	"questboard/internal/metrics"
	"questboard/internal/quest"
	"questboard/internal/repository"
	"questboard/internal/repository/memory"
	"questboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	if err := run(); err != nil {
		logger.Fatal("app failed", "error", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Инициализация структурированного логгера
	logger.Init(cfg.LogLevel, cfg.LogFormat == "json")
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taxonomy, err := loadTaxonomy(cfg.QuestTaxonomyFile)
	if err != nil {
		return err
	}
	log.Info("quest taxonomy loaded", "version", taxonomy.Version, "types", len(taxonomy.Types()))

	repo, closeRepo, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	// без Redis дедупликация и лимиты работают в пределах процесса
	var guard cache.DeliveryGuard = cache.NewMemoryDeliveryGuard(cfg.WebhookDedupeTTL)
	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, using in-process dedupe", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rdb.Close()
			guard = cache.NewRedisDeliveryGuard(rdb, cfg.WebhookDedupeTTL)
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
			log.Info("redis connected", "addr", cfg.RedisAddr)
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	identity, err := service.NewCachedIdentity(
		service.NewStoreIdentity(repo.Stores().Users()), cfg.IdentityCacheSize, cfg.IdentityCacheTTL)
	if err != nil {
		return err
	}
	normalizer := service.NewNormalizer(taxonomy, identity, service.WithPerCommitXP(cfg.CommitXPPerCommit))
	if cfg.CommitXPPerCommit {
		log.Warn("COMMIT_XP_PER_COMMIT is deprecated: push xp scales with commit count")
	}
	if cfg.GithubWebhookSecret == "" {
		log.Warn("GITHUB_WEBHOOK_SECRET not set - webhook signatures are not verified")
	}

	quests := service.NewQuestService(repo, normalizer, m)
	audit := service.NewAuditService(repo.Stores().Audit())
	h := &handlers.Handler{
		Webhooks: service.NewWebhookService(cfg.GithubWebhookSecret, normalizer, quests, guard, audit, m),
		Quests:   quests,
		Leveling: service.NewLevelingService(repo),
		Rewards:  service.NewRewardService(repo, m),
		Profiles: service.NewProfileService(repo, identity),
		Audit:    audit,
		Taxonomy: taxonomy,
	}

	r := gin.Default()
	httpServer.RegisterRoutes(r, h, httpServer.RouterConfig{
		Version:   Version,
		JWTSecret: cfg.JWTSecret,
		Limiter:   limiter,
		Metrics:   m,
		Gatherer:  prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", "port", cfg.AppPort, "version", Version, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

func loadTaxonomy(path string) (*quest.Taxonomy, error) {
	if path == "" {
		return quest.DefaultTaxonomy(), nil
	}
	return quest.LoadTaxonomy(path)
}

// openStorage подключает Postgres с миграциями или хранилище в памяти
func openStorage(ctx context.Context, cfg *config.Config) (repository.Manager, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage: data is lost on restart")
		return memory.New(leveling.DefaultLevels()), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewPostgresManager(pool), pool.Close, nil
}

func init() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
