package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/cache"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/database"
	kafkautils "github.com/nimeshabuddhika/gojenga-ledger/pkg/kafka"
	middleware "github.com/nimeshabuddhika/gojenga-ledger/pkg/middlewares"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/configs"
	_ "github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/docs"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/handlers"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const loginLimiterKey = "gojenga:login_rate"

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var rdb *redis.Client
	if !utils.IsEmpty(cfg.RedisAddr) {
		client, closeRedis, err := newRedisClient(ctx, logger, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		rdb = client
		closers = append(closers, closeRedis)
	}

	kv, closeStore, err := newStore(ctx, logger, cfg, rdb)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, closeStore)

	publisher, err := newPublisher(ctx, logger, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, publisher.Close)

	// Repositories
	accountRepo := repositories.NewAccountRepository(kv)
	userRepo := repositories.NewUserRepository(kv)
	portfolioRepo := repositories.NewPortfolioRepository(kv)

	// Services
	credentialService, err := services.NewCredentialService(logger, services.CredentialConfig{
		Secret:          []byte(cfg.JwtSecret),
		Algorithm:       cfg.JwtAlgorithm,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		RenewTokenTTL:   cfg.RenewTokenTTL,
		BcryptCost:      cfg.BcryptCost,
	}, userRepo)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	ledgerService := services.NewLedgerService(logger, services.LedgerConfig{
		RollbackMaxAttempts: cfg.RollbackMaxAttempts,
		RollbackBaseBackoff: cfg.RollbackBaseBackoff,
		RollbackMaxBackoff:  cfg.RollbackMaxBackoff,
	}, accountRepo, portfolioRepo, userRepo, publisher)
	userService := services.NewUserService(logger, credentialService, userRepo)
	portfolioService := services.NewPortfolioService(logger, portfolioRepo)

	limiter := pkg.NewDistributedLimiter(rdb, loginLimiterKey, cfg.LoginRateLimit, cfg.LoginRateBurst, time.Minute, logger)
	auth := middleware.BearerAuth(logger, credentialService)

	r := NewRouter(logger, cfg.AllowedOrigins(), Handlers{
		Base:      handlers.NewBaseHandler(logger, kv),
		Hello:     handlers.NewHelloHandler(),
		Auth:      handlers.NewAuthHandler(logger, credentialService, middleware.RateLimit(logger, limiter)),
		Account:   handlers.NewAccountHandler(logger, ledgerService, auth),
		User:      handlers.NewUserHandler(logger, userService, auth),
		Portfolio: handlers.NewPortfolioHandler(logger, portfolioService, auth),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("ledger_api_wired", zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("events_enabled", !utils.IsEmpty(cfg.KafkaBrokers)), zap.Bool("shared_rate_limit", rdb != nil))
	return srv, cleanup, nil
}

// Handlers groups every route owner mounted by NewRouter.
type Handlers struct {
	Base      *handlers.BaseHandler
	Hello     *handlers.HelloHandler
	Auth      *handlers.AuthHandler
	Account   *handlers.AccountHandler
	User      *handlers.UserHandler
	Portfolio *handlers.PortfolioHandler
}

// NewRouter builds the gin engine; split out so handler tests can mount the same routes.
func NewRouter(logger *zap.Logger, allowedOrigins []string, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(allowedOrigins)))
	r.Use(middleware.TraceID())
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.Base.RegisterRoutes(r)
	h.Hello.RegisterRoutes(r)

	api := r.Group("")
	h.Auth.RegisterRoutes(api)
	h.Account.RegisterRoutes(api)
	h.User.RegisterRoutes(api)
	h.Portfolio.RegisterRoutes(api)

	logger.Debug("routes_registered", zap.Int("count", len(r.Routes())))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", pkg.HeaderIsTest, pkg.HeaderUpdateType, pkg.HeaderTraceId},
		ExposeHeaders: []string{pkg.HeaderTraceId},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// newRedisClient accepts either host:port or a redis:// / rediss:// URL.
func newRedisClient(ctx context.Context, logger *zap.Logger, addr string) (*redis.Client, func(), error) {
	redisCfg := cache.Config{Addr: addr}
	if strings.Contains(addr, "://") {
		host, password, db, err := utils.ParseRedisURL(addr)
		if err != nil {
			return nil, nil, err
		}
		redisCfg = cache.Config{Addr: host, Password: password, DB: db, UseTLS: strings.HasPrefix(addr, "rediss://")}
	}
	return cache.New(ctx, logger, redisCfg)
}

func newStore(ctx context.Context, logger *zap.Logger, cfg *configs.Config, rdb *redis.Client) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case configs.StoreDriverRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("store driver redis needs REDIS_ADDR")
		}
		return store.NewRedisStore(rdb, cfg.RedisKeyPrefix), func() {}, nil
	case configs.StoreDriverPostgres:
		db, disconnect, err := database.New(ctx, logger, database.Config{
			PrimaryDSN:  cfg.PrimaryDbAddr,
			ReplicaDSNs: []string{cfg.ReplicaDbAddr},
			MaxConns:    cfg.MaxDbCons,
			MinConns:    cfg.MinDbCons,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
			disconnect()
			return nil, nil, err
		}
		return store.NewPostgresStore(db), disconnect, nil
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func newPublisher(ctx context.Context, logger *zap.Logger, cfg *configs.Config) (services.LedgerEventPublisher, error) {
	if utils.IsEmpty(cfg.KafkaBrokers) {
		return services.NewNoopLedgerPublisher(logger), nil
	}
	topic := kafkautils.LedgerTopic(cfg.KafkaLedgerTopic, int(cfg.KafkaPartition), cfg.KafkaLedgerRetention)
	return services.NewKafkaLedgerPublisher(ctx, logger, cfg.KafkaBrokers, topic)
}

// OpenStore connects the configured store backend on its own, for tools such as the seeder.
func OpenStore(ctx context.Context, logger *zap.Logger, cfg *configs.Config) (store.Store, func(), error) {
	var rdb *redis.Client
	closeRedis := func() {}
	if cfg.StoreDriver == configs.StoreDriverRedis {
		client, closer, err := newRedisClient(ctx, logger, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		rdb, closeRedis = client, closer
	}
	kv, closeStore, err := newStore(ctx, logger, cfg, rdb)
	if err != nil {
		closeRedis()
		return nil, nil, err
	}
	return kv, func() {
		closeStore()
		closeRedis()
	}, nil
}
