package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pavelgs/walletpay/internal/config"
	lg "github.com/pavelgs/walletpay/internal/infra/log"
	"github.com/pavelgs/walletpay/internal/migrate"
	"github.com/pavelgs/walletpay/internal/repo/postgres"
	"github.com/pavelgs/walletpay/internal/repo/rediscache"
	transport "github.com/pavelgs/walletpay/internal/transport/http"
	"github.com/pavelgs/walletpay/internal/transport/http/middleware"
	"github.com/pavelgs/walletpay/internal/wallet/jwt"
	"github.com/pavelgs/walletpay/internal/wallet/password"
	"github.com/pavelgs/walletpay/internal/wallet/service"
)

func main() {
	logger := lg.Must(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(gormPostgres.Open(cfg.DatabaseDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	store := postgres.NewStore(db)
	walletCache := rediscache.NewWalletCache(store, redisCli, cfg.WalletCacheTTL, logger)

	issuer, err := jwt.NewHMACIssuer(cfg)
	if err != nil {
		logger.Fatal("failed to init token issuer", zap.Error(err))
	}

	authSvc := service.NewAuthService(store, password.NewArgon2Hasher(), issuer, validator.New())
	walletSvc := service.NewWalletService(walletCache)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitPerIP(50, 100, 10_000, time.Hour))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: cfg.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	transport.RegisterRoutes(router, transport.NewHandler(authSvc, walletSvc, cfg, logger))

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		logger.Error("server terminated", zap.Error(err))
	}
}
