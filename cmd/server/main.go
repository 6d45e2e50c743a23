package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/user-service/api/handler"
	"github.com/fastygo/user-service/internal/config"
	"github.com/fastygo/user-service/internal/infrastructure/audit"
	"github.com/fastygo/user-service/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/user-service/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/user-service/internal/infrastructure/redis"
	"github.com/fastygo/user-service/internal/middleware"
	"github.com/fastygo/user-service/internal/router"
	"github.com/fastygo/user-service/internal/services"
	"github.com/fastygo/user-service/internal/services/lifecycle"
	"github.com/fastygo/user-service/pkg/httpcontext"
	"github.com/fastygo/user-service/pkg/logger"
	"github.com/fastygo/user-service/repository/postgres"
	redisRepo "github.com/fastygo/user-service/repository/redis"
	cardUC "github.com/fastygo/user-service/usecase/card"
	userUC "github.com/fastygo/user-service/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	auditStore, err := audit.Open(cfg.Audit.Path, "audit")
	if err != nil {
		zapLogger.Fatal("failed to open audit store", zap.Error(err))
	}
	manager.Register("audit", func(ctx context.Context) error {
		return auditStore.Close()
	})

	mon := monitor.New(pool, redisClient, auditStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	auditTrail := services.NewAuditTrail(auditStore, cfg.Audit.Retention, zapLogger)
	if err := auditTrail.StartRetention(); err != nil {
		zapLogger.Fatal("failed to schedule audit retention", zap.Error(err))
	}
	manager.Register("audit_retention", func(ctx context.Context) error {
		auditTrail.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	entityCache := redisRepo.NewEntityCache(redisClient, redisRepo.TTLs{
		User:   cfg.Cache.UserTTL,
		Card:   cfg.Cache.CardTTL,
		Cards:  cfg.Cache.CardsTTL,
		Search: cfg.Cache.SearchTTL,
	}, zapLogger)

	userUseCase := userUC.New(userRepo, cardRepo, entityCache, auditTrail, zapLogger)
	cardUseCase := cardUC.New(cardRepo, userRepo, entityCache, auditTrail, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		User:   apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Card:   apiHandler.NewCardHandler(cardUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	identity := middleware.ResolveIdentity(middleware.IdentityConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		ServiceKey: cfg.Auth.ServiceKey,
	}, zapLogger)
	r := router.New(handlers, identity)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
