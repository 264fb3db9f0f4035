package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"armory/docs"
	"armory/internal/auth"
	"armory/internal/cache"
	"armory/internal/config"
	"armory/internal/db"
	"armory/internal/events"
	"armory/internal/handler"
	"armory/internal/logger"
	"armory/internal/repository"
	"armory/internal/router"
	"armory/internal/service"
)

// @title Armory Inventory API
// @version 1.0
// @description Equipment checkout service: QR scans withdraw and return items, every transition is logged.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.NewDefault("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := logger.NewDefault(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	gormDB, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, refresh tokens will not persist")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("event publishing disabled")
		} else {
			publisher = amqpPublisher
			log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing inventory events")
		}
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	equipmentRepo := repository.NewEquipmentRepository(gormDB)
	logRepo := repository.NewInventoryLogRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	log.Debug().Dur("access_ttl", jwtService.AccessTTL()).Msg("jwt configured")

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, log)
	userService := service.NewUserService(userRepo, cacheClient)
	equipmentService := service.NewEquipmentService(equipmentRepo)
	inventoryService := service.NewInventoryService(txManager, publisher, log)
	logService := service.NewLogService(logRepo)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		log,
		jwtService,
		tokenStore,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewInventoryHandler(inventoryService, equipmentService),
		handler.NewLogHandler(logService),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Info().Str("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Msg("swagger documentation available")

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
