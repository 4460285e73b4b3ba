package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/dinewise/internal/config"
	"github.com/iliyamo/dinewise/internal/database"
	"github.com/iliyamo/dinewise/internal/handler"
	"github.com/iliyamo/dinewise/internal/logging"
	"github.com/iliyamo/dinewise/internal/queue"
	"github.com/iliyamo/dinewise/internal/repository"
	"github.com/iliyamo/dinewise/internal/router"
	"github.com/iliyamo/dinewise/internal/service"
	"github.com/iliyamo/dinewise/internal/utils"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		PoolMin: cfg.DBPoolMin, PoolMax: cfg.DBPoolMax,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
		log.Info("schema applied")
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.WithError(err).Warn("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var events handler.EventPublisher
	if cfg.EventsEnabled {
		pub := service.NewActivityPublisher(cfg.RabbitMQURL, log)
		defer pub.Close()
		events = pub
		go runActivityConsumer(ctx, cfg.RabbitMQURL, log)
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret)
	restaurants := repository.NewRestaurantRepo(db)
	member := handler.NewMemberHandler(restaurants, repository.NewRatingRepo(db), repository.NewReviewRepo(db), events)

	e := echo.New()
	e.HideBanner = true
	router.Use(e, log, config.LoadHTTPConfig())
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Auth:      handler.NewAuthHandler(repository.NewUserRepo(db), tokens, cfg.BcryptCost),
		Public:    handler.NewPublicHandler(restaurants),
		Member:    member,
		Tokens:    tokens,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	log.WithField("env", cfg.Env).Infof("listening on %s", addr)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	// Must finish before the deferred pub.Close.
	if err := member.Drain(shutdownCtx); err != nil {
		log.WithError(err).Warn("activity events still in flight at exit")
	}
}

// runActivityConsumer appends activity events to logs/activity.log until
// ctx is cancelled.
func runActivityConsumer(ctx context.Context, url string, log *logrus.Logger) {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		log.WithError(err).Error("activity-consumer: mkdir logs")
		return
	}
	f, err := os.OpenFile(filepath.Join("logs", "activity.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.WithError(err).Error("activity-consumer: open log file")
		return
	}
	defer f.Close()

	c := &queue.Consumer{URL: url, Out: f, Log: log}
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("activity-consumer stopped")
	}
}
