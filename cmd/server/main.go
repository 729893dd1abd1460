package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/config"
	"github.com/iliyamo/inn-reservation/internal/database"
	"github.com/iliyamo/inn-reservation/internal/handler"
	"github.com/iliyamo/inn-reservation/internal/logging"
	"github.com/iliyamo/inn-reservation/internal/middleware"
	"github.com/iliyamo/inn-reservation/internal/queue"
	"github.com/iliyamo/inn-reservation/internal/repository"
	"github.com/iliyamo/inn-reservation/internal/router"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	bookingCfg := config.LoadBookingConfig()
	eventsCfg := config.LoadEventsConfig()

	log, logCloser := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		JSON:  cfg.Env == "prod",
	})
	defer logCloser.Close()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	switch {
	case err != nil:
		log.WithError(err).Warn("redis unavailable: rate limiting and response cache disabled")
	case rdb == nil:
		log.Info("redis disabled")
	default:
		defer rdb.Close()
	}

	var events booking.EventPublisher
	if eventsCfg.Enabled {
		events = queue.NewPublisher(eventsCfg.URL, eventsCfg.Queue, log)
	}

	svc := booking.NewService(booking.Options{
		Rooms:        repository.NewRoomRepo(db),
		Reservations: repository.NewReservationRepo(db),
		Payments:     repository.NewPaymentRepo(db),
		Customers:    repository.NewCustomerRepo(db),
		Locker:       newLocker(bookingCfg, rdb, db, log),
		Events:       events,
		Location:     cfg.Location(),
		HoldWindow:   bookingCfg.HoldWindow,
		CancelWindow: bookingCfg.CancelWindow,
		Logger:       log,
	})

	cacheCfg := config.LoadCacheConfig()
	if bookingCfg.SweepEnabled {
		sweeper := booking.NewSweeper(svc, bookingCfg.SweepInterval, log)
		if cacheCfg.Enabled && rdb != nil {
			sweeper.OnCheckout(func(ctx context.Context, _ int64) {
				if _, err := middleware.FlushCache(ctx, rdb, cacheCfg.Prefix); err != nil {
					log.WithError(err).Warn("cache flush after auto-checkout failed")
				}
			})
		}
		go sweeper.Run(ctx)
	}
	if eventsCfg.ConsumerEnabled {
		audit := &lumberjack.Logger{
			Filename:   filepath.Join(eventsCfg.LogDir, "booking.log"),
			MaxSize:    10,
			MaxBackups: 10,
			LocalTime:  true,
		}
		defer audit.Close()
		go func() {
			if err := queue.NewConsumer(eventsCfg.URL, eventsCfg.Queue, audit, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("event consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(requestLogger(log)))

	router.RegisterRoutes(e, router.Handlers{
		Health:    handler.NewHealthHandler(db, rdb != nil, eventsCfg.Enabled),
		Bookings:  handler.NewBookingHandler(svc, log),
		Rooms:     handler.NewRoomHandler(svc),
		Payments:  handler.NewPaymentHandler(svc),
		Dashboard: handler.NewDashboardHandler(svc),
		Customers: handler.NewCustomerHandler(svc),
	}, router.Middleware{
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:      middleware.NewRedisCache(cacheCfg, rdb, log),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newLocker picks the admission lock backend.  Redis falls back to MySQL
// named locks when Redis is not reachable.
func newLocker(cfg config.BookingConfig, rdb *redis.Client, db *sql.DB, log *logrus.Logger) booking.Locker {
	backend := cfg.LockBackend
	if backend == config.LockBackendRedis && rdb == nil {
		backend = config.LockBackendMySQL
	}
	log.WithField("backend", backend).Info("room lock backend")
	switch backend {
	case config.LockBackendRedis:
		return booking.NewRedisLocker(rdb, "", cfg.LockTTL, cfg.LockWait)
	case config.LockBackendMySQL:
		return booking.NewMySQLLocker(db, "", cfg.LockWait)
	default:
		return booking.NewLocalLocker(cfg.LockWait)
	}
}

func requestLogger(log *logrus.Logger) echomw.RequestLoggerConfig {
	return echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
				"ip":      v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}
}
