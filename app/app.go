package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lendinglab/lending-service/config"
	"github.com/lendinglab/lending-service/internal/handler"
	"github.com/lendinglab/lending-service/internal/idempotency"
	"github.com/lendinglab/lending-service/internal/repository"
	"github.com/lendinglab/lending-service/internal/server"
	"github.com/lendinglab/lending-service/internal/service"
	"github.com/lendinglab/lending-service/migrations"
	"github.com/lendinglab/lending-service/pkg/kafka"
	"github.com/lendinglab/lending-service/pkg/logger"
	"github.com/lendinglab/lending-service/pkg/postgres"
)

const (
	fineSweepInterval   = time.Hour
	noticeSweepInterval = 30 * time.Minute
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "lending")
	features := cfg.Features.Effective()

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo %v", err)
	}

	var store idempotency.Store = idempotency.NewMemoryStore()
	if features.IdempotencyEnabled {
		store = idempotency.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}
	cache := idempotency.NewCache(store, features.IdempotencyEnabled, log)

	dispatcher := service.NewNopDispatcher()
	audit := service.NewNopRecorder()
	if features.NotificationsEnabled || features.AuditLoggingEnabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer %v", err)
		}
		defer producer.Close()
		if features.NotificationsEnabled {
			dispatcher = service.NewKafkaDispatcher(producer)
		}
		if features.AuditLoggingEnabled {
			audit = service.NewKafkaRecorder(producer, log)
		}
	}

	svc := service.NewService(repo, cache, dispatcher, audit, features, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	g, jobsCtx := errgroup.WithContext(jobsCtx)
	if features.BackgroundJobsEnabled {
		fineSweep := func(ctx context.Context) error {
			n, err := svc.SweepFines(ctx)
			if err == nil && n > 0 {
				log.Info("fine sweep", zap.Int("created", n))
			}
			return err
		}
		g.Go(func() error {
			return runSweep(jobsCtx, fineSweepInterval, fineSweep, log.Named("fine-sweep"))
		})
		g.Go(func() error {
			return runSweep(jobsCtx, noticeSweepInterval, svc.SweepDueNotifications, log.Named("notice-sweep"))
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	stopJobs()
	_ = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}

// runSweep fires fn on a ticker until ctx ends. Sweep errors are logged,
// never fatal: the next tick retries.
func runSweep(ctx context.Context, interval time.Duration, fn func(context.Context) error, log *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Warn("sweep run", zap.Error(err))
			}
		}
	}
}
