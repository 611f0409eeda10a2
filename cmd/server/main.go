package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hanssonfredrik/customers/config"
	"github.com/hanssonfredrik/customers/internal/api/rest"
	"github.com/hanssonfredrik/customers/internal/kafka"
	"github.com/hanssonfredrik/customers/internal/kafka/producer"
	"github.com/hanssonfredrik/customers/internal/metrics"
	"github.com/hanssonfredrik/customers/internal/repository"
	"github.com/hanssonfredrik/customers/internal/repository/postgres"
	"github.com/hanssonfredrik/customers/internal/service"
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var log *logger.Logger

func init() {
	// a missing .env file is fine
	_ = godotenv.Load()

	log = logger.New(logger.ParseLevel(os.Getenv("LOG_LEVEL")))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log = logger.New(logger.ParseLevel(cfg.Logging.Level))

	if err := run(cfg); err != nil {
		log.Fatal("%v", err)
	}
	log.Info("Server stopped gracefully")
}

// closer releases a resource on shutdown.
type closer struct {
	name string
	fn   func() error
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].fn(); err != nil {
				log.Warn("Failed to close %s: %v", closers[i].name, err)
			}
		}
	}()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	customerMetrics := metrics.NewCustomerMetrics(promRegistry, log)

	repo, pool, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		closers = append(closers, closer{"database pool", func() error { pool.Close(); return nil }})
	}

	var poolStats metrics.PoolStatter
	if pool != nil {
		poolStats = pool
	}
	systemMetrics := metrics.NewSystemMetrics(promRegistry, poolStats, log)
	systemMetrics.StartRecording(time.Duration(cfg.Metrics.Interval) * time.Second)
	closers = append(closers, closer{"system metrics", func() error { systemMetrics.Stop(); return nil }})

	if cfg.Store.Seed {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		_, err := repository.Seed(seedCtx, repo, time.Now(), log)
		cancel()
		if err != nil {
			return err
		}
	}

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	if closePublisher != nil {
		closers = append(closers, closer{"kafka producer", closePublisher})
	}

	customerService := service.NewCustomerService(repo, publisher, customerMetrics, log.Named("customers"))

	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := rest.SetupRouter(rest.RouterDeps{
		Config:    cfg,
		Log:       log,
		Registry:  promRegistry,
		Customers: customerService,
		Store:     repo,
	})
	server := rest.NewServer(router, cfg, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownDuration())
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-serveErr
}

// storePool is the subset of *pgxpool.Pool the composition root needs.
type storePool interface {
	metrics.PoolStatter
	Close()
}

func openStore(ctx context.Context, cfg *config.Config) (repository.CustomerRepository, storePool, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn("Using the in-memory customer store; data is lost on restart")
		return repository.NewInMemoryCustomerRepository(log.Named("store")), nil, nil
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		pool, err := postgres.NewConnection(connectCtx, cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.EnsureSchema(connectCtx, pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewPostgresCustomerRepository(pool, log.Named("store")), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newPublisher(cfg *config.Config) (service.EventPublisher, func() error, error) {
	kafkaConfig := kafka.NewConfig(cfg.Kafka)
	if !kafkaConfig.Enabled() {
		log.Info("No Kafka brokers configured, change events are disabled")
		return service.NopPublisher{}, nil, nil
	}

	if kafkaConfig.EnsureTopic {
		admin, err := kafka.NewClusterAdmin(kafkaConfig, log)
		if err != nil {
			return nil, nil, err
		}
		err = kafka.EnsureTopics(admin, kafkaConfig, log)
		if closeErr := admin.Close(); closeErr != nil {
			log.Warn("Failed to close kafka cluster admin: %v", closeErr)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	syncProducer, err := kafka.NewSyncProducer(kafkaConfig, log)
	if err != nil {
		return nil, nil, err
	}
	customerProducer := producer.NewCustomerProducer(syncProducer, kafkaConfig, log.Named("events"))
	return customerProducer, customerProducer.Close, nil
}
