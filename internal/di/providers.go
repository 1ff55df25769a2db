package di

import (
	"context"
	"fmt"
	"time"

	"Heliox/internal/domain/repository"
	"Heliox/internal/handler/api"
	internalrepo "Heliox/internal/repository"
	"Heliox/internal/service/phases"
	"Heliox/internal/usecase"
	"Heliox/pkg/cache"
	pkgch "Heliox/pkg/clickhouse"
	"Heliox/pkg/config"
	xhttp "Heliox/pkg/http"
	pkgkafka "Heliox/pkg/kafka"
	"Heliox/pkg/logger"
	"Heliox/pkg/metrics"
	"Heliox/pkg/server"
)

// Stores bundles the persistence backend selected by configuration. The
// ClickHouse client is nil for the memory backend.
type Stores struct {
	Runs   repository.RunStore
	Events repository.EventStore
	CH     *pkgch.Client
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStores creates the run and event stores for the configured backend.
func ProvideStores(cfg *config.Config) (*Stores, error) {
	switch cfg.Storage.Backend {
	case "memory":
		mem := internalrepo.NewMemoryStore()
		return &Stores{Runs: mem, Events: mem}, nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database, "runs", "run_events")); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}

		store := internalrepo.NewSQLStore(client.DB(),
			cfg.ClickHouse.Database+".runs",
			cfg.ClickHouse.Database+".run_events",
		)
		return &Stores{Runs: store, Events: store, CH: client}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Storage.Backend)
	}
}

// ProvideRunStore extracts the run store from the backend bundle.
func ProvideRunStore(s *Stores) repository.RunStore { return s.Runs }

// ProvideEventStore extracts the event store from the backend bundle.
func ProvideEventStore(s *Stores) repository.EventStore { return s.Events }

// ProvideClickHouseClient extracts the ClickHouse client, nil for memory.
func ProvideClickHouseClient(s *Stores) *pkgch.Client { return s.CH }

// ProvideCache creates the summary cache for the configured backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis", "layered":
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return cache.NewLayeredCache(c), nil
		}
		return c, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// ProvidePublisher creates the Kafka event mirror, nil when disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideRegistry creates the run registry use case.
func ProvideRegistry(runs repository.RunStore, m repository.Metrics, l *logger.Logger) *usecase.Registry {
	return usecase.NewRegistry(runs, m, l)
}

// ProvideLedger creates the event ledger use case.
func ProvideLedger(events repository.EventStore, pub repository.Publisher, m repository.Metrics, l *logger.Logger) *usecase.Ledger {
	return usecase.NewLedger(events, pub, m, l)
}

// ProvidePhases creates the pipeline phase implementations in execution order.
func ProvidePhases() []usecase.Phase {
	return []usecase.Phase{
		phases.NewArchitect(),
		phases.NewSynth(),
		phases.NewBacktest(),
		phases.NewPack(),
	}
}

// ProvideOrchestrator creates the pipeline orchestrator.
func ProvideOrchestrator(
	registry *usecase.Registry,
	ledger *usecase.Ledger,
	phaseList []usecase.Phase,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) (*usecase.Orchestrator, error) {
	return usecase.NewOrchestrator(registry, ledger, phaseList, m, l, cfg.Orchestrator.PipelineTimeout)
}

// ProvideHandler creates the HTTP handler for the run API.
func ProvideHandler(
	l *logger.Logger,
	registry *usecase.Registry,
	ledger *usecase.Ledger,
	orchestrator *usecase.Orchestrator,
	cacheSvc cache.Service,
) xhttp.Handler {
	return api.NewRunsHandler(l, registry, ledger, orchestrator, cacheSvc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler xhttp.Handler,
	orchestrator *usecase.Orchestrator,
	pub repository.Publisher,
	chClient *pkgch.Client,
) *server.App {
	// Aggregate error logs onto Kafka when a producer is available.
	if kp, ok := pub.(*internalrepo.KafkaPublisher); ok {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".error-logs",
			Publisher:      kp,
		})
	}
	return server.New(cfg, l, handler, orchestrator, pub, chClient)
}
