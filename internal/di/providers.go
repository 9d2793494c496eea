package di

import (
	"context"
	"fmt"
	"time"

	"QuantKit/internal/domain/repository"
	"QuantKit/internal/handler/api"
	internalrepo "QuantKit/internal/repository"
	"QuantKit/internal/schema"
	"QuantKit/internal/usecase"
	"QuantKit/pkg/cache"
	pkgch "QuantKit/pkg/clickhouse"
	"QuantKit/pkg/config"
	xhttp "QuantKit/pkg/http"
	pkgkafka "QuantKit/pkg/kafka"
	applogger "QuantKit/pkg/logger"
	"QuantKit/pkg/metrics"
	"QuantKit/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideRegistry creates the schema registry with built-in schemas.
func ProvideRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	if err := schema.RegisterBuiltins(reg); err != nil {
		return nil, fmt.Errorf("register builtins: %w", err)
	}
	return reg, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithQueryTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".bars_1d (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, volume Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS " + db + ".bars_1m (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, volume Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideBarStore creates the ClickHouse bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.BarStore {
	store := internalrepo.NewCHBarStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the configured cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(
			cache.WithAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		)
	default:
		maxSize := cfg.Cache.MaxSize
		if maxSize <= 0 {
			maxSize = 1000
		}
		return cache.NewMemoryCache(cache.WithMaxSize(maxSize)), nil
	}
}

// ProvideKafkaReader creates the tick replay reader when brokers are
// configured. Without brokers, tick replay is disabled.
func ProvideKafkaReader(cfg *config.Config) (*pkgkafka.Reader, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		return nil, nil
	}
	opts := []pkgkafka.ReaderOption{
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithPartition(cfg.Kafka.Partition),
	}
	if cfg.Kafka.MinBytes > 0 || cfg.Kafka.MaxBytes > 0 {
		opts = append(opts, pkgkafka.WithFetch(cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes))
	}
	if cfg.Kafka.MaxMessages > 0 {
		opts = append(opts, pkgkafka.WithMaxMessages(cfg.Kafka.MaxMessages))
	}
	if cfg.Kafka.ReadTimeout > 0 {
		opts = append(opts, pkgkafka.WithReadTimeout(cfg.Kafka.ReadTimeout))
	}
	return pkgkafka.NewReader(opts...)
}

// ProvideSeriesUseCase creates the bar series use case.
func ProvideSeriesUseCase(
	store repository.BarStore,
	reg *schema.Registry,
	c cache.Service,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SeriesUseCase {
	return usecase.NewSeriesUseCase(store, reg, c, m, cfg.Cache.SeriesTTL)
}

// ProvideTicksUseCase creates the tick replay use case.
func ProvideTicksUseCase(reg *schema.Registry, reader *pkgkafka.Reader, m repository.Metrics) *usecase.TicksUseCase {
	return usecase.NewTicksUseCase(reg, reader, m)
}

// ProvideSyntheticUseCase creates the synthetic path use case.
func ProvideSyntheticUseCase(reg *schema.Registry, m repository.Metrics) *usecase.SyntheticUseCase {
	return usecase.NewSyntheticUseCase(reg, m)
}

// ProvideSignificanceUseCase creates the permutation test use case.
func ProvideSignificanceUseCase(
	series *usecase.SeriesUseCase,
	c cache.Service,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SignificanceUseCase {
	return usecase.NewSignificanceUseCase(series, c, m, cfg.Cache.TestTTL)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	l *applogger.Logger,
	series *usecase.SeriesUseCase,
	ticks *usecase.TicksUseCase,
	synthetic *usecase.SyntheticUseCase,
	significance *usecase.SignificanceUseCase,
) xhttp.Handler {
	return api.NewQuantEchoHandler(l, series, ticks, synthetic, significance)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, l, handler, chClient, cacheSvc)
}
