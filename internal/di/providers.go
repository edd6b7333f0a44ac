package di

import (
	"context"
	"fmt"
	"time"

	"NiftyDash/internal/domain/models"
	"NiftyDash/internal/domain/repository"
	domsvc "NiftyDash/internal/domain/service"
	"NiftyDash/internal/handler/api"
	"NiftyDash/internal/middleware"
	internalrepo "NiftyDash/internal/repository"
	"NiftyDash/internal/service/cache"
	"NiftyDash/internal/service/ratelimit"
	"NiftyDash/internal/services/prediction"
	"NiftyDash/internal/state"
	"NiftyDash/internal/usecase"
	pkgch "NiftyDash/pkg/clickhouse"
	"NiftyDash/pkg/config"
	xhttp "NiftyDash/pkg/http"
	pkgkafka "NiftyDash/pkg/kafka"
	"NiftyDash/pkg/logger"
	"NiftyDash/pkg/metrics"
	"NiftyDash/pkg/server"
)

// ProvideLogger creates the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when
// metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New()
}

// ProvideLinksCache prefers Redis and falls back to the in-memory cache when
// Redis is disabled or unreachable.
func ProvideLinksCache(cfg *config.Config, l *logger.Logger) cache.BytesCache {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache()
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unavailable, using in-memory links cache",
			logger.String("addr", cfg.Cache.Redis.Addr),
			logger.Error(err),
		)
		_ = rc.Close()
		return cache.NewTTLCache()
	}
	return rc
}

// ProvideGateway creates the prediction service gateway.
func ProvideGateway(cfg *config.Config, c cache.BytesCache, m repository.Metrics, l *logger.Logger) domsvc.PredictionGateway {
	base := prediction.NewHTTPServiceBase(cfg.Prediction.BaseURL, cfg.Prediction.Timeout)
	return prediction.NewGateway(base,
		prediction.WithLinksCache(c, cfg.Prediction.LinksCacheTTL),
		prediction.WithMetrics(m),
		prediction.WithLogger(l.Named("gateway")),
	)
}

// ProvideStore creates the application state seeded with the configured view.
func ProvideStore(cfg *config.Config, m repository.Metrics, l *logger.Logger) (*state.Store, error) {
	set, err := models.NewIndicatorSet(cfg.Dashboard.Indicators...)
	if err != nil {
		return nil, fmt.Errorf("dashboard indicators: %w", err)
	}
	view := models.DefaultViewState()
	view.PredictionDays = cfg.Dashboard.DefaultDays
	view.ShowIndicators = cfg.Dashboard.ShowIndicators
	view.SelectedIndicators = set

	return state.NewStore(
		state.WithView(view),
		state.WithMetrics(m),
		state.WithLogger(l.Named("state")),
	), nil
}

// ProvideKafkaProducer creates a Kafka producer when the Kafka sink is selected.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Sink.Type != config.SinkKafka {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID(cfg.Kafka.ClientID),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideClickHouseClient creates a ClickHouse client and the forecast table
// when the ClickHouse sink is selected.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Sink.Type != config.SinkClickHouse {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(4, 2, 0),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	stmts, err := pkgch.ForecastSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideForecastSink selects the forecast sink by sink.type. It returns nil
// for "none".
func ProvideForecastSink(cfg *config.Config, producer *pkgkafka.Producer, ch *pkgch.Client) repository.ForecastSink {
	switch cfg.Sink.Type {
	case config.SinkKafka:
		if producer != nil {
			return internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.Topic)
		}
	case config.SinkClickHouse:
		if ch != nil {
			return internalrepo.NewClickHouseForecastArchive(ch.DB(), cfg.ClickHouse.Table)
		}
	}
	return nil
}

// ProvideForecastRecorder creates the forecast recorder use case.
func ProvideForecastRecorder(sink repository.ForecastSink, m repository.Metrics, l *logger.Logger) *usecase.ForecastRecorder {
	return usecase.NewForecastRecorder(sink, m, l.Named("recorder"))
}

// ProvideForecastPipeline puts a validating retry buffer in front of the
// recorder.
func ProvideForecastPipeline(rec *usecase.ForecastRecorder, m repository.Metrics, l *logger.Logger) *middleware.ForecastPipeline {
	return middleware.NewForecastPipeline(rec, m,
		middleware.WithBufferSize(64),
		middleware.WithLogger(l.Named("pipeline")),
	)
}

// ProvideOrchestrator creates the request orchestrator use case.
func ProvideOrchestrator(gw domsvc.PredictionGateway, store *state.Store, pipe *middleware.ForecastPipeline, l *logger.Logger) *usecase.Orchestrator {
	return usecase.NewOrchestrator(gw, store, pipe, l.Named("orchestrator"))
}

// ProvideDashboardHandler creates the dashboard API with its websocket stream
// and, when enabled, rate limited actions.
func ProvideDashboardHandler(cfg *config.Config, l *logger.Logger, orch *usecase.Orchestrator) xhttp.Handler {
	opts := []api.HandlerOption{
		api.WithStream(api.NewDashboardStream(l.Named("stream"), orch.Store(), cfg.Dashboard.WSPingInterval, cfg.Dashboard.SubscriberBuffer)),
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, api.WithActionLimiter(ratelimit.Middleware(ratelimit.Config{
			PerSecond: float64(cfg.RateLimit.RatePerSecond),
			Burst:     cfg.RateLimit.Burst,
		})))
	}
	return api.NewDashboardEchoHandler(l.Named("api"), orch, opts...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, h xhttp.Handler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l.Named("http"), h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.AllowOrigins...),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application and attaches the log collector to the
// Kafka producer when one is configured.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	orch *usecase.Orchestrator,
	srv *xhttp.Server,
	rec *usecase.ForecastRecorder,
	pipe *middleware.ForecastPipeline,
	linksCache cache.BytesCache,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
) *server.App {
	if producer != nil && cfg.Logging.CollectorTopic != "" {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Logging.FlushInterval,
			CountThreshold: 100,
			Topic:          cfg.Logging.CollectorTopic,
			Publisher:      producer,
		})
	}

	app := server.New(cfg, l, orch, srv, pipe, rec)
	if closer, ok := linksCache.(interface{ Close() error }); ok {
		app.AddCloser("redis", closer.Close)
	}
	if ch != nil {
		app.AddCloser("clickhouse", ch.Close)
	}
	return app
}
