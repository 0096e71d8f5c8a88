package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ahliwaris/internal/declaration/cache"
	"ahliwaris/internal/declaration/handler"
	declmetrics "ahliwaris/internal/declaration/metrics"
	"ahliwaris/internal/declaration/narrative"
	"ahliwaris/internal/declaration/service"
	"ahliwaris/internal/declaration/store"
	"ahliwaris/internal/platform/config"
	"ahliwaris/internal/platform/httpserver"
	"ahliwaris/internal/platform/kafka/admin"
	kafkaconsumer "ahliwaris/internal/platform/kafka/consumer"
	"ahliwaris/internal/platform/kafka/producer"
	"ahliwaris/internal/platform/logger"
	"ahliwaris/internal/platform/metrics"
	"ahliwaris/internal/platform/middleware"
	"ahliwaris/internal/platform/redis"
	rlmw "ahliwaris/internal/ratelimit/middleware"
	rlmodels "ahliwaris/internal/ratelimit/models"
	"ahliwaris/internal/ratelimit/store/bucket"
	audit "ahliwaris/pkg/platform/audit"
	auditconsumer "ahliwaris/pkg/platform/audit/consumer"
	"ahliwaris/pkg/platform/audit/publisher"
	"ahliwaris/pkg/platform/audit/publishers/compliance"
	"ahliwaris/pkg/platform/audit/publishers/ops"
	auditmemory "ahliwaris/pkg/platform/audit/store/memory"
	auditpostgres "ahliwaris/pkg/platform/audit/store/postgres"
	"ahliwaris/pkg/platform/audit/worker"
	"ahliwaris/pkg/platform/circuit"
	"ahliwaris/pkg/platform/httputil"
	"ahliwaris/pkg/platform/middleware/metadata"
	"ahliwaris/pkg/platform/middleware/requesttime"
)

// main wires dependencies and runs the HTTP server next to the audit relay and
// consumer. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// infra holds the backing services; nil fields fall back to in-process stand-ins.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *producer.Producer
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	inf, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer inf.close()

	g, ctx := errgroup.WithContext(ctx)

	declStore, auditStore, txRunner, err := stores(ctx, inf)
	if err != nil {
		return err
	}

	compliancePublisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	opsSink := publisher.NewPublisher(auditStore,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(1024),
	)
	defer opsSink.Close()
	opsTracker := ops.New(opsSink,
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics()),
		ops.WithBreaker(circuit.New("audit-ops")),
		ops.WithSampler(ops.ReadSampler(cfg.OpsReadSampleRate)),
	)
	auditReader := publisher.NewPublisher(auditStore)

	if pg, ok := auditStore.(*auditpostgres.Store); ok {
		if err := startAuditPipeline(ctx, g, cfg, log, inf, pg); err != nil {
			return err
		}
	}

	svc := service.New(declStore,
		service.WithTx(txRunner),
		service.WithCache(documentCache(cfg, log, inf)),
		service.WithAuditPublisher(compliancePublisher),
		service.WithOpsTracker(opsTracker),
		service.WithAuditReader(auditReader),
		service.WithLogger(log),
		service.WithMetrics(declmetrics.New()),
		service.WithLetterhead(letterhead(cfg.Letterhead)),
		service.WithBatchLimit(cfg.BatchLimit),
	)

	httpMetrics := metrics.New()
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log, httpMetrics))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(httpMetrics))
	r.Get("/health", inf.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		handler.New(svc, log, handler.WithRateLimit(rateLimiter(cfg, log, inf))).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	g.Go(func() error {
		log.Info("starting ahliwaris", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	inf := &infra{}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		inf.db = db
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		// The document cache degrades to process memory.
		log.Warn("redis unavailable, using in-process document cache", "error", err)
	}
	inf.redis = rc

	if len(cfg.Kafka.Brokers) > 0 && inf.db == nil {
		log.Warn("kafka brokers ignored: the audit outbox needs DATABASE_URL")
	}
	if len(cfg.Kafka.Brokers) > 0 && inf.db != nil {
		p, err := producer.New(cfg.Kafka.Brokers, log)
		if err != nil {
			inf.close()
			return nil, err
		}
		inf.kafka = p
	}
	return inf, nil
}

func (i *infra) close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

// health reports 503 when a configured backing service is unreachable. Redis
// is left out: the cache falls back to memory.
func (i *infra) health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := http.StatusOK
	if i.db != nil {
		checks["postgres"] = "ok"
		if err := i.db.PingContext(r.Context()); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if i.kafka != nil {
		checks["kafka"] = "ok"
		if err := i.kafka.Ping(r.Context()); err != nil {
			checks["kafka"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if i.redis != nil {
		checks["redis"] = "ok"
		if err := i.redis.Health(r.Context()); err != nil {
			checks["redis"] = "degraded: " + err.Error()
		}
	}
	httputil.WriteJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

func stores(ctx context.Context, inf *infra) (service.Store, audit.Store, service.Tx, error) {
	if inf.db == nil {
		return store.NewInMemoryStore(), auditmemory.NewInMemoryStore(), service.NewLockTx(), nil
	}
	declStore := store.NewPostgres(inf.db)
	if err := declStore.EnsureSchema(ctx); err != nil {
		return nil, nil, nil, err
	}
	auditStore := auditpostgres.New(inf.db)
	if err := auditStore.EnsureSchema(ctx); err != nil {
		return nil, nil, nil, err
	}
	return declStore, auditStore, newDeclarationPostgresTx(inf.db), nil
}

// startAuditPipeline relays the outbox and materializes the audit trail. With
// Kafka the relay produces to the audit topics and a consumer group reads them
// back; without it the relay hands messages to the same handlers in process.
func startAuditPipeline(ctx context.Context, g *errgroup.Group, cfg config.Server, log *slog.Logger, inf *infra, pg *auditpostgres.Store) error {
	router := auditconsumer.NewAuditRouter(pg, log)

	var pub worker.Publisher = worker.NewLoopback(router)
	if inf.kafka != nil {
		if err := admin.EnsureTopics(ctx, cfg.Kafka.Brokers,
			admin.TopicSpec{Name: worker.TopicCompliance, Partitions: 3, RetentionMs: "-1"},
			admin.TopicSpec{Name: worker.TopicOperations, Partitions: 3, RetentionMs: "604800000"},
		); err != nil {
			return err
		}
		cons, err := kafkaconsumer.New(kafkaconsumer.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroup,
			Topics:  router.Topics(),
		}, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer cons.Close()
			if err := cons.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("audit consumer: %w", err)
			}
			return nil
		})
		pub = inf.kafka
	}

	relay := worker.NewRelay(pg, pub, log, worker.WithInterval(cfg.Kafka.RelayInterval))
	g.Go(func() error {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return nil
}

func documentCache(cfg config.Server, log *slog.Logger, inf *infra) service.DocumentCache {
	local := cache.NewMemory(cfg.DocumentCacheTTL)
	if inf.redis == nil {
		return local
	}
	return cache.NewResilient(
		cache.NewRedis(inf.redis, cfg.DocumentCacheTTL),
		local,
		circuit.New("document-cache"),
		log,
	)
}

// rateLimiter shares counters through Redis when available so replicas
// enforce one budget per client.
func rateLimiter(cfg config.Server, log *slog.Logger, inf *infra) *rlmw.Middleware {
	var store rlmw.BucketStore = bucket.NewInMemoryBucketStore()
	if inf.redis != nil {
		store = bucket.NewRedisBucketStore(inf.redis)
	}
	rl := cfg.RateLimit
	return rlmw.New(store, log,
		rlmw.WithDisabled(rl.Disabled),
		rlmw.WithPolicies(rlmodels.Policies{
			rlmodels.ClassIssue: {Limit: rl.IssueLimit, Window: rl.Window},
			rlmodels.ClassRead:  {Limit: rl.ReadLimit, Window: rl.Window},
		}),
	)
}

func letterhead(l config.Letterhead) narrative.Options {
	return narrative.Options{
		SignPlace:    l.SignPlace,
		VillageHead:  narrative.Official{Region: l.VillageName, Name: l.VillageHeadName},
		DistrictHead: narrative.Official{Region: l.DistrictName, Name: l.DistrictHeadName},
	}
}
