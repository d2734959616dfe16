package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/checkout"
	"github.com/jcmexdev/labeeb-storefront/internal/customer"
	"github.com/jcmexdev/labeeb-storefront/internal/notify"
	"github.com/jcmexdev/labeeb-storefront/internal/notify/rabbitmq"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/cache"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/config"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/labeeb-storefront/internal/storage/sqlite"
	"github.com/jcmexdev/labeeb-storefront/internal/storefront/infra/httpx"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.ServiceName, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer := telemetry.ShutdownFunc(telemetry.Noop)
	if cfg.Tracing.Enabled {
		shutdownTracer, err = telemetry.SetupTracer(ctx, telemetry.TracerConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Environment: cfg.Tracing.Environment,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			slog.Error("failed to initialise tracer", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	if err := run(ctx, cfg); err != nil {
		slog.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sagaLog, err := sqlite.OpenSagaLog(cfg.SagaLogPath)
	if err != nil {
		return err
	}
	defer sagaLog.Close()

	catalogSvc := catalog.NewService(store)
	if cfg.CatalogSeed != "" {
		n, err := catalogSvc.Seed(ctx, cfg.CatalogSeed)
		if err != nil {
			return err
		}
		slog.Info("catalog seeded", "products", n, "file", cfg.CatalogSeed)
	}

	idempotency, closeCache := newCache(ctx, cfg)
	defer closeCache()

	notifier, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	carts := cart.NewRegistry()
	lookup := order.NewLookup(store, order.WithTimeout(cfg.LookupTimeout))
	submitter := order.NewSubmitter(store, customer.NewValidator(), order.WithSagaLog(sagaLog))
	notifications := notify.NewService(notify.Config{
		Recipient: cfg.WhatsApp.Number,
		Enabled:   cfg.WhatsApp.Enabled,
	}, notifier)

	handler := httpx.NewHandler(httpx.Deps{
		Catalog:  catalogSvc,
		Carts:    carts,
		Checkout: checkout.NewService(carts, submitter, lookup, notifications, idempotency, cfg.IdempotencyTTL),
		Lookup:   lookup,
		Admin:    order.NewAdmin(store),
		SagaLog:  sagaLog,
		Health:   store.Ping,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(httpx.NewRouter(handler, cfg.AdminToken), cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor()),
	)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("storefront HTTP running", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		slog.Info("storefront gRPC health running", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go sweepCarts(ctx, carts, cfg.CartIdleTTL)

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down storefront")
	case serveErr = <-errCh:
		slog.Error("server failed", "error", serveErr)
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	return serveErr
}

// newCache prefers Redis so idempotency keys survive restarts and are shared
// between instances, and falls back to process memory.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(cfg.ServiceName), func() {}
	}

	rc := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		slog.Warn("redis unavailable, using in-memory idempotency cache", "addr", cfg.RedisAddr, "error", err)
		_ = rc.Close()
		return cache.NewMemoryCache(cfg.ServiceName), func() {}
	}
	slog.Info("redis idempotency cache ready", "addr", cfg.RedisAddr)
	return rc, func() { _ = rc.Close() }
}

// newNotifier publishes to RabbitMQ when configured and otherwise logs each
// notification.
func newNotifier(cfg *config.Config) (notify.Notifier, func()) {
	if cfg.RabbitMQ.URL == "" {
		return notify.LogNotifier{}, func() {}
	}

	pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.ChannelPoolSize)
	if err != nil {
		slog.Warn("rabbitmq unavailable, notifications are only logged", "error", err)
		return notify.LogNotifier{}, func() {}
	}
	publisher := rabbitmq.NewPublisher(pool, cfg.RabbitMQ.Queue)
	return notify.Multi{notify.LogNotifier{}, publisher}, pool.Close
}

const minSweepInterval = time.Second

// sweepInterval checks a few times per idle window, never more than once a second.
func sweepInterval(maxIdle time.Duration) time.Duration {
	return max(maxIdle/4, minSweepInterval)
}

func sweepCarts(ctx context.Context, carts *cart.Registry, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval(maxIdle))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := carts.Sweep(maxIdle); n > 0 {
				slog.InfoContext(ctx, "idle carts dropped", "count", n, "remaining", carts.Len())
			}
		}
	}
}
