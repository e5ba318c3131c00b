package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	portalserver "github.com/Apurer/cement-dealer-portal/go"
	orderworkflows "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/cement-dealer-portal/internal/platform/observability"
)

// ServiceName identifies the API process in logs and traces.
const ServiceName = "cement-dealer-portal-api"

// Run boots the portal HTTP API with observability, storage and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Options{
		ServiceName: ServiceName,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := Wire(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var checkout ordersports.CheckoutWorkflows = orderworkflows.NewInlineCheckoutWorkflows(services.Orders)
	if temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running checkout inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		checkout = orderworkflows.NewTemporalCheckoutWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	if cfg.SessionPurgeInterval > 0 {
		go purgeSessions(ctx, services.Sessions, cfg.SessionPurgeInterval, logger)
	}

	handlers := portalserver.ApiHandleFunctions{
		AuthAPI:    portalserver.NewAuthAPI(services.Dealers, cfg.OTPEcho),
		CatalogAPI: portalserver.NewCatalogAPI(services.Catalog),
		CartAPI:    portalserver.NewCartAPI(services.Cart),
		OrderAPI:   portalserver.NewOrderAPI(services.Orders, checkout),
		ChatAPI:    portalserver.NewChatAPI(services.Assistant),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(ServiceName))
	router = portalserver.NewRouterWithGinEngine(router, handlers, portalserver.Options{
		AdminKey:    cfg.AdminAPIKey,
		SeedEnabled: cfg.SeedEnabled,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("portal API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down portal API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ConnectTemporal dials Temporal with the tracing interceptor and the slog-backed logger.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func purgeSessions(ctx context.Context, purger SessionPurger, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("expired sessions purged", slog.Int64("count", purged))
			}
		}
	}
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
