package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	llmclient "github.com/Apurer/cement-dealer-portal/internal/clients/http/llm"
	assistantllm "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/adapters/llm"
	assistantobs "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/adapters/observability"
	assistantapp "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application"
	assistantports "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/ports"
	cartmemory "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application"
	cartports "github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
	catalogmemory "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/application"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	dealermemory "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/memory"
	dealerobs "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/observability"
	dealerpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/persistence/postgres"
	dealersapp "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	orderredis "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/cache/redis"
	ordermemory "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/memory"
	orderkafka "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/messaging/kafka"
	orderobs "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
	"github.com/Apurer/cement-dealer-portal/internal/platform/migrations"
	platformobservability "github.com/Apurer/cement-dealer-portal/internal/platform/observability"
	platformpostgres "github.com/Apurer/cement-dealer-portal/internal/platform/postgres"
)

// SessionPurger is implemented by both session stores.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Services holds the decorated application services of every bounded context.
type Services struct {
	Dealers   dealerports.Service
	Catalog   catalogports.Service
	Cart      cartports.Service
	Orders    ordersports.Service
	Assistant assistantports.Service
	Sessions  SessionPurger
}

type persistence struct {
	dealers     dealerports.Repository
	otps        dealerports.OTPStore
	sessions    interface {
		dealerports.SessionStore
		SessionPurger
	}
	products    catalogports.Repository
	carts       cartports.Repository
	ledger      ordersports.Ledger
	idempotency ordersports.IdempotencyStore
}

// Wire connects storage, messaging and the LLM collaborator and returns the services.
// PostgreSQL is used when reachable, otherwise every context shares one in-memory store.
func Wire(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	logger := effectiveLogger(instruments)
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db, closeDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)
	var store persistence
	if db != nil {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		store = postgresPersistence(db)
	} else {
		store = memoryPersistence()
	}

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, keeping idempotency keys in the primary store", slog.String("error", err.Error()))
			_ = client.Close()
		} else {
			store.idempotency = orderredis.NewIdempotencyStore(client, orderredis.DefaultTTL)
			cleanups = append(cleanups, func() { _ = client.Close() })
			logger.Info("order idempotency keys stored in redis", slog.String("addr", cfg.RedisAddr))
		}
	}

	var publisher ordersports.EventPublisher = ordersports.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := orderkafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		publisher = kafkaPublisher
		cleanups = append(cleanups, func() { _ = kafkaPublisher.Close() })
		logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrdersTopic))
	}

	dealerService := dealerobs.New(
		dealersapp.NewService(store.dealers, store.otps, store.sessions,
			dealersapp.WithSessionTTL(cfg.SessionTTL),
			dealersapp.WithOTPSender(dealerports.LogOTPSender{Logger: logger}),
		),
		dealerobs.WithLogger(logger),
		dealerobs.WithTracer(instruments.Tracer("internal.dealers.application")),
		dealerobs.WithMeter(instruments.Meter("internal.dealers.application")),
	)
	catalogService := catalogobs.New(
		catalogapp.NewService(store.products),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	cartService := cartobs.New(
		cartapp.NewService(store.carts, store.products),
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)
	orderService := orderobs.New(
		ordersapp.NewService(store.ledger, store.dealers, store.carts, store.products,
			ordersapp.WithIdempotencyStore(store.idempotency),
			ordersapp.WithEventPublisher(publisher),
			ordersapp.WithLogger(logger),
		),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	assistantService := assistantobs.New(
		assistantapp.NewService(buildCompleter(cfg, logger), store.dealers, catalogService, orderService,
			assistantapp.WithRateLimit(cfg.ChatRatePerMinute),
			assistantapp.WithLogger(logger),
		),
		assistantobs.WithLogger(logger),
		assistantobs.WithTracer(instruments.Tracer("internal.assistant.application")),
		assistantobs.WithMeter(instruments.Meter("internal.assistant.application")),
	)

	return &Services{
		Dealers:   dealerService,
		Catalog:   catalogService,
		Cart:      cartService,
		Orders:    orderService,
		Assistant: assistantService,
		Sessions:  store.sessions,
	}, cleanup, nil
}

func postgresPersistence(db *gorm.DB) persistence {
	return persistence{
		dealers:     dealerpostgres.NewRepository(db),
		otps:        dealerpostgres.NewOTPStore(db),
		sessions:    dealerpostgres.NewSessionStore(db),
		products:    catalogpostgres.NewRepository(db),
		carts:       cartpostgres.NewRepository(db),
		ledger:      orderpostgres.NewLedger(db),
		idempotency: orderpostgres.NewIdempotencyStore(db),
	}
}

func memoryPersistence() persistence {
	store := memstore.New()
	return persistence{
		dealers:     dealermemory.NewRepository(store),
		otps:        dealermemory.NewOTPStore(),
		sessions:    dealermemory.NewSessionStore(),
		products:    catalogmemory.NewRepository(store),
		carts:       cartmemory.NewRepository(store),
		ledger:      ordermemory.NewLedger(store),
		idempotency: ordermemory.NewIdempotencyStore(store),
	}
}

func buildCompleter(cfg Config, logger *slog.Logger) assistantports.Completer {
	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM_API_KEY not set, chat answers with the fallback reply")
		return assistantllm.Unavailable{}
	}
	client, err := llmclient.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, nil)
	if err != nil {
		logger.Warn("invalid LLM configuration, chat answers with the fallback reply", slog.String("error", err.Error()))
		return assistantllm.Unavailable{}
	}
	return assistantllm.NewCompleter(client)
}
