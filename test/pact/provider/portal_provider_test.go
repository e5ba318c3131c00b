//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	portalserver "github.com/Apurer/cement-dealer-portal/go"
	assistantllm "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/adapters/llm"
	assistantapp "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application"
	cartmemory "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/observability"
	cartapp "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogmemory "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	dealermemory "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/memory"
	dealerobs "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/observability"
	dealersapp "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	ordermemory "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
	pacttest "github.com/Apurer/cement-dealer-portal/test/pact"
)

func TestDealerPortalProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogEmpty: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateProductExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedProduct(t)
			}
			return nil, nil
		},
		pacttest.StateDealerLoggedIn: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedProduct(t)
				app.seedDealerSession(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves the portal router over fresh in-memory storage that each state rebuilds.
type contractProviderApp struct {
	server *httptest.Server

	mu       sync.RWMutex
	router   *gin.Engine
	dealers  *dealermemory.Repository
	sessions *dealermemory.SessionStore
	products *catalogmemory.Repository
	carts    *cartmemory.Repository
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()
	app.server = httptest.NewServer(http.HandlerFunc(app.serveHTTP))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) serveHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	router := a.router
	a.mu.RUnlock()
	router.ServeHTTP(w, r)
}

func (a *contractProviderApp) reset() {
	store := memstore.New()
	dealerRepo := dealermemory.NewRepository(store)
	sessions := dealermemory.NewSessionStore()
	productRepo := catalogmemory.NewRepository(store)
	cartRepo := cartmemory.NewRepository(store)

	dealerService := dealerobs.New(dealersapp.NewService(dealerRepo, dealermemory.NewOTPStore(), sessions))
	catalogService := catalogobs.New(catalogapp.NewService(productRepo))
	cartService := cartobs.New(cartapp.NewService(cartRepo, productRepo))
	orderService := orderobs.New(ordersapp.NewService(ordermemory.NewLedger(store), dealerRepo, cartRepo, productRepo,
		ordersapp.WithIdempotencyStore(ordermemory.NewIdempotencyStore(store))))
	chatService := assistantapp.NewService(assistantllm.Unavailable{}, dealerRepo, catalogService, orderService)

	handlers := portalserver.ApiHandleFunctions{
		AuthAPI:    portalserver.NewAuthAPI(dealerService, false),
		CatalogAPI: portalserver.NewCatalogAPI(catalogService),
		CartAPI:    portalserver.NewCartAPI(cartService),
		OrderAPI:   portalserver.NewOrderAPI(orderService, nil),
		ChatAPI:    portalserver.NewChatAPI(chatService),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = portalserver.NewRouterWithGinEngine(router, handlers, portalserver.Options{})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.router = router
	a.dealers = dealerRepo
	a.sessions = sessions
	a.products = productRepo
	a.carts = cartRepo
}

func (a *contractProviderApp) seedProduct(t testing.TB) {
	t.Helper()
	example := pacttest.ExistingProduct()
	product, err := catalogdomain.NewProduct(example.ID, example.Name, decimal.NewFromFloat(example.Price), example.Stock)
	require.NoError(t, err)
	product.Describe("Ordinary Portland Cement for structural work", "OPC", example.Grade, example.Packaging, "")

	a.mu.RLock()
	defer a.mu.RUnlock()
	_, err = a.products.Save(context.Background(), product)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedDealerSession(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	dealer, err := dealerdomain.NewDealer(pacttest.DealerID, "Pact Dealer", pacttest.DealerPhone,
		"pact@example.com", "Pact Traders", "1 Contract Lane", "")
	require.NoError(t, err)
	item, err := cartdomain.NewItem("pact-line-1", pacttest.DealerID, pacttest.ExistingProductID, 200, now)
	require.NoError(t, err)

	a.mu.RLock()
	defer a.mu.RUnlock()
	_, err = a.dealers.Create(ctx, dealer)
	require.NoError(t, err)
	require.NoError(t, a.sessions.Save(ctx, dealerdomain.Session{
		Token:     pacttest.SessionToken,
		DealerID:  pacttest.DealerID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}))
	_, err = a.carts.Upsert(ctx, item)
	require.NoError(t, err)
}
