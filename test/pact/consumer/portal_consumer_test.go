//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/cement-dealer-portal/test/pact"
)

type productPayload struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Grade     string  `json:"grade"`
	Packaging string  `json:"packaging"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

type cartLinePayload struct {
	ID        string         `json:"id"`
	ProductID string         `json:"product_id"`
	Quantity  int            `json:"quantity"`
	Product   productPayload `json:"product"`
	Subtotal  float64        `json:"subtotal"`
}

type problemDetail struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Extensions struct {
		Minimum   int `json:"minimum"`
		Requested int `json:"requested"`
	} `json:"extensions"`
}

type apiError struct {
	status  int
	problem problemDetail
}

func (e apiError) Error() string {
	msg := e.problem.Title
	if msg == "" {
		msg = "api error"
	}
	if e.problem.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.problem.Detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestDealerPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExistingProduct()
	productMatcher := matchers.Map{
		"id":        matchers.Like(example.ID),
		"name":      matchers.Like(example.Name),
		"grade":     matchers.Like(example.Grade),
		"packaging": matchers.Like(example.Packaging),
		"price":     matchers.Like(example.Price),
		"stock":     matchers.Like(example.Stock),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")

	pact.AddInteraction().
		Given(pacttest.StateCatalogEmpty).
		UponReceiving("a request for the API index").
		WithRequest("GET", "/api/").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Cement Dealer Management API"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductExists).
		UponReceiving("a request to fetch an existing product").
		WithRequest("GET", "/api/products/"+pacttest.ExistingProductID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogEmpty).
		UponReceiving("a request for a missing product").
		WithRequest("GET", "/api/products/"+pacttest.MissingProductID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
				"detail": matchers.S("Product not found"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateDealerLoggedIn).
		UponReceiving("a request for the dealer's cart").
		WithRequest("GET", "/api/cart", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", matchers.S(pacttest.BearerHeader()))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":         matchers.Like("line-1"),
				"product_id": matchers.Like(example.ID),
				"quantity":   matchers.Like(200),
				"product":    productMatcher,
				"subtotal":   matchers.Like(84000.0),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateDealerLoggedIn).
		UponReceiving("a cart addition below the minimum order quantity").
		WithRequest("POST", "/api/cart", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", matchers.S(pacttest.BearerHeader()))
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]any{"product_id": example.ID, "quantity": 50})
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/minimum-order-quantity"),
				"title":  matchers.S("Minimum Order Quantity Not Met"),
				"status": matchers.Like(http.StatusBadRequest),
				"extensions": matchers.Map{
					"minimum":   matchers.Like(100),
					"requested": matchers.Like(50),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogEmpty).
		UponReceiving("a cart request without a session").
		WithRequest("GET", "/api/cart").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/unauthorized"),
				"status": matchers.Like(http.StatusUnauthorized),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPortalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Index(ctx); err != nil {
			return fmt.Errorf("index: %w", err)
		}

		product, err := client.GetProduct(ctx, pacttest.ExistingProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.ExistingProductID || product.Price <= 0 {
			return fmt.Errorf("unexpected product %+v", product)
		}

		_, err = client.GetProduct(ctx, pacttest.MissingProductID)
		var apiErr apiError
		if !errors.As(err, &apiErr) || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for product %s, got %v", pacttest.MissingProductID, err)
		}

		lines, err := client.GetCart(ctx, pacttest.BearerHeader())
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if len(lines) == 0 || lines[0].Quantity < 100 {
			return fmt.Errorf("unexpected cart %+v", lines)
		}

		err = client.AddToCart(ctx, pacttest.BearerHeader(), pacttest.ExistingProductID, 50)
		if !errors.As(err, &apiErr) || apiErr.status != http.StatusBadRequest || apiErr.problem.Extensions.Minimum != 100 {
			return fmt.Errorf("expected minimum order quantity problem, got %v", err)
		}

		_, err = client.GetCart(ctx, "")
		if !errors.As(err, &apiErr) || apiErr.status != http.StatusUnauthorized {
			return fmt.Errorf("expected 401 without session, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type portalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPortalClient(config pactconsumer.MockServerConfig) *portalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &portalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *portalClient) Index(ctx context.Context) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/", "", nil, &body); err != nil {
		return err
	}
	if body.Message == "" {
		return errors.New("empty index message")
	}
	return nil
}

func (c *portalClient) GetProduct(ctx context.Context, id string) (*productPayload, error) {
	var product productPayload
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id, "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *portalClient) GetCart(ctx context.Context, authorization string) ([]cartLinePayload, error) {
	var lines []cartLinePayload
	if err := c.do(ctx, http.MethodGet, "/api/cart", authorization, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *portalClient) AddToCart(ctx context.Context, authorization, productID string, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.do(ctx, http.MethodPost, "/api/cart", authorization, body, nil)
}

func (c *portalClient) do(ctx context.Context, method, path, authorization string, body, dest any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, problem: problem}
}
