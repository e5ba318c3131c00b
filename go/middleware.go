package portalserver

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	dealersapp "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	apierrors "github.com/Apurer/cement-dealer-portal/internal/shared/errors"
)

const (
	dealerContextKey = "portal.dealer"
	tokenContextKey  = "portal.token"

	// AdminKeyHeader carries the shared secret of the fulfilment routes.
	AdminKeyHeader = "X-Admin-Key"
)

// RequireDealer resolves the bearer token to a dealer or answers 401.
func RequireDealer(service dealerports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || service == nil {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("Not authenticated"))
			c.Abort()
			return
		}
		dealer, err := service.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondPortalError(c, err)
			c.Abort()
			return
		}
		c.Set(dealerContextKey, dealer)
		c.Set(tokenContextKey, token)
		c.Next()
	}
}

// RequireAdminKey compares the X-Admin-Key header against key in constant time.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(AdminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("admin key required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORS answers preflight requests and stamps the allowed origin on responses.
func CORS(origins []string) gin.HandlerFunc {
	allowAny := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAny = true
		}
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAny {
				if allowAny {
					c.Header("Access-Control-Allow-Origin", "*")
				} else {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Vary", "Origin")
				}
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, "+AdminKeyHeader)
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentDealer(c *gin.Context) *dealerdomain.Dealer {
	value, ok := c.Get(dealerContextKey)
	if !ok {
		return nil
	}
	dealer, _ := value.(*dealerdomain.Dealer)
	return dealer
}

// mustDealer returns the authenticated dealer, answering 401 when the gate was skipped.
func mustDealer(c *gin.Context) (*dealerdomain.Dealer, bool) {
	dealer := currentDealer(c)
	if dealer == nil {
		respondPortalError(c, dealersapp.ErrUnauthenticated)
		return nil, false
	}
	return dealer, true
}
