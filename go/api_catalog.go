package portalserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
)

// CatalogAPI serves the product catalog.
type CatalogAPI struct {
	service catalogports.Service
}

// NewCatalogAPI wires dependencies.
func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Get /api/products
// Lists products, optionally narrowed to one tag.
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	var tag *string
	if !bindQueryParam(c, "tag", false, &tag) {
		return
	}
	filter := catalogports.Filter{}
	if tag != nil {
		filter.Tag = *tag
	}
	products, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProjections(products))
}

// Get /api/products/:id
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	var id string
	if !bindPathParam(c, "id", &id) {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProjection(product))
}

// Post /api/seed-data
func (api *CatalogAPI) SeedData(c *gin.Context) {
	added, err := api.service.Seed(c.Request.Context())
	if err != nil {
		respondPortalError(c, err)
		return
	}
	if added == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Products already exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d products added successfully", added)})
}
