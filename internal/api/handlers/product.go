package handlers

import (
	"net/http"
	"strings"

	"marketplace-backend/internal/search"
	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog and product search
type ProductHandler struct {
	products service.ProductServiceInterface
	search   service.SearchServiceInterface
}

// NewProductHandler creates a new product handler
func NewProductHandler(products service.ProductServiceInterface, search service.SearchServiceInterface) *ProductHandler {
	return &ProductHandler{products: products, search: search}
}

func optionalQuery(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func priceQuery(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := optionalQuery(c, key)
	if raw == nil {
		return nil, true
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + key + ": must be a decimal number"})
		return nil, false
	}
	return &d, true
}

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Description List the products visible to the caller, optionally filtered
// @Tags products
// @Produce json
// @Param name query string false "Case-insensitive name substring"
// @Param category query string false "Product category" Enums(ALIMENTO, BRINQUEDO, ACESSORIO, HIGIENE, MEDICAMENTO, OUTRO)
// @Param minPrice query string false "Minimum price"
// @Param maxPrice query string false "Maximum price"
// @Param sort query string false "Sort order" Enums(price_asc, price_desc, name_asc)
// @Success 200 {array} service.ProductResponse "Matching products"
// @Failure 400 {object} map[string]interface{} "Invalid filter"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /v1/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters := search.SearchFilters{
		Name:     optionalQuery(c, "name"),
		Category: optionalQuery(c, "category"),
		Sort:     optionalQuery(c, "sort"),
	}

	var ok bool
	if filters.MinPrice, ok = priceQuery(c, "minPrice"); !ok {
		return
	}
	if filters.MaxPrice, ok = priceQuery(c, "maxPrice"); !ok {
		return
	}

	products, err := h.search.ManualSearch(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// SearchProducts handles GET /api/v1/products/search
// @Summary Natural-language product search
// @Description Translate a free-text query into filters with the AI assistant, falling back to a lexical search
// @Tags products
// @Produce json
// @Param q query string true "Free-text query" example(ração barata para cachorro)
// @Success 200 {object} service.AISearchResponse "Search result with a friendly message"
// @Failure 400 {object} map[string]interface{} "Missing query"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /v1/products/search [get]
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	result, err := h.search.NaturalLanguageSearch(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "search products")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/:id
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} service.ProductResponse "Product"
// @Failure 400 {object} map[string]interface{} "Invalid product ID"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Router /v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
// @Summary Create a product
// @Description Managers create products in their own organization; admins may pick any organization or none
// @Tags products
// @Accept json
// @Produce json
// @Param product body service.CreateProductRequest true "Product data"
// @Success 201 {object} service.ProductResponse "Created product"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 401 {object} map[string]interface{} "Authentication required"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Security BearerAuth
// @Router /v1/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), tenant.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body service.UpdateProductRequest true "Fields to change"
// @Success 200 {object} service.ProductResponse "Updated product"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Security BearerAuth
// @Router /v1/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), tenant.GetPrincipal(c), id, &req)
	if err != nil {
		respondError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Tags products
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted"
// @Failure 400 {object} map[string]interface{} "Invalid product ID or product still referenced"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Security BearerAuth
// @Router /v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), tenant.GetPrincipal(c), id); err != nil {
		respondError(c, err, "delete product")
		return
	}

	c.Status(http.StatusNoContent)
}
