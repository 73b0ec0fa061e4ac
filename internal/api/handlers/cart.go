package handlers

import (
	"net/http"

	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"

	"github.com/gin-gonic/gin"
)

// CartHandler handles the caller's shopping cart and checkout
type CartHandler struct {
	carts    service.CartServiceInterface
	checkout service.CheckoutServiceInterface
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts service.CartServiceInterface, checkout service.CheckoutServiceInterface) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

// GetCart handles GET /api/v1/cart
// @Summary Get the cart
// @Description Cart lines with live product names and prices. Lines for products no longer visible are flagged unavailable.
// @Tags cart
// @Produce json
// @Success 200 {object} service.CartResponse "Cart"
// @Failure 401 {object} map[string]interface{} "Authentication required"
// @Security BearerAuth
// @Router /v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), tenant.GetPrincipal(c))
	if err != nil {
		respondError(c, err, "get cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /api/v1/cart/items
// @Summary Add a product to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Param item body service.AddCartItemRequest true "Product and quantity"
// @Success 200 {object} service.CartResponse "Updated cart"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Failure 409 {object} map[string]interface{} "Insufficient stock"
// @Security BearerAuth
// @Router /v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), tenant.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err, "add cart item")
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/:productId
// @Summary Remove a product from the cart
// @Description Removing a product that is not in the cart is not an error
// @Tags cart
// @Produce json
// @Param productId path string true "Product ID (UUID)"
// @Success 200 {object} service.CartResponse "Updated cart"
// @Failure 400 {object} map[string]interface{} "Invalid product ID"
// @Security BearerAuth
// @Router /v1/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := pathID(c, "productId", "product")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), tenant.GetPrincipal(c), productID)
	if err != nil {
		respondError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /api/v1/cart
// @Summary Empty the cart
// @Tags cart
// @Success 204 "Cart emptied"
// @Security BearerAuth
// @Router /v1/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), tenant.GetPrincipal(c)); err != nil {
		respondError(c, err, "clear cart")
		return
	}

	c.Status(http.StatusNoContent)
}

// Checkout handles POST /api/v1/checkout
// @Summary Place an order from the cart
// @Description Reserves stock for every cart line in one transaction and creates the order. The cart is emptied on success.
// @Tags cart
// @Produce json
// @Success 201 {object} service.OrderResponse "Created order"
// @Failure 400 {object} map[string]interface{} "Cart is empty"
// @Failure 404 {object} map[string]interface{} "A product is no longer available"
// @Failure 409 {object} map[string]interface{} "Insufficient stock or checkout already in progress"
// @Security BearerAuth
// @Router /v1/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	principal := tenant.GetPrincipal(c)

	order, err := h.checkout.Process(c.Request.Context(), service.CartKey(principal), principal)
	if err != nil {
		respondError(c, err, "checkout")
		return
	}

	c.JSON(http.StatusCreated, order)
}
