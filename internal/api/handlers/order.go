package handlers

import (
	"net/http"

	"marketplace-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	service service.OrderServiceInterface
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// ListOrders handles GET /api/v1/orders
// @Summary List orders
// @Description Admins see every order; other users see the orders of their organization
// @Tags orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.OrderListResponse "Orders"
// @Failure 401 {object} map[string]interface{} "Authentication required"
// @Security BearerAuth
// @Router /v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := pageParams(c)

	orders, err := h.service.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} service.OrderResponse "Order"
// @Failure 400 {object} map[string]interface{} "Invalid order ID"
// @Failure 404 {object} map[string]interface{} "Order not found"
// @Security BearerAuth
// @Router /v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, order)
}
