package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService handles order queries
type OrderService struct {
	orders repository.OrderRepositoryInterface
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepositoryInterface) *OrderService {
	return &OrderService{orders: orders}
}

// OrderItemResponse is one line of an order
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Subtotal    decimal.Decimal `json:"subtotal" swaggertype:"string"`
}

// OrderResponse represents an order as returned by the API
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	OrganizationID *uuid.UUID          `json:"organization_id"`
	Items          []OrderItemResponse `json:"items"`
	Total          decimal.Decimal     `json:"total" swaggertype:"string"`
	CreatedAt      string              `json:"created_at"`
}

// OrderListResponse represents a paginated list of orders
type OrderListResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// List returns the orders visible in the current scope, oldest first
func (s *OrderService) List(ctx context.Context, page, pageSize int) (*OrderListResponse, error) {
	limit, offset, page, pageSize := paginate(page, pageSize)

	orders, total, err := s.orders.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *toOrderResponse(&orders[i]))
	}
	return &OrderListResponse{
		Orders:   responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetByID retrieves an order visible in the current scope
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toOrderResponse(order), nil
}

func toOrderResponse(order *models.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		OrganizationID: order.OrganizationID,
		Items:          make([]OrderItemResponse, 0, len(order.Items)),
		Total:          order.Total(),
		CreatedAt:      formatTime(order.CreatedAt),
	}
	for _, item := range order.Items {
		line := OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
