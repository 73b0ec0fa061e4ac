package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"marketplace-backend/internal/cart"
	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/logger"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/tenant"

	"gorm.io/gorm"
)

// checkoutLockTTL bounds how long an abandoned checkout keeps its cart locked
const checkoutLockTTL = 30 * time.Second

// CheckoutService turns a cart into an order in one transaction
type CheckoutService struct {
	carts    cart.Store
	products repository.ProductRepositoryInterface
	orders   repository.OrderRepositoryInterface
	tx       repository.TxManagerInterface
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(carts cart.Store, products repository.ProductRepositoryInterface, orders repository.OrderRepositoryInterface, tx repository.TxManagerInterface) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		products: products,
		orders:   orders,
		tx:       tx,
	}
}

// Process buys every line of the cart stored under cartKey. Stock is locked
// and decremented line by line in product id order; any shortfall rolls the
// whole order back. The cart is cleared once the order is committed. A
// second checkout of the same cart fails with ErrCheckoutInProgress until
// the first one returns.
func (s *CheckoutService) Process(ctx context.Context, cartKey string, buyer tenant.Principal) (*OrderResponse, error) {
	if buyer.IsAnonymous() {
		return nil, apperrors.ErrNotAuthenticated
	}

	release, err := s.carts.Lock(ctx, cartKey, checkoutLockTTL)
	if errors.Is(err, cart.ErrLocked) {
		return nil, apperrors.ErrCheckoutInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	defer release()

	c, err := s.carts.Load(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, apperrors.ErrEmptyCart
	}

	lines := append([]cart.Item(nil), c.Items...)
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].ProductID[:], lines[j].ProductID[:]) < 0
	})

	var order *models.Order
	var bought []*models.Product

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order = &models.Order{UserID: buyer.UserID}
		if buyer.HasOrganization() {
			orgID := *buyer.OrganizationID
			order.OrganizationID = &orgID
		}
		bought = bought[:0]

		for _, line := range lines {
			product, err := s.products.LockForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrProductNotFound
				}
				return fmt.Errorf("failed to lock product: %w", err)
			}
			if product.Quantity < line.Quantity {
				return apperrors.NewInsufficientStockError(product.ID, product.Name, line.Quantity, product.Quantity)
			}
			if err := s.products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return apperrors.NewInsufficientStockError(product.ID, product.Name, line.Quantity, product.Quantity)
				}
				return fmt.Errorf("failed to decrement stock: %w", err)
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
			bought = append(bought, product)
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx).WithField("order_id", order.ID.String())
	if err := s.carts.Clear(ctx, cartKey); err != nil {
		log.WithField("error", err.Error()).Warn("order placed but cart could not be cleared")
	}
	log.WithField("items", len(order.Items)).Info("order placed")

	for i := range order.Items {
		order.Items[i].Product = bought[i]
	}
	return toOrderResponse(order), nil
}
