package service_test

import (
	"context"
	"testing"
	"time"

	"marketplace-backend/internal/cart"
	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// CartServiceTestSuite defines the test suite for CartService
type CartServiceTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProducts *mocks.MockProductRepositoryInterface
	store        *cart.MemoryStore
	service      *service.CartService
	ctx          context.Context
	buyer        tenant.Principal
	racao        *models.Product
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProducts = mocks.NewMockProductRepositoryInterface(suite.ctrl)
	suite.store = cart.NewMemoryStore(time.Hour)
	suite.service = service.NewCartService(suite.store, suite.mockProducts, service.NewValidator())
	suite.ctx = context.Background()

	orgID := uuid.New()
	suite.buyer = tenant.Principal{UserID: uuid.New(), Username: "cliente", Role: models.RoleMember, OrganizationID: &orgID}
	suite.racao = &models.Product{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Name:      "Ração Premium",
		Price:     decimal.RequireFromString("89.90"),
		Quantity:  5,
	}
}

func (suite *CartServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CartServiceTestSuite) TestAddAndGet() {
	suite.mockProducts.EXPECT().GetByID(suite.ctx, suite.racao.ID).Return(suite.racao, nil).AnyTimes()

	resp, err := suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 2})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Items, 1)
	suite.True(resp.Items[0].Available)
	suite.True(decimal.RequireFromString("179.80").Equal(resp.Total))

	resp, err = suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 1})
	suite.Require().NoError(err)
	suite.Equal(3, resp.Items[0].Quantity)

	resp, err = suite.service.Get(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Equal(3, resp.Items[0].Quantity)
	suite.True(resp.Items[0].InStock)
}

func (suite *CartServiceTestSuite) TestAddBeyondStock() {
	suite.mockProducts.EXPECT().GetByID(suite.ctx, suite.racao.ID).Return(suite.racao, nil).AnyTimes()

	_, err := suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 4})
	suite.Require().NoError(err)

	_, err = suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 2})
	suite.True(apperrors.IsInsufficientStock(err))

	c, err := suite.store.Load(suite.ctx, service.CartKey(suite.buyer))
	suite.Require().NoError(err)
	suite.Equal(4, c.Quantity(suite.racao.ID))
}

func (suite *CartServiceTestSuite) TestAddInvisibleProduct() {
	id := uuid.New()
	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: id, Quantity: 1})
	suite.ErrorIs(err, apperrors.ErrProductNotFound)
}

func (suite *CartServiceTestSuite) TestAddNonPositiveQuantity() {
	_, err := suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 0})
	suite.ErrorIs(err, apperrors.ErrInvalidQuantity)
}

func (suite *CartServiceTestSuite) TestRemoveIsIdempotent() {
	suite.mockProducts.EXPECT().GetByID(suite.ctx, suite.racao.ID).Return(suite.racao, nil).AnyTimes()
	_, err := suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 1})
	suite.Require().NoError(err)

	first, err := suite.service.RemoveItem(suite.ctx, suite.buyer, suite.racao.ID)
	suite.Require().NoError(err)
	second, err := suite.service.RemoveItem(suite.ctx, suite.buyer, suite.racao.ID)
	suite.Require().NoError(err)

	suite.Equal(first, second)
	suite.Empty(second.Items)
	suite.True(second.Total.IsZero())
}

func (suite *CartServiceTestSuite) TestUnavailableLineIsNotTotaled() {
	gone := uuid.New()
	c := &cart.Cart{}
	c.Add(suite.racao.ID, 1)
	c.Add(gone, 2)
	suite.Require().NoError(suite.store.Save(suite.ctx, service.CartKey(suite.buyer), c))

	suite.mockProducts.EXPECT().GetByID(suite.ctx, suite.racao.ID).Return(suite.racao, nil)
	suite.mockProducts.EXPECT().GetByID(suite.ctx, gone).Return(nil, gorm.ErrRecordNotFound)

	resp, err := suite.service.Get(suite.ctx, suite.buyer)

	suite.Require().NoError(err)
	suite.Len(resp.Items, 2)
	suite.False(resp.Items[1].Available)
	suite.True(suite.racao.Price.Equal(resp.Total))
}

func (suite *CartServiceTestSuite) TestAnonymousIsRejected() {
	_, err := suite.service.Get(suite.ctx, tenant.Anonymous())
	suite.ErrorIs(err, apperrors.ErrNotAuthenticated)
	suite.ErrorIs(suite.service.Clear(suite.ctx, tenant.Anonymous()), apperrors.ErrNotAuthenticated)
}

func (suite *CartServiceTestSuite) TestClear() {
	suite.mockProducts.EXPECT().GetByID(suite.ctx, suite.racao.ID).Return(suite.racao, nil)
	_, err := suite.service.AddItem(suite.ctx, suite.buyer, &service.AddCartItemRequest{ProductID: suite.racao.ID, Quantity: 1})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Clear(suite.ctx, suite.buyer))

	resp, err := suite.service.Get(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Empty(resp.Items)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
