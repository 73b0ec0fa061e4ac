package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-backend/internal/cart"
	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// CheckoutServiceTestSuite defines the test suite for CheckoutService
type CheckoutServiceTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProducts *mocks.MockProductRepositoryInterface
	mockOrders   *mocks.MockOrderRepositoryInterface
	mockTx       *mocks.MockTxManagerInterface
	store        *cart.MemoryStore
	service      *service.CheckoutService
	ctx          context.Context
	buyer        tenant.Principal
	key          string
}

func (suite *CheckoutServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProducts = mocks.NewMockProductRepositoryInterface(suite.ctrl)
	suite.mockOrders = mocks.NewMockOrderRepositoryInterface(suite.ctrl)
	suite.mockTx = mocks.NewMockTxManagerInterface(suite.ctrl)
	suite.store = cart.NewMemoryStore(time.Hour)
	suite.service = service.NewCheckoutService(suite.store, suite.mockProducts, suite.mockOrders, suite.mockTx)
	suite.ctx = context.Background()

	orgID := uuid.New()
	suite.buyer = tenant.Principal{UserID: uuid.New(), Username: "cliente", Role: models.RoleMember, OrganizationID: &orgID}
	suite.key = service.CartKey(suite.buyer)
}

func (suite *CheckoutServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CheckoutServiceTestSuite) runTransactions() {
	suite.mockTx.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func (suite *CheckoutServiceTestSuite) fillCart(lines map[uuid.UUID]int) {
	c := &cart.Cart{}
	for id, n := range lines {
		c.Add(id, n)
	}
	suite.Require().NoError(suite.store.Save(suite.ctx, suite.key, c))
}

func stockedProduct(name, price string, qty int) *models.Product {
	return &models.Product{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func (suite *CheckoutServiceTestSuite) TestBuyTwoOfFive() {
	suite.runTransactions()
	racao := stockedProduct("Ração Premium", "89.90", 5)
	suite.fillCart(map[uuid.UUID]int{racao.ID: 2})

	suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), racao.ID).Return(racao, nil)
	suite.mockProducts.EXPECT().DecrementStock(gomock.Any(), racao.ID, 2).Return(nil)

	var saved *models.Order
	suite.mockOrders.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, order *models.Order) error {
			order.ID = uuid.New()
			saved = order
			return nil
		})

	resp, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)

	suite.Require().NoError(err)
	suite.Equal(suite.buyer.UserID, saved.UserID)
	suite.Equal(*suite.buyer.OrganizationID, *saved.OrganizationID)
	suite.Require().Len(resp.Items, 1)
	suite.Equal(2, resp.Items[0].Quantity)
	suite.Equal("Ração Premium", resp.Items[0].ProductName)
	suite.True(decimal.RequireFromString("179.80").Equal(resp.Total))

	c, err := suite.store.Load(suite.ctx, suite.key)
	suite.Require().NoError(err)
	suite.True(c.IsEmpty())
}

func (suite *CheckoutServiceTestSuite) TestEmptyCart() {
	_, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)
	suite.ErrorIs(err, apperrors.ErrEmptyCart)
}

func (suite *CheckoutServiceTestSuite) TestAnonymousBuyer() {
	_, err := suite.service.Process(suite.ctx, "", tenant.Anonymous())
	suite.ErrorIs(err, apperrors.ErrNotAuthenticated)
}

func (suite *CheckoutServiceTestSuite) TestInsufficientStockRollsBack() {
	suite.runTransactions()
	racao := stockedProduct("Ração Premium", "89.90", 1)
	suite.fillCart(map[uuid.UUID]int{racao.ID: 3})

	suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), racao.ID).Return(racao, nil)

	_, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)

	suite.True(apperrors.IsInsufficientStock(err))
	c, loadErr := suite.store.Load(suite.ctx, suite.key)
	suite.Require().NoError(loadErr)
	suite.Equal(3, c.Quantity(racao.ID))
}

func (suite *CheckoutServiceTestSuite) TestConcurrentDecrementConflict() {
	suite.runTransactions()
	racao := stockedProduct("Ração Premium", "89.90", 5)
	suite.fillCart(map[uuid.UUID]int{racao.ID: 2})

	suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), racao.ID).Return(racao, nil)
	suite.mockProducts.EXPECT().DecrementStock(gomock.Any(), racao.ID, 2).Return(repository.ErrStockConflict)

	_, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)

	suite.True(apperrors.IsInsufficientStock(err))
}

func (suite *CheckoutServiceTestSuite) TestLinesAreLockedInProductIDOrder() {
	suite.runTransactions()
	a := stockedProduct("A", "1.00", 10)
	b := stockedProduct("B", "2.00", 10)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := &cart.Cart{}
	c.Add(b.ID, 1)
	c.Add(a.ID, 1)
	suite.Require().NoError(suite.store.Save(suite.ctx, suite.key, c))

	gomock.InOrder(
		suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), a.ID).Return(a, nil),
		suite.mockProducts.EXPECT().DecrementStock(gomock.Any(), a.ID, 1).Return(nil),
		suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), b.ID).Return(b, nil),
		suite.mockProducts.EXPECT().DecrementStock(gomock.Any(), b.ID, 1).Return(nil),
		suite.mockOrders.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)

	resp, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)

	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("3").Equal(resp.Total))
}

func (suite *CheckoutServiceTestSuite) TestMissingProduct() {
	suite.runTransactions()
	id := uuid.New()
	suite.fillCart(map[uuid.UUID]int{id: 1})
	suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)

	suite.ErrorIs(err, apperrors.ErrProductNotFound)
}

func (suite *CheckoutServiceTestSuite) TestCartClearFailureIsNotReturned() {
	store := mocks.NewMockStore(suite.ctrl)
	svc := service.NewCheckoutService(store, suite.mockProducts, suite.mockOrders, suite.mockTx)
	suite.runTransactions()

	racao := stockedProduct("Ração Premium", "89.90", 5)
	c := &cart.Cart{}
	c.Add(racao.ID, 1)
	released := false
	store.EXPECT().Lock(gomock.Any(), suite.key, gomock.Any()).Return(func() { released = true }, nil)
	store.EXPECT().Load(gomock.Any(), suite.key).Return(c, nil)
	store.EXPECT().Clear(gomock.Any(), suite.key).Return(errors.New("redis down"))
	suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), racao.ID).Return(racao, nil)
	suite.mockProducts.EXPECT().DecrementStock(gomock.Any(), racao.ID, 1).Return(nil)
	suite.mockOrders.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Process(suite.ctx, suite.key, suite.buyer)

	suite.NoError(err)
	suite.True(released)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutOfLockedCartIsRejected() {
	racao := stockedProduct("Ração Premium", "89.90", 5)
	suite.fillCart(map[uuid.UUID]int{racao.ID: 2})
	release, err := suite.store.Lock(suite.ctx, suite.key, time.Minute)
	suite.Require().NoError(err)
	defer release()

	_, err = suite.service.Process(suite.ctx, suite.key, suite.buyer)

	suite.ErrorIs(err, apperrors.ErrCheckoutInProgress)
	suite.True(apperrors.IsConflict(err))
	c, loadErr := suite.store.Load(suite.ctx, suite.key)
	suite.Require().NoError(loadErr)
	suite.Equal(2, c.Quantity(racao.ID))
}

func (suite *CheckoutServiceTestSuite) TestResubmitAfterCheckoutPlacesNoSecondOrder() {
	suite.runTransactions()
	racao := stockedProduct("Ração Premium", "89.90", 5)
	suite.fillCart(map[uuid.UUID]int{racao.ID: 1})

	suite.mockProducts.EXPECT().LockForUpdate(gomock.Any(), racao.ID).Return(racao, nil)
	suite.mockProducts.EXPECT().DecrementStock(gomock.Any(), racao.ID, 1).Return(nil)
	suite.mockOrders.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := suite.service.Process(suite.ctx, suite.key, suite.buyer)
	suite.Require().NoError(err)

	_, err = suite.service.Process(suite.ctx, suite.key, suite.buyer)
	suite.ErrorIs(err, apperrors.ErrEmptyCart)

	release, err := suite.store.Lock(suite.ctx, suite.key, time.Minute)
	suite.Require().NoError(err, "checkout must release the cart lock")
	release()
}

func (suite *CheckoutServiceTestSuite) TestLockBackendFailure() {
	store := mocks.NewMockStore(suite.ctrl)
	svc := service.NewCheckoutService(store, suite.mockProducts, suite.mockOrders, suite.mockTx)
	store.EXPECT().Lock(gomock.Any(), suite.key, gomock.Any()).Return(nil, errors.New("redis down"))

	_, err := svc.Process(suite.ctx, suite.key, suite.buyer)

	suite.Error(err)
	suite.False(apperrors.IsConflict(err))
}

func TestCheckoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}
