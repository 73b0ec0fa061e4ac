package handlers

import (
	"net/http"
	"testing"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"
	"marketplace-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CartHandlerTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockCarts    *mocks.MockCartServiceInterface
	mockCheckout *mocks.MockCheckoutServiceInterface
	buyer        tenant.Principal
	httpSuite    *testutils.HTTPTestSuite
}

func (suite *CartHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockCarts = mocks.NewMockCartServiceInterface(suite.ctrl)
	suite.mockCheckout = mocks.NewMockCheckoutServiceInterface(suite.ctrl)
	handler := NewCartHandler(suite.mockCarts, suite.mockCheckout)

	orgID := uuid.New()
	suite.buyer = tenant.Principal{UserID: uuid.New(), Username: "joao", Role: models.RoleMember, OrganizationID: &orgID}

	suite.httpSuite = testutils.SetupTenantHTTPTest(suite.buyer)
	v1 := suite.httpSuite.Router.Group("/api/v1")
	v1.GET("/cart", handler.GetCart)
	v1.DELETE("/cart", handler.ClearCart)
	v1.POST("/cart/items", handler.AddItem)
	v1.DELETE("/cart/items/:productId", handler.RemoveItem)
	v1.POST("/checkout", handler.Checkout)
}

func (suite *CartHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CartHandlerTestSuite) TestGetCart() {
	productID := uuid.New()
	suite.mockCarts.EXPECT().
		Get(gomock.Any(), suite.buyer).
		Return(&service.CartResponse{
			Items: []service.CartLine{{ProductID: productID, Name: "Ração", Quantity: 2, Available: true, InStock: true}},
			Total: decimal.RequireFromString("179.80"),
		}, nil)

	recorder := suite.httpSuite.MakeRequest("GET", "/api/v1/cart", nil)

	var response service.CartResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Len(response.Items, 1)
	suite.True(response.Total.Equal(decimal.RequireFromString("179.80")))
}

func (suite *CartHandlerTestSuite) TestAddItem() {
	productID := uuid.New()
	suite.mockCarts.EXPECT().
		AddItem(gomock.Any(), suite.buyer, &service.AddCartItemRequest{ProductID: productID, Quantity: 2}).
		Return(&service.CartResponse{Items: []service.CartLine{{ProductID: productID, Quantity: 2}}}, nil)

	recorder := suite.httpSuite.MakeRequest("POST", "/api/v1/cart/items", map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   2,
	})

	suite.Equal(http.StatusOK, recorder.Code)
}

func (suite *CartHandlerTestSuite) TestAddItemInsufficientStock() {
	productID := uuid.New()
	suite.mockCarts.EXPECT().
		AddItem(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.NewInsufficientStockError(productID, "Ração", 6, 5))

	recorder := suite.httpSuite.MakeRequest("POST", "/api/v1/cart/items", map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   6,
	})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusConflict, "insufficient stock")
}

func (suite *CartHandlerTestSuite) TestAddItemBadProductID() {
	recorder := suite.httpSuite.MakeRequest("POST", "/api/v1/cart/items", map[string]interface{}{
		"product_id": "nope",
		"quantity":   1,
	})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "Invalid request body")
}

func (suite *CartHandlerTestSuite) TestRemoveItem() {
	productID := uuid.New()
	suite.mockCarts.EXPECT().
		RemoveItem(gomock.Any(), suite.buyer, productID).
		Return(&service.CartResponse{Items: []service.CartLine{}}, nil)

	recorder := suite.httpSuite.MakeRequest("DELETE", "/api/v1/cart/items/"+productID.String(), nil)

	suite.Equal(http.StatusOK, recorder.Code)
}

func (suite *CartHandlerTestSuite) TestClearCart() {
	suite.mockCarts.EXPECT().Clear(gomock.Any(), suite.buyer).Return(nil)

	recorder := suite.httpSuite.MakeRequest("DELETE", "/api/v1/cart", nil)

	testutils.AssertNoContent(suite.T(), recorder)
}

func (suite *CartHandlerTestSuite) TestCheckoutUsesBuyerCart() {
	orderID := uuid.New()
	suite.mockCheckout.EXPECT().
		Process(gomock.Any(), suite.buyer.UserID.String(), suite.buyer).
		Return(&service.OrderResponse{ID: orderID, UserID: suite.buyer.UserID, Total: decimal.RequireFromString("179.80")}, nil)

	recorder := suite.httpSuite.MakeRequest("POST", "/api/v1/checkout", nil)

	var response service.OrderResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusCreated, &response)
	suite.Equal(orderID, response.ID)
}

func (suite *CartHandlerTestSuite) TestCheckoutErrors() {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty cart", apperrors.ErrEmptyCart, http.StatusBadRequest},
		{"vanished product", apperrors.ErrProductNotFound, http.StatusNotFound},
		{"stock", apperrors.NewInsufficientStockError(uuid.New(), "Ração", 2, 1), http.StatusConflict},
		{"checkout in progress", apperrors.ErrCheckoutInProgress, http.StatusConflict},
		{"anonymous", apperrors.ErrNotAuthenticated, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.mockCheckout.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

			recorder := suite.httpSuite.MakeRequest("POST", "/api/v1/checkout", nil)

			testutils.AssertErrorResponse(suite.T(), recorder, tc.status, "")
		})
	}
}

func TestCartHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}
