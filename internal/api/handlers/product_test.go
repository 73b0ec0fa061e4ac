package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/internal/search"
	"marketplace-backend/internal/service"
	"marketplace-backend/internal/tenant"
	"marketplace-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// ProductHandlerTestSuite defines the test suite for ProductHandler
type ProductHandlerTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProducts *mocks.MockProductServiceInterface
	mockSearch   *mocks.MockSearchServiceInterface
	handler      *ProductHandler
	orgID        uuid.UUID
	manager      tenant.Principal
}

func (suite *ProductHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProducts = mocks.NewMockProductServiceInterface(suite.ctrl)
	suite.mockSearch = mocks.NewMockSearchServiceInterface(suite.ctrl)
	suite.handler = NewProductHandler(suite.mockProducts, suite.mockSearch)

	suite.orgID = uuid.New()
	suite.manager = tenant.Principal{UserID: uuid.New(), Username: "maria", Role: models.RoleManager, OrganizationID: &suite.orgID}
}

func (suite *ProductHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ProductHandlerTestSuite) router(p tenant.Principal) *testutils.HTTPTestSuite {
	httpSuite := testutils.SetupTenantHTTPTest(p)
	products := httpSuite.Router.Group("/api/v1/products")
	{
		products.GET("", suite.handler.ListProducts)
		products.GET("/search", suite.handler.SearchProducts)
		products.GET("/:id", suite.handler.GetProduct)
		products.POST("", suite.handler.CreateProduct)
		products.PUT("/:id", suite.handler.UpdateProduct)
		products.DELETE("/:id", suite.handler.DeleteProduct)
	}
	return httpSuite
}

func (suite *ProductHandlerTestSuite) TestListProductsWithFilters() {
	expected := []service.ProductResponse{{ID: uuid.New(), Name: "Ração Premium", Category: "ALIMENTO"}}

	suite.mockSearch.EXPECT().
		ManualSearch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, f search.SearchFilters) ([]service.ProductResponse, error) {
			suite.Require().NotNil(f.Name)
			suite.Equal("ração", *f.Name)
			suite.Require().NotNil(f.Category)
			suite.Equal("ALIMENTO", *f.Category)
			suite.Require().NotNil(f.MaxPrice)
			suite.True(f.MaxPrice.Equal(decimal.RequireFromString("100.50")))
			suite.Nil(f.MinPrice)
			suite.Nil(f.Sort)
			return expected, nil
		})

	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products?name=ra%C3%A7%C3%A3o&category=ALIMENTO&maxPrice=100.50&sort=", nil)

	var response []service.ProductResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Len(response, 1)
	suite.Equal("Ração Premium", response[0].Name)
}

func (suite *ProductHandlerTestSuite) TestListProductsInvalidPrice() {
	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products?minPrice=cheap", nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "Invalid minPrice")
}

func (suite *ProductHandlerTestSuite) TestListProductsInvertedRange() {
	suite.mockSearch.EXPECT().
		ManualSearch(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.ErrInvalidPriceRange)

	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products?minPrice=10&maxPrice=5", nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "minPrice must not exceed maxPrice")
}

func (suite *ProductHandlerTestSuite) TestSearchProducts() {
	name := "ração"
	suite.mockSearch.EXPECT().
		NaturalLanguageSearch(gomock.Any(), "ração barata").
		Return(&service.AISearchResponse{
			Products:        []service.ProductResponse{},
			FriendlyMessage: "Desculpe, não consegui entender a busca. Fiz uma busca ampla por 'ração barata'.",
			ResolvedFilters: search.SearchFilters{Name: &name},
			Fallback:        true,
		}, nil)

	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products/search?q=ra%C3%A7%C3%A3o+barata", nil)

	var response service.AISearchResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.True(response.Fallback)
	suite.Contains(response.FriendlyMessage, "ração barata")
}

func (suite *ProductHandlerTestSuite) TestSearchProductsBlankQuery() {
	suite.mockSearch.EXPECT().
		NaturalLanguageSearch(gomock.Any(), "").
		Return(nil, apperrors.ErrEmptySearchQuery)

	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products/search", nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "search query is required")
}

func (suite *ProductHandlerTestSuite) TestGetProduct() {
	id := uuid.New()
	suite.mockProducts.EXPECT().
		GetByID(gomock.Any(), id).
		Return(&service.ProductResponse{ID: id, Name: "Coleira", OrganizationName: service.MarketplaceName}, nil)

	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products/"+id.String(), nil)

	var response service.ProductResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Equal(id, response.ID)
	suite.Equal("Marketplace", response.OrganizationName)
}

func (suite *ProductHandlerTestSuite) TestGetProductInvalidID() {
	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products/not-a-uuid", nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "Invalid product ID")
}

func (suite *ProductHandlerTestSuite) TestGetProductNotFound() {
	id := uuid.New()
	suite.mockProducts.EXPECT().GetByID(gomock.Any(), id).Return(nil, apperrors.ErrProductNotFound)

	recorder := suite.router(tenant.Anonymous()).MakeRequest("GET", "/api/v1/products/"+id.String(), nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusNotFound, "product not found")
}

func (suite *ProductHandlerTestSuite) TestCreateProductPassesPrincipal() {
	body := map[string]interface{}{
		"name":     "Ração Premium 10kg",
		"price":    "89.90",
		"quantity": 5,
		"category": "ALIMENTO",
	}

	suite.mockProducts.EXPECT().
		Create(gomock.Any(), suite.manager, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ tenant.Principal, req *service.CreateProductRequest) (*service.ProductResponse, error) {
			suite.Equal("Ração Premium 10kg", req.Name)
			suite.True(req.Price.Equal(decimal.RequireFromString("89.90")))
			suite.Equal(5, req.Quantity)
			return &service.ProductResponse{ID: uuid.New(), Name: req.Name, OrganizationID: &suite.orgID}, nil
		})

	recorder := suite.router(suite.manager).MakeRequest("POST", "/api/v1/products", body)

	var response service.ProductResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusCreated, &response)
	suite.Equal(&suite.orgID, response.OrganizationID)
}

func (suite *ProductHandlerTestSuite) TestCreateProductMalformedBody() {
	recorder := suite.router(suite.manager).MakeRequest("POST", "/api/v1/products", `{"name":`)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusBadRequest, "Invalid request body")
}

func (suite *ProductHandlerTestSuite) TestCreateProductCrossTenant() {
	suite.mockProducts.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.ErrCrossTenantWrite)

	recorder := suite.router(suite.manager).MakeRequest("POST", "/api/v1/products", map[string]interface{}{
		"name":            "x",
		"price":           "1.00",
		"organization_id": uuid.New().String(),
	})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusForbidden, "another organization")
}

func (suite *ProductHandlerTestSuite) TestUpdateProductMarketplaceLocked() {
	id := uuid.New()
	suite.mockProducts.EXPECT().
		Update(gomock.Any(), suite.manager, id, gomock.Any()).
		Return(nil, apperrors.ErrMarketplaceProductLocked)

	recorder := suite.router(suite.manager).MakeRequest("PUT", "/api/v1/products/"+id.String(), map[string]interface{}{"quantity": 3})

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusForbidden, "administrator")
}

func (suite *ProductHandlerTestSuite) TestUpdateProduct() {
	id := uuid.New()
	suite.mockProducts.EXPECT().
		Update(gomock.Any(), suite.manager, id, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ tenant.Principal, _ uuid.UUID, req *service.UpdateProductRequest) (*service.ProductResponse, error) {
			suite.Require().NotNil(req.Quantity)
			suite.Equal(3, *req.Quantity)
			suite.Nil(req.Name)
			return &service.ProductResponse{ID: id, Quantity: 3}, nil
		})

	recorder := suite.router(suite.manager).MakeRequest("PUT", "/api/v1/products/"+id.String(), map[string]interface{}{"quantity": 3})

	var response service.ProductResponse
	testutils.AssertJSONResponse(suite.T(), recorder, http.StatusOK, &response)
	suite.Equal(3, response.Quantity)
}

func (suite *ProductHandlerTestSuite) TestDeleteProduct() {
	id := uuid.New()
	suite.mockProducts.EXPECT().Delete(gomock.Any(), suite.manager, id).Return(nil)

	recorder := suite.router(suite.manager).MakeRequest("DELETE", "/api/v1/products/"+id.String(), nil)

	testutils.AssertNoContent(suite.T(), recorder)
}

func (suite *ProductHandlerTestSuite) TestDeleteProductUnexpectedError() {
	id := uuid.New()
	suite.mockProducts.EXPECT().Delete(gomock.Any(), gomock.Any(), id).Return(errors.New("connection reset"))

	recorder := suite.router(suite.manager).MakeRequest("DELETE", "/api/v1/products/"+id.String(), nil)

	testutils.AssertErrorResponse(suite.T(), recorder, http.StatusInternalServerError, "Failed to delete product")
	suite.NotContains(recorder.Body.String(), "connection reset")
}

func (suite *ProductHandlerTestSuite) TestHandlersSeeTenantScope() {
	id := uuid.New()
	suite.mockProducts.EXPECT().
		GetByID(gomock.Any(), id).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID) (*service.ProductResponse, error) {
			scope := tenant.FromContext(ctx)
			suite.Equal(tenant.ModeScoped, scope.Mode())
			suite.Equal(suite.orgID, scope.OrganizationID())
			return &service.ProductResponse{ID: id}, nil
		})

	recorder := suite.router(suite.manager).MakeRequest("GET", "/api/v1/products/"+id.String(), nil)
	assert.Equal(suite.T(), http.StatusOK, recorder.Code)
}

func TestProductHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProductHandlerTestSuite))
}
