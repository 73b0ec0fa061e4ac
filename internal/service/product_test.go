package service_test

import (
	"context"
	"testing"

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

// ProductServiceTestSuite defines the test suite for ProductService
type ProductServiceTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProducts *mocks.MockProductRepositoryInterface
	mockOrgs     *mocks.MockOrganizationRepositoryInterface
	service      *service.ProductService
	ctx          context.Context

	orgID   uuid.UUID
	admin   tenant.Principal
	manager tenant.Principal
	member  tenant.Principal
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProducts = mocks.NewMockProductRepositoryInterface(suite.ctrl)
	suite.mockOrgs = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.service = service.NewProductService(suite.mockProducts, suite.mockOrgs, service.NewValidator())
	suite.ctx = context.Background()

	suite.orgID = uuid.New()
	orgID := suite.orgID
	suite.admin = tenant.Principal{UserID: uuid.New(), Username: "admin", Role: models.RoleAdmin}
	suite.manager = tenant.Principal{UserID: uuid.New(), Username: "gerente", Role: models.RoleManager, OrganizationID: &orgID}
	suite.member = tenant.Principal{UserID: uuid.New(), Username: "cliente", Role: models.RoleMember, OrganizationID: &orgID}
}

func (suite *ProductServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ProductServiceTestSuite) createRequest() *service.CreateProductRequest {
	return &service.CreateProductRequest{
		Name:     "Coleira Antipulgas",
		Price:    decimal.RequireFromString("45.00"),
		Quantity: 5,
		Category: "medicamento",
	}
}

// expectCreate captures the created product and serves it back on the re-fetch
func (suite *ProductServiceTestSuite) expectCreate(org *models.Organization) **models.Product {
	var created *models.Product
	suite.mockProducts.EXPECT().Create(suite.ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, p *models.Product) error {
			p.ID = uuid.New()
			created = p
			return nil
		})
	suite.mockProducts.EXPECT().GetByID(suite.ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			created.Organization = org
			return created, nil
		})
	return &created
}

func (suite *ProductServiceTestSuite) TestManagerCreatesInOwnOrganization() {
	created := suite.expectCreate(&models.Organization{Name: "Pet Feliz"})

	resp, err := suite.service.Create(suite.ctx, suite.manager, suite.createRequest())

	suite.Require().NoError(err)
	suite.Equal(suite.orgID, *(*created).OrganizationID)
	suite.Equal(models.CategoryMedicamento, (*created).Category)
	suite.Equal("Pet Feliz", resp.OrganizationName)
}

func (suite *ProductServiceTestSuite) TestManagerCannotCreateForAnotherOrganization() {
	req := suite.createRequest()
	other := uuid.New()
	req.OrganizationID = &other

	_, err := suite.service.Create(suite.ctx, suite.manager, req)

	suite.ErrorIs(err, apperrors.ErrCrossTenantWrite)
}

func (suite *ProductServiceTestSuite) TestMemberCannotCreate() {
	_, err := suite.service.Create(suite.ctx, suite.member, suite.createRequest())
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ProductServiceTestSuite) TestAdminCreatesMarketplaceProduct() {
	req := suite.createRequest()
	req.Category = ""
	created := suite.expectCreate(nil)

	resp, err := suite.service.Create(suite.ctx, suite.admin, req)

	suite.Require().NoError(err)
	suite.Nil((*created).OrganizationID)
	suite.Equal(models.CategoryOutro, (*created).Category)
	suite.Equal("Marketplace", resp.OrganizationName)
}

func (suite *ProductServiceTestSuite) TestAdminCreateForMissingOrganization() {
	req := suite.createRequest()
	missing := uuid.New()
	req.OrganizationID = &missing
	suite.mockOrgs.EXPECT().GetByID(suite.ctx, missing).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.service.Create(suite.ctx, suite.admin, req)

	suite.ErrorIs(err, apperrors.ErrOrganizationNotFound)
}

func (suite *ProductServiceTestSuite) TestCreateValidation() {
	cases := map[string]func(*service.CreateProductRequest){
		"blank name":       func(r *service.CreateProductRequest) { r.Name = "" },
		"negative price":   func(r *service.CreateProductRequest) { r.Price = decimal.RequireFromString("-1") },
		"three decimals":   func(r *service.CreateProductRequest) { r.Price = decimal.RequireFromString("1.005") },
		"negative stock":   func(r *service.CreateProductRequest) { r.Quantity = -1 },
		"unknown category": func(r *service.CreateProductRequest) { r.Category = "ELETRONICO" },
	}
	for name, mutate := range cases {
		req := suite.createRequest()
		mutate(req)
		_, err := suite.service.Create(suite.ctx, suite.admin, req)
		suite.True(apperrors.IsValidation(err), name)
	}
}

func (suite *ProductServiceTestSuite) TestManagerCannotUpdateMarketplaceProduct() {
	id := uuid.New()
	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(&models.Product{BaseModel: models.BaseModel{ID: id}}, nil)

	name := "Novo nome"
	_, err := suite.service.Update(suite.ctx, suite.manager, id, &service.UpdateProductRequest{Name: &name})

	suite.ErrorIs(err, apperrors.ErrMarketplaceProductLocked)
}

func (suite *ProductServiceTestSuite) TestUpdateOutsideScopeIsNotFound() {
	id := uuid.New()
	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.service.Update(suite.ctx, suite.manager, id, &service.UpdateProductRequest{})

	suite.ErrorIs(err, apperrors.ErrProductNotFound)
}

func (suite *ProductServiceTestSuite) TestManagerUpdatesOwnProduct() {
	id := uuid.New()
	orgID := suite.orgID
	product := &models.Product{BaseModel: models.BaseModel{ID: id}, Name: "Bolinha", Price: decimal.RequireFromString("10"), Quantity: 3, OrganizationID: &orgID}

	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(product, nil).Times(2)
	suite.mockProducts.EXPECT().Update(suite.ctx, product, []string{"price", "quantity"}).Return(nil)

	price := decimal.RequireFromString("12.50")
	qty := 7
	resp, err := suite.service.Update(suite.ctx, suite.manager, id, &service.UpdateProductRequest{Price: &price, Quantity: &qty})

	suite.Require().NoError(err)
	suite.Equal(7, resp.Quantity)
	suite.True(price.Equal(resp.Price))
	suite.Equal("Bolinha", resp.Name)
}

func (suite *ProductServiceTestSuite) TestRenameWritesOnlyName() {
	id := uuid.New()
	orgID := suite.orgID
	product := &models.Product{BaseModel: models.BaseModel{ID: id}, Name: "Bolinha", Quantity: 5, OrganizationID: &orgID}

	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(product, nil).Times(2)
	suite.mockProducts.EXPECT().Update(suite.ctx, product, []string{"name"}).Return(nil)

	name := "Bolinha Grande"
	_, err := suite.service.Update(suite.ctx, suite.manager, id, &service.UpdateProductRequest{Name: &name})

	suite.NoError(err)
}

func (suite *ProductServiceTestSuite) TestEmptyUpdateWritesNothing() {
	id := uuid.New()
	orgID := suite.orgID
	product := &models.Product{BaseModel: models.BaseModel{ID: id}, Name: "Bolinha", Quantity: 5, OrganizationID: &orgID}
	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(product, nil)

	resp, err := suite.service.Update(suite.ctx, suite.manager, id, &service.UpdateProductRequest{})

	suite.Require().NoError(err)
	suite.Equal(5, resp.Quantity)
}

func (suite *ProductServiceTestSuite) TestDeleteReferencedProduct() {
	id := uuid.New()
	orgID := suite.orgID
	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(&models.Product{BaseModel: models.BaseModel{ID: id}, OrganizationID: &orgID}, nil)
	suite.mockProducts.EXPECT().Delete(suite.ctx, id).Return(gorm.ErrForeignKeyViolated)

	err := suite.service.Delete(suite.ctx, suite.manager, id)

	suite.True(apperrors.IsValidation(err))
}

func (suite *ProductServiceTestSuite) TestAdminDeletesMarketplaceProduct() {
	id := uuid.New()
	suite.mockProducts.EXPECT().GetByID(suite.ctx, id).Return(&models.Product{BaseModel: models.BaseModel{ID: id}}, nil)
	suite.mockProducts.EXPECT().Delete(suite.ctx, id).Return(nil)

	suite.NoError(suite.service.Delete(suite.ctx, suite.admin, id))
}

func (suite *ProductServiceTestSuite) TestMemberCannotDelete() {
	err := suite.service.Delete(suite.ctx, suite.member, uuid.New())
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
