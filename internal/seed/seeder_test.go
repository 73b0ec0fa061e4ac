package seed

import (
	"context"
	"errors"
	"testing"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/internal/search"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SeederTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	orgs     *mocks.MockOrganizationRepositoryInterface
	users    *mocks.MockUserRepositoryInterface
	products *mocks.MockProductRepositoryInterface
	seeder   *Seeder
}

func (suite *SeederTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.orgs = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.users = mocks.NewMockUserRepositoryInterface(suite.ctrl)
	suite.products = mocks.NewMockProductRepositoryInterface(suite.ctrl)
	suite.seeder = NewSeeder(suite.orgs, suite.users, suite.products)
}

func (suite *SeederTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func unrestricted() gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		ctx, ok := x.(context.Context)
		return ok && tenant.FromContext(ctx).Mode() == tenant.ModeUnrestricted
	})
}

func (suite *SeederTestSuite) TestEnsureAdminCreatesAccount() {
	suite.users.EXPECT().GetByUsername(unrestricted(), "admin").Return(nil, gorm.ErrRecordNotFound)
	suite.users.EXPECT().
		Create(unrestricted(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			suite.Equal("admin", u.Username)
			suite.Equal(models.RoleAdmin, u.Role)
			suite.Nil(u.OrganizationID)
			suite.NoError(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("admin123")))
			return nil
		})

	created, err := suite.seeder.EnsureAdmin(context.Background(), "admin", "admin123")

	suite.NoError(err)
	suite.True(created)
}

func (suite *SeederTestSuite) TestEnsureAdminExisting() {
	suite.users.EXPECT().GetByUsername(unrestricted(), "admin").Return(&models.User{Username: "admin"}, nil)

	created, err := suite.seeder.EnsureAdmin(context.Background(), "admin", "admin123")

	suite.NoError(err)
	suite.False(created)
}

func (suite *SeederTestSuite) TestEnsureAdminNeedsCredentials() {
	_, err := suite.seeder.EnsureAdmin(context.Background(), " ", "x")

	suite.True(apperrors.IsConfiguration(err))
}

func (suite *SeederTestSuite) TestApplyCreatesMissingRows() {
	catalog, err := ParseCatalog([]byte(petShopCatalog))
	suite.Require().NoError(err)
	orgID := uuid.New()

	suite.orgs.EXPECT().GetByName(unrestricted(), "Pet Shop Central").Return(nil, gorm.ErrRecordNotFound)
	suite.orgs.EXPECT().
		Create(unrestricted(), gomock.Any()).
		DoAndReturn(func(_ context.Context, org *models.Organization) error {
			org.ID = orgID
			return nil
		})

	suite.products.EXPECT().Find(unrestricted(), gomock.Any()).Return(nil, nil).Times(2)
	var createdProducts []*models.Product
	suite.products.EXPECT().
		Create(unrestricted(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.Product) error {
			createdProducts = append(createdProducts, p)
			return nil
		}).
		Times(2)

	suite.users.EXPECT().GetByUsername(unrestricted(), "maria").Return(nil, gorm.ErrRecordNotFound)
	suite.users.EXPECT().
		Create(unrestricted(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			suite.Equal(models.RoleManager, u.Role)
			suite.Equal(&orgID, u.OrganizationID)
			return nil
		})

	result, err := suite.seeder.Apply(context.Background(), catalog)

	suite.Require().NoError(err)
	suite.Equal(&Result{OrganizationsCreated: 1, ProductsCreated: 2, UsersCreated: 1}, result)
	suite.Require().Len(createdProducts, 2)
	suite.Equal(models.CategoryAlimento, createdProducts[0].Category)
	suite.Equal(&orgID, createdProducts[0].OrganizationID)
	suite.True(createdProducts[0].Price.Equal(decimal.RequireFromString("89.90")))
	suite.Nil(createdProducts[1].OrganizationID)
	suite.Equal(models.CategoryMedicamento, createdProducts[1].Category)
}

func (suite *SeederTestSuite) TestApplyIsIdempotent() {
	catalog, err := ParseCatalog([]byte(petShopCatalog))
	suite.Require().NoError(err)
	orgID := uuid.New()

	suite.orgs.EXPECT().GetByName(gomock.Any(), "Pet Shop Central").Return(&models.Organization{BaseModel: models.BaseModel{ID: orgID}, Name: "Pet Shop Central"}, nil)
	suite.products.EXPECT().
		Find(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q search.Query) ([]models.Product, error) {
			name := *search.Describe(q).Name
			if name == "Vermífugo" {
				return []models.Product{{Name: "Vermífugo"}}, nil
			}
			return []models.Product{
				{Name: "Ração Premium 10kg"},
				{Name: "ração premium 10KG", OrganizationID: &orgID},
			}, nil
		}).
		Times(2)
	suite.users.EXPECT().GetByUsername(gomock.Any(), "maria").Return(&models.User{Username: "maria"}, nil)

	result, err := suite.seeder.Apply(context.Background(), catalog)

	suite.Require().NoError(err)
	suite.Equal(&Result{}, result)
}

func (suite *SeederTestSuite) TestApplyUnknownProductOrganization() {
	catalog := &Catalog{Products: []ProductData{{Name: "Coleira", Price: "10", Organization: "Ninguém"}}}
	suite.orgs.EXPECT().GetByName(gomock.Any(), "Ninguém").Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.seeder.Apply(context.Background(), catalog)

	suite.ErrorIs(err, apperrors.ErrOrganizationNotFound)
}

func (suite *SeederTestSuite) TestApplyRejectsInvalidProducts() {
	cases := map[string]ProductData{
		"bad price":    {Name: "A", Price: "cheap"},
		"negative":     {Name: "A", Price: "-1"},
		"bad category": {Name: "A", Price: "1", Category: "ROUPA"},
		"no name":      {Price: "1"},
		"bad quantity": {Name: "A", Price: "1", Quantity: -2},
	}
	for name, data := range cases {
		suite.Run(name, func() {
			_, err := suite.seeder.Apply(context.Background(), &Catalog{Products: []ProductData{data}})
			suite.True(apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func (suite *SeederTestSuite) TestApplyMemberWithoutOrganization() {
	catalog := &Catalog{Users: []UserData{{Username: "joao", Password: "secret1", Role: "member"}}}

	_, err := suite.seeder.Apply(context.Background(), catalog)

	suite.True(apperrors.IsValidation(err))
}

func (suite *SeederTestSuite) TestApplyPropagatesRepositoryErrors() {
	catalog := &Catalog{Organizations: []OrganizationData{{Name: "X"}}}
	suite.orgs.EXPECT().GetByName(gomock.Any(), "X").Return(nil, errors.New("connection reset"))

	_, err := suite.seeder.Apply(context.Background(), catalog)

	suite.ErrorContains(err, "connection reset")
}

func TestSeederTestSuite(t *testing.T) {
	suite.Run(t, new(SeederTestSuite))
}
