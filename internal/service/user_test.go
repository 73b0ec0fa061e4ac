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
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserServiceTestSuite defines the test suite for UserService
type UserServiceTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockUsers *mocks.MockUserRepositoryInterface
	mockOrgs  *mocks.MockOrganizationRepositoryInterface
	service   *service.UserService
	ctx       context.Context
	org       *models.Organization
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockUsers = mocks.NewMockUserRepositoryInterface(suite.ctrl)
	suite.mockOrgs = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.service = service.NewUserService(suite.mockUsers, suite.mockOrgs, service.NewValidator())
	suite.ctx = context.Background()
	suite.org = &models.Organization{BaseModel: models.BaseModel{ID: uuid.New()}, Name: "Pet Feliz"}
}

func (suite *UserServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// unrestricted matches contexts carrying an unrestricted tenant scope
func unrestricted() gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		ctx, ok := x.(context.Context)
		return ok && tenant.FromContext(ctx).Mode() == tenant.ModeUnrestricted
	})
}

func (suite *UserServiceTestSuite) TestRegister() {
	suite.mockOrgs.EXPECT().GetByID(unrestricted(), suite.org.ID).Return(suite.org, nil)
	suite.mockUsers.EXPECT().GetByUsername(unrestricted(), "maria").Return(nil, gorm.ErrRecordNotFound)

	var created *models.User
	suite.mockUsers.EXPECT().Create(unrestricted(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u *models.User) error {
			created = u
			return nil
		})

	resp, err := suite.service.Register(suite.ctx, &service.RegisterRequest{
		Username:       " maria ",
		Password:       "segredo1",
		OrganizationID: suite.org.ID,
	})

	suite.Require().NoError(err)
	suite.Equal("MEMBER", resp.Role)
	suite.Equal("Pet Feliz", resp.OrganizationName)
	suite.Equal("maria", created.Username)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("segredo1")))
}

func (suite *UserServiceTestSuite) TestRegisterUnknownOrganization() {
	suite.mockOrgs.EXPECT().GetByID(gomock.Any(), suite.org.ID).Return(nil, gorm.ErrRecordNotFound)

	_, err := suite.service.Register(suite.ctx, &service.RegisterRequest{Username: "maria", Password: "segredo1", OrganizationID: suite.org.ID})

	suite.ErrorIs(err, apperrors.ErrOrganizationNotFound)
}

func (suite *UserServiceTestSuite) TestRegisterTakenUsername() {
	suite.mockOrgs.EXPECT().GetByID(gomock.Any(), suite.org.ID).Return(suite.org, nil)
	suite.mockUsers.EXPECT().GetByUsername(gomock.Any(), "maria").Return(&models.User{Username: "maria"}, nil)

	_, err := suite.service.Register(suite.ctx, &service.RegisterRequest{Username: "maria", Password: "segredo1", OrganizationID: suite.org.ID})

	suite.ErrorIs(err, apperrors.ErrUserExists)
}

func (suite *UserServiceTestSuite) TestRegisterValidation() {
	_, err := suite.service.Register(suite.ctx, &service.RegisterRequest{Username: "ma", Password: "segredo1", OrganizationID: suite.org.ID})
	suite.True(apperrors.IsValidation(err))

	_, err = suite.service.Register(suite.ctx, &service.RegisterRequest{Username: "maria", Password: "123"})
	suite.True(apperrors.IsValidation(err))
}

func (suite *UserServiceTestSuite) TestCreateRoleRules() {
	orgID := suite.org.ID

	_, err := suite.service.Create(suite.ctx, &service.CreateUserRequest{Username: "chefe", Password: "segredo1", Role: "superuser"})
	suite.True(apperrors.IsValidation(err))

	_, err = suite.service.Create(suite.ctx, &service.CreateUserRequest{Username: "chefe", Password: "segredo1", Role: "ADMIN", OrganizationID: &orgID})
	suite.True(apperrors.IsValidation(err))

	_, err = suite.service.Create(suite.ctx, &service.CreateUserRequest{Username: "chefe", Password: "segredo1", Role: "manager"})
	suite.True(apperrors.IsValidation(err))
}

func (suite *UserServiceTestSuite) TestCreateManager() {
	orgID := suite.org.ID
	suite.mockOrgs.EXPECT().GetByID(suite.ctx, orgID).Return(suite.org, nil)
	suite.mockUsers.EXPECT().GetByUsername(unrestricted(), "gerente").Return(nil, gorm.ErrRecordNotFound)
	suite.mockUsers.EXPECT().Create(suite.ctx, gomock.Any()).Return(nil)

	resp, err := suite.service.Create(suite.ctx, &service.CreateUserRequest{
		Username:       "gerente",
		Password:       "segredo1",
		Role:           "ROLE_MANAGER",
		OrganizationID: &orgID,
	})

	suite.Require().NoError(err)
	suite.Equal("MANAGER", resp.Role)
	suite.Equal(orgID, *resp.OrganizationID)
}

func (suite *UserServiceTestSuite) TestCreateDuplicateRace() {
	suite.mockUsers.EXPECT().GetByUsername(gomock.Any(), "admin2").Return(nil, gorm.ErrRecordNotFound)
	suite.mockUsers.EXPECT().Create(suite.ctx, gomock.Any()).Return(gorm.ErrDuplicatedKey)

	_, err := suite.service.Create(suite.ctx, &service.CreateUserRequest{Username: "admin2", Password: "segredo1", Role: "ADMIN"})

	suite.ErrorIs(err, apperrors.ErrUserExists)
}

func (suite *UserServiceTestSuite) TestListClampsPagination() {
	suite.mockUsers.EXPECT().GetAll(suite.ctx, 20, 0).Return([]models.User{{Username: "a"}}, int64(1), nil)

	resp, err := suite.service.List(suite.ctx, 0, 1000)

	suite.Require().NoError(err)
	suite.Equal(1, resp.Page)
	suite.Equal(20, resp.PageSize)
	suite.Len(resp.Users, 1)
}

func (suite *UserServiceTestSuite) TestGetAndDeleteNotFound() {
	id := uuid.New()
	suite.mockUsers.EXPECT().GetByID(suite.ctx, id).Return(nil, gorm.ErrRecordNotFound)
	suite.mockUsers.EXPECT().Delete(suite.ctx, id).Return(gorm.ErrRecordNotFound)

	_, err := suite.service.GetByID(suite.ctx, id)
	suite.ErrorIs(err, apperrors.ErrUserNotFound)
	suite.ErrorIs(suite.service.Delete(suite.ctx, id), apperrors.ErrUserNotFound)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
