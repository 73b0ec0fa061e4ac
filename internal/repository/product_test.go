//go:build integration
// +build integration

package repository

import (
	"context"
	"sync"
	"testing"

	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/database/models"
	"marketplace-backend/internal/search"
	"marketplace-backend/internal/tenant"
	"marketplace-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// ProductRepositoryTestSuite tests the ProductRepository and tenant isolation
type ProductRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *ProductRepository
	tx            *TxManager
	factories     *testutils.FactorySet

	system  context.Context
	orgA    *models.Organization
	orgB    *models.Organization
	scopedA context.Context
	scopedB context.Context
}

// SetupSuite runs before all tests in the suite
func (suite *ProductRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewProductRepository(suite.baseTestSuite.DB)
	suite.tx = NewTxManager(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
	suite.system = tenant.System(context.Background())
}

// TearDownSuite runs after all tests in the suite
func (suite *ProductRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest creates two tenants
func (suite *ProductRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()

	orgs := NewOrganizationRepository(suite.baseTestSuite.DB)
	suite.orgA = suite.factories.Organization.WithName("Org A")
	suite.orgB = suite.factories.Organization.WithName("Org B")
	suite.Require().NoError(orgs.Create(suite.system, suite.orgA))
	suite.Require().NoError(orgs.Create(suite.system, suite.orgB))

	suite.scopedA = tenant.WithScope(context.Background(), tenant.ScopedTo(suite.orgA.ID))
	suite.scopedB = tenant.WithScope(context.Background(), tenant.ScopedTo(suite.orgB.ID))
}

func (suite *ProductRepositoryTestSuite) seed() (shared, ownedA, ownedB *models.Product) {
	shared = suite.factories.Product.With("Ração Premium", models.CategoryAlimento, "89.90", 10)
	ownedA = suite.factories.Product.With("Antipulgas", models.CategoryMedicamento, "45.00", 5)
	ownedB = suite.factories.Product.With("Bolinha", models.CategoryBrinquedo, "12.00", 20)

	suite.Require().NoError(suite.repo.Create(suite.system, shared))
	suite.Require().NoError(suite.repo.Create(suite.scopedA, ownedA))
	suite.Require().NoError(suite.repo.Create(suite.scopedB, ownedB))
	return shared, ownedA, ownedB
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

// TestCreateStampsOrganization tests that scoped creates are stamped
func (suite *ProductRepositoryTestSuite) TestCreateStampsOrganization() {
	_, ownedA, _ := suite.seed()

	suite.Require().NotNil(ownedA.OrganizationID)
	suite.Equal(suite.orgA.ID, *ownedA.OrganizationID)
}

// TestVisibility tests which rows each scope can read
func (suite *ProductRepositoryTestSuite) TestVisibility() {
	shared, ownedA, ownedB := suite.seed()
	all := search.Query{Where: search.MatchAll{}, Sort: search.SortNameAsc}

	products, err := suite.repo.Find(suite.scopedA, all)
	suite.NoError(err)
	suite.ElementsMatch([]string{shared.Name, ownedA.Name}, names(products))

	products, err = suite.repo.Find(suite.system, all)
	suite.NoError(err)
	suite.Len(products, 3)

	products, err = suite.repo.Find(context.Background(), all)
	suite.NoError(err)
	suite.Empty(products)

	_, err = suite.repo.GetByID(suite.scopedA, ownedB.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	exists, err := suite.repo.Exists(suite.scopedB, ownedA.ID)
	suite.NoError(err)
	suite.False(exists)
}

// TestWritesStayInsideScope tests that cross-tenant writes affect nothing
func (suite *ProductRepositoryTestSuite) TestWritesStayInsideScope() {
	shared, ownedA, _ := suite.seed()

	ownedA.Name = "hijacked"
	suite.ErrorIs(suite.repo.Update(suite.scopedB, ownedA, []string{"name"}), gorm.ErrRecordNotFound)
	suite.ErrorIs(suite.repo.Delete(suite.scopedB, ownedA.ID), gorm.ErrRecordNotFound)

	// marketplace rows are readable but not writable by a tenant
	shared.Name = "renamed"
	suite.ErrorIs(suite.repo.Update(suite.scopedA, shared, []string{"name"}), gorm.ErrRecordNotFound)

	stored, err := suite.repo.GetByID(suite.system, ownedA.ID)
	suite.NoError(err)
	suite.Equal("Antipulgas", stored.Name)
}

// TestUpdateCannotMoveTenant tests that a scoped update keeps the organization
func (suite *ProductRepositoryTestSuite) TestUpdateCannotMoveTenant() {
	_, ownedA, _ := suite.seed()

	ownedA.OrganizationID = &suite.orgB.ID
	ownedA.Price = decimal.RequireFromString("50.00")
	suite.NoError(suite.repo.Update(suite.scopedA, ownedA, nil))

	stored, err := suite.repo.GetByID(suite.system, ownedA.ID)
	suite.NoError(err)
	suite.Equal(suite.orgA.ID, *stored.OrganizationID)
	suite.True(decimal.RequireFromString("50.00").Equal(stored.Price))
}

// TestStaleEditKeepsDecrementedStock tests that renaming from a copy read before
// a checkout does not restore the sold units
func (suite *ProductRepositoryTestSuite) TestStaleEditKeepsDecrementedStock() {
	_, ownedA, _ := suite.seed()

	stale, err := suite.repo.GetByID(suite.scopedA, ownedA.ID)
	suite.Require().NoError(err)
	before := stale.Quantity

	suite.Require().NoError(suite.tx.WithinTransaction(suite.scopedA, func(ctx context.Context) error {
		return suite.repo.DecrementStock(ctx, ownedA.ID, 2)
	}))

	stale.Name = "Antipulgas Plus"
	suite.Require().NoError(suite.repo.Update(suite.scopedA, stale, []string{"name"}))

	stored, err := suite.repo.GetByID(suite.system, ownedA.ID)
	suite.Require().NoError(err)
	suite.Equal("Antipulgas Plus", stored.Name)
	suite.Equal(before-2, stored.Quantity)
}

// TestCreateIntoOtherTenant tests that a scoped create cannot target another organization
func (suite *ProductRepositoryTestSuite) TestCreateIntoOtherTenant() {
	product := suite.factories.Product.WithOrganization(suite.orgB.ID)

	err := suite.repo.Create(suite.scopedA, product)

	suite.ErrorIs(err, apperrors.ErrOutsideScope)
}

// TestFindWithFilters tests structured and lexical queries
func (suite *ProductRepositoryTestSuite) TestFindWithFilters() {
	suite.seed()
	cheap := suite.factories.Product.With("Ração Econômica", models.CategoryAlimento, "30.00", 3)
	suite.Require().NoError(suite.repo.Create(suite.system, cheap))

	name := "ração"
	maxPrice := decimal.RequireFromString("50")
	products, err := suite.repo.Find(suite.system, search.Build(search.SearchFilters{Name: &name, MaxPrice: &maxPrice}))
	suite.NoError(err)
	suite.Equal([]string{"Ração Econômica"}, names(products))

	products, err = suite.repo.Find(suite.system, search.Query{Where: search.Lexical("medicamento")})
	suite.NoError(err)
	suite.Equal([]string{"Antipulgas"}, names(products))

	products, err = suite.repo.Find(suite.system, search.Query{Where: search.MatchAll{}, Sort: search.SortPriceDesc})
	suite.NoError(err)
	suite.Equal("Ração Premium", products[0].Name)
}

// TestDecrementStock tests the guarded decrement, including marketplace products
func (suite *ProductRepositoryTestSuite) TestDecrementStock() {
	shared, _, _ := suite.seed()

	err := suite.tx.WithinTransaction(suite.scopedA, func(ctx context.Context) error {
		locked, err := suite.repo.LockForUpdate(ctx, shared.ID)
		if err != nil {
			return err
		}
		suite.Equal(10, locked.Quantity)
		return suite.repo.DecrementStock(ctx, shared.ID, 4)
	})
	suite.NoError(err)

	stored, err := suite.repo.GetByID(suite.system, shared.ID)
	suite.NoError(err)
	suite.Equal(6, stored.Quantity)

	suite.ErrorIs(suite.repo.DecrementStock(suite.scopedA, shared.ID, 7), ErrStockConflict)
}

// TestConcurrentDecrement tests that parallel purchases never oversell
func (suite *ProductRepositoryTestSuite) TestConcurrentDecrement() {
	shared, _, _ := suite.seed()

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- suite.tx.WithinTransaction(suite.scopedA, func(ctx context.Context) error {
				if _, err := suite.repo.LockForUpdate(ctx, shared.ID); err != nil {
					return err
				}
				return suite.repo.DecrementStock(ctx, shared.ID, 3)
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			suite.ErrorIs(err, ErrStockConflict)
		}
	}
	suite.Equal(3, succeeded)

	stored, err := suite.repo.GetByID(suite.system, shared.ID)
	suite.NoError(err)
	suite.Equal(1, stored.Quantity)
}

// TestRollback tests that a failing unit of work leaves stock untouched
func (suite *ProductRepositoryTestSuite) TestRollback() {
	shared, _, _ := suite.seed()

	err := suite.tx.WithinTransaction(suite.system, func(ctx context.Context) error {
		if err := suite.repo.DecrementStock(ctx, shared.ID, 2); err != nil {
			return err
		}
		return apperrors.ErrEmptyCart
	})
	suite.ErrorIs(err, apperrors.ErrEmptyCart)

	stored, err := suite.repo.GetByID(suite.system, shared.ID)
	suite.NoError(err)
	suite.Equal(10, stored.Quantity)
}

// TestDeleteMissing tests deleting an unknown id
func (suite *ProductRepositoryTestSuite) TestDeleteMissing() {
	suite.ErrorIs(suite.repo.Delete(suite.system, uuid.New()), gorm.ErrRecordNotFound)
}

// TestProductRepositoryTestSuite runs the test suite
func TestProductRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}
