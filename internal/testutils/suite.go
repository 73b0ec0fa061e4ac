package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"testing"
	"time"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/tenant"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for readiness ping
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const (
	pgImage    = "postgres"
	pgTag      = "15-alpine"
	pgUser     = "testuser"
	pgPassword = "testpass"
	pgDatabase = "marketplace_test"
)

// tenantTables lists every table the tests write, children first
var tenantTables = []string{"order_items", "orders", "products", "users", "organizations"}

// postgresContainer is the one Postgres shared by every suite of a test binary
type postgresContainer struct {
	once     sync.Once
	err      error
	pool     *dockertest.Pool
	resource *dockertest.Resource
	db       *gorm.DB
	dsn      string
}

var shared postgresContainer

// BaseTestSuite gives integration suites a migrated database with tenant scoping installed
type BaseTestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Config *config.Config
}

// SetupTestSuite starts the shared container on first use
func SetupTestSuite(t *testing.T) *BaseTestSuite {
	shared.once.Do(func() { shared.err = shared.start() })
	if shared.err != nil {
		t.Fatalf("failed to initialize shared test container: %v", shared.err)
	}
	return &BaseTestSuite{
		DB: shared.db,
		Config: &config.Config{
			DatabaseURL:         shared.dsn,
			Port:                "8080",
			LogLevel:            "debug",
			Environment:         "test",
			AITimeoutMS:         500,
			CartTTLHours:        1,
			SearchMessagePolicy: config.MessagePolicyKeepAI,
		},
	}
}

// RunIntegration is the body of an integration package's TestMain. The
// container is purged when the tests finish or the run is interrupted.
func RunIntegration(m *testing.M) int {
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupted
		log.Println("interrupted, removing test containers")
		CleanupSharedContainer()
		os.Exit(1)
	}()

	code := m.Run()
	CleanupSharedContainer()
	return code
}

// CleanupSharedContainer closes the pool and purges the container
func CleanupSharedContainer() {
	if shared.db != nil {
		if sqlDB, err := shared.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		shared.db = nil
	}
	if shared.pool != nil && shared.resource != nil {
		if err := shared.pool.Purge(shared.resource); err != nil {
			log.Printf("WARN: could not purge %s: %v", shared.resource.Container.Name, err)
		}
		shared.pool, shared.resource = nil, nil
	}
}

func (s *BaseTestSuite) SetupTest()    { s.CleanTestDB() }
func (s *BaseTestSuite) TearDownTest() { s.CleanTestDB() }

// TeardownTestSuite empties the tables; the container outlives the suite.
func (s *BaseTestSuite) TeardownTestSuite() { s.CleanTestDB() }

// CleanTestDB truncates the marketplace tables that exist
func (s *BaseTestSuite) CleanTestDB() {
	if s.DB == nil {
		return
	}
	m := s.DB.Migrator()
	for _, table := range tenantTables {
		if m.HasTable(table) {
			s.DB.Exec(`TRUNCATE TABLE "` + table + `" RESTART IDENTITY CASCADE`)
		}
	}
}

// System returns a context that bypasses tenant scoping, for fixtures
func (s *BaseTestSuite) System() context.Context {
	return tenant.System(context.Background())
}

// ScopedTo returns a context restricted to orgID
func (s *BaseTestSuite) ScopedTo(orgID uuid.UUID) context.Context {
	return tenant.WithScope(context.Background(), tenant.ScopedTo(orgID))
}

func (c *postgresContainer) start() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("could not connect to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute
	c.pool = pool

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: pgImage,
		Tag:        pgTag,
		Env: []string{
			"POSTGRES_USER=" + pgUser,
			"POSTGRES_PASSWORD=" + pgPassword,
			"POSTGRES_DB=" + pgDatabase,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("could not start postgres: %w", err)
	}
	c.resource = resource
	_ = resource.Expire(300)

	c.dsn = fmt.Sprintf("postgres://%s:%s@127.0.0.1:%s/%s?sslmode=disable",
		pgUser, pgPassword, resource.GetPort("5432/tcp"), pgDatabase)

	// Ping through database/sql until Postgres accepts connections, then let
	// Initialize migrate the schema and install the tenant plugin.
	err = pool.Retry(func() error {
		probe, err := sql.Open("pgx", c.dsn)
		if err != nil {
			return err
		}
		defer probe.Close()
		if err := probe.Ping(); err != nil {
			return err
		}

		db, err := database.Initialize(c.dsn, nil)
		if err != nil {
			return err
		}
		c.db = db
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not connect to docker database: %w", err)
	}

	log.Printf("shared postgres ready at %s", c.dsn)
	return nil
}
