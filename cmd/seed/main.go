package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/seed"

	"github.com/spf13/pflag"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDataDir = "scripts/data"

	dataFlag  = "data"
	adminFlag = "admin"
)

func main() {
	withAdmin := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	source := cfg.SeedFile
	if source == "" {
		source = defaultDataDir
	}

	catalog, err := seed.LoadCatalog(source)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}

	// Connect to database with retry (for dockerized Postgres startup)
	db, err := connectWithRetry(cfg.DatabaseURL, 60, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	seeder := seed.NewSeeder(
		repository.NewOrganizationRepository(db),
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
	)

	ctx := context.Background()
	if withAdmin {
		if _, err := seeder.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to create administrator: %v", err)
		}
	}

	result, err := seeder.Apply(ctx, catalog)
	if err != nil {
		log.Fatalf("Failed to load catalog from %s: %v", source, err)
	}

	fmt.Fprintf(os.Stdout, "Catalog loaded from %s: %d organizations, %d products, %d users created\n",
		source, result.OrganizationsCreated, result.ProductsCreated, result.UsersCreated)
}

// parseFlags reads the command line; --data is bound to SEED_FILE so the
// catalog path resolves through the same configuration as the server.
func parseFlags() (withAdmin bool) {
	pflag.StringP(dataFlag, "d", "", "catalog YAML file or directory (defaults to SEED_FILE, then "+defaultDataDir+")")
	admin := pflag.BoolP(adminFlag, "a", true, "also create the ADMIN_USERNAME account")
	pflag.Parse()

	if err := config.BindFlags(pflag.CommandLine, map[string]string{dataFlag: "SEED_FILE"}); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}
	return *admin
}

// connectWithRetry attempts to initialize the DB with retries to wait for Postgres readiness.
func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	opts := &database.Options{LogLevel: logger.Silent}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := database.Initialize(dsn, opts)
		if err == nil {
			return db, nil
		}
		if attempt%10 == 0 || attempt == maxAttempts {
			log.Printf("Database not ready (%d/%d): %v", attempt, maxAttempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("database not ready after %d attempts", maxAttempts)
}
