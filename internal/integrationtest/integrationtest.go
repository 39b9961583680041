// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"testing"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-petr/current-account/cmd/httpserver"
	"github.com/go-petr/current-account/internal/accountrepo"
	"github.com/go-petr/current-account/internal/branchrepo"
	"github.com/go-petr/current-account/internal/domain"
	"github.com/go-petr/current-account/internal/middleware"
	"github.com/go-petr/current-account/pkg/configpkg"
	"github.com/go-petr/current-account/pkg/dbpkg"
	"github.com/go-petr/current-account/pkg/randompkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T, configPath string) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load(configPath)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, configPath, err)
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.GetLogger(config)

	db := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, nil, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, nil, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}

// SeedBranch creates a branch with a random id.
func SeedBranch(t *testing.T, db dbpkg.SQLInterface) domain.Branch {
	t.Helper()

	repo := branchrepo.NewRepoPGS(db, trmsql.DefaultCtxGetter)

	arg := domain.Branch{
		ID:   randompkg.IntBetween(1, 1_000_000),
		Name: randompkg.String(8),
	}

	branch, err := repo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("branchRepo.Create(context.Background(), %v) returned error: %v", arg, err)
	}

	return branch
}

// SeedAccount creates an account with a random id and the given balance in the branch.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, branchID int32, balance decimal.Decimal) domain.Account {
	t.Helper()

	repo := accountrepo.NewRepoPGS(db, trmsql.DefaultCtxGetter)

	arg := domain.Account{
		BranchID:    branchID,
		ID:          randompkg.IntBetween(1, 1_000_000),
		HolderName:  randompkg.HolderName(),
		HolderTaxID: randompkg.TaxID(),
		Balance:     balance,
	}

	account, err := repo.Save(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Save(context.Background(), %v) returned error: %v", arg, err)
	}

	return account
}
