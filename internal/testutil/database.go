package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"slices"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"coffeeshop/internal/domain"
	"coffeeshop/internal/infrastructure/mysql"
)

// SetupTestDB opens the integration database and skips the test when it is
// not reachable. Override the DSN with COFFEESHOP_TEST_DSN.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("COFFEESHOP_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/coffeeshop_test?parseTime=true&loc=UTC"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables applies the application schema.
func SetupTestTables(t *testing.T, db *sql.DB) {
	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}

// CleanupTestDB empties managed tables (children first) and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := mysql.Tables()
	slices.Reverse(tables)
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// InsertUser creates a user row and returns its id.
func InsertUser(t *testing.T, db *sql.DB, userType domain.UserType) uint {
	result, err := db.Exec(`INSERT INTO Users (type) VALUES (?)`, string(userType))
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read user id: %v", err)
	}
	return uint(id)
}
