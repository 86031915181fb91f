package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"slices"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"

	"arena/internal/infrastructure/mysql"
)

// SetupTestDB opens the integration database and makes sure the schema
// exists. It expects a MySQL database called 'arena_test' on localhost:3306
// unless ARENA_TEST_DSN says otherwise, and skips the test when none is
// reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("ARENA_TEST_DSN")
	if dsn == "" {
		mc := gomysql.NewConfig()
		mc.User = "root"
		mc.Net = "tcp"
		mc.Addr = "localhost:3306"
		mc.DBName = "arena_test"
		mc.ParseTime = true
		mc.ClientFoundRows = true
		dsn = mc.FormatDSN()
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	if err := mysql.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

// CleanupTestDB empties every table, children first, and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := slices.Clone(mysql.Tables())
	slices.Reverse(tables)
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}
