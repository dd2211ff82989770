//go:build sqltest
// +build sqltest

package store

import (
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-txdb"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/your-org/trading-bot-engine/db"
)

func init() {
	txdb.Register("txdb", "postgres", "user=test password=test dbname=test host=/var/run/postgresql sslmode=disable")
}

// TestMigrationsApply executes every up migration inside a rolled-back
// transaction to catch SQL syntax and dependency errors without mutating the
// database.
func TestMigrationsApply(t *testing.T) {
	conn, err := sql.Open("txdb", t.Name())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	entries, err := fs.ReadDir(db.Migrations, "migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	// up migrations apply in lexical (version) order within one transaction
	// so cross-table references resolve
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		content, err := fs.ReadFile(db.Migrations, "migrations/"+entry.Name())
		if err != nil {
			t.Fatalf("failed to read migration %s: %v", entry.Name(), err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			t.Errorf("migration %s failed: %v", entry.Name(), err)
		}
	}
}
