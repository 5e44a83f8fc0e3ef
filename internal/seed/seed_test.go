package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/burritos/internal/db"
	"github.com/Simplici0/burritos/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, nil); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != len(DefaultExpenses) {
				t.Fatalf("expected %d inserts in first run, got %d", len(DefaultExpenses), stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	for _, name := range DefaultExpenses {
		assertCount(t, database, `SELECT COUNT(*) FROM fixed_expenses WHERE name = ?`, name, 1)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM fixed_expenses WHERE monthly_amount = 0 AND active = 1`, nil, len(DefaultExpenses))
}

func TestRunKeepsDeletedExpensesDeleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-deleted.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, nil); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := Run(ctx, database); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE fixed_expenses SET active = 0 WHERE name = 'Gas'`); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	stats, err := Run(ctx, database)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected no inserts, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM fixed_expenses WHERE active = 1`, nil, len(DefaultExpenses)-1)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
