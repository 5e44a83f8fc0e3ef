package seed

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultExpenses is the fixed-expense catalog a fresh installation starts with.
// Amounts start at 0 for the operator to fill in.
var DefaultExpenses = []string{"Gas", "Agua", "Luz", "Transporte"}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, name := range DefaultExpenses {
		if err := ensureFixedExpense(ctx, tx, name, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// ensureFixedExpense inserts name unless a row with that name exists, active or not,
// so an expense the operator deleted is not brought back.
func ensureFixedExpense(ctx context.Context, tx *sql.Tx, name string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM fixed_expenses WHERE name = ? LIMIT 1)`, name).Scan(&exists); err != nil {
		return fmt.Errorf("check fixed expense %q existence: %w", name, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO fixed_expenses (name, monthly_amount, active)
		VALUES (?, ?, ?)
	`, name, 0, true); err != nil {
		return fmt.Errorf("insert fixed expense %q: %w", name, err)
	}
	stats.Inserts++
	return nil
}
