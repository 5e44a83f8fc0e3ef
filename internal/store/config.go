package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/burritos/internal/events"
	"github.com/Simplici0/burritos/internal/models"
)

// WageConfig returns the wage singleton, or nil when it was never set.
func (q *Queries) WageConfig(ctx context.Context) (*models.WageConfig, error) {
	var w models.WageConfig
	err := q.db.QueryRowContext(ctx, `
		SELECT per_person_daily, headcount
		FROM wage_config
		WHERE id = 1
	`).Scan(&w.PerPersonDaily, &w.Headcount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query wage_config: %w", err)
	}
	return &w, nil
}

// UpsertWageConfig replaces the wage singleton.
func (q *Queries) UpsertWageConfig(ctx context.Context, w models.WageConfig) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO wage_config (id, per_person_daily, headcount)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			per_person_daily = excluded.per_person_daily,
			headcount = excluded.headcount,
			updated_at = CURRENT_TIMESTAMP
	`, w.PerPersonDaily, w.Headcount)
	if err != nil {
		return fmt.Errorf("upsert wage_config: %w", err)
	}
	q.changed(events.EntityConfig, events.OpUpdated, 1)
	return nil
}

// GeneralConfig returns the general singleton, or nil when it was never set.
func (q *Queries) GeneralConfig(ctx context.Context) (*models.GeneralConfig, error) {
	var g models.GeneralConfig
	err := q.db.QueryRowContext(ctx, `
		SELECT margin_fraction, working_days_per_month, month_tag
		FROM general_config
		WHERE id = 1
	`).Scan(&g.MarginFraction, &g.WorkingDaysPerMonth, &g.MonthTag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query general_config: %w", err)
	}
	return &g, nil
}

// UpsertGeneralConfig replaces the general singleton.
func (q *Queries) UpsertGeneralConfig(ctx context.Context, g models.GeneralConfig) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO general_config (id, margin_fraction, working_days_per_month, month_tag)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			margin_fraction = excluded.margin_fraction,
			working_days_per_month = excluded.working_days_per_month,
			month_tag = excluded.month_tag,
			updated_at = CURRENT_TIMESTAMP
	`, g.MarginFraction, g.WorkingDaysPerMonth, g.MonthTag)
	if err != nil {
		return fmt.Errorf("upsert general_config: %w", err)
	}
	q.changed(events.EntityConfig, events.OpUpdated, 1)
	return nil
}

// SumActiveMonthlyExpenses totals the monthly amount of active fixed expenses.
func (q *Queries) SumActiveMonthlyExpenses(ctx context.Context) (float64, error) {
	var total float64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(monthly_amount), 0)
		FROM fixed_expenses
		WHERE active = 1
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum fixed expenses: %w", err)
	}
	return total, nil
}

// FixedExpenses lists the active fixed expenses by name.
func (q *Queries) FixedExpenses(ctx context.Context) ([]models.FixedExpense, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, monthly_amount, active
		FROM fixed_expenses
		WHERE active = 1
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query fixed expenses: %w", err)
	}
	defer rows.Close()

	out := []models.FixedExpense{}
	for rows.Next() {
		var e models.FixedExpense
		if err := rows.Scan(&e.ID, &e.Name, &e.MonthlyAmount, &e.Active); err != nil {
			return nil, fmt.Errorf("scan fixed expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed expenses: %w", err)
	}
	return out, nil
}

// FixedExpense loads one fixed expense, active or not.
func (q *Queries) FixedExpense(ctx context.Context, id int64) (models.FixedExpense, error) {
	var e models.FixedExpense
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, monthly_amount, active
		FROM fixed_expenses
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.MonthlyAmount, &e.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FixedExpense{}, fmt.Errorf("fixed expense %d: %w", id, ErrNotFound)
		}
		return models.FixedExpense{}, fmt.Errorf("query fixed expense %d: %w", id, err)
	}
	return e, nil
}

// InsertFixedExpense stores a fixed expense and returns its id.
func (q *Queries) InsertFixedExpense(ctx context.Context, e models.FixedExpense) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO fixed_expenses (name, monthly_amount, active)
		VALUES (?, ?, ?)
	`, e.Name, e.MonthlyAmount, e.Active)
	if err != nil {
		return 0, fmt.Errorf("insert fixed expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fixed expense last insert id: %w", err)
	}
	q.changed(events.EntityFixedExpense, events.OpCreated, id)
	return id, nil
}

// UpdateFixedExpense replaces name, amount and active flag.
func (q *Queries) UpdateFixedExpense(ctx context.Context, e models.FixedExpense) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE fixed_expenses
		SET name = ?, monthly_amount = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Name, e.MonthlyAmount, e.Active, e.ID)
	if err != nil {
		return fmt.Errorf("update fixed expense %d: %w", e.ID, err)
	}
	if err := requireAffected(result, fmt.Sprintf("fixed expense %d", e.ID)); err != nil {
		return err
	}
	q.changed(events.EntityFixedExpense, events.OpUpdated, e.ID)
	return nil
}

// DeactivateFixedExpense soft-deletes a fixed expense.
func (q *Queries) DeactivateFixedExpense(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE fixed_expenses
		SET active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate fixed expense %d: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("fixed expense %d", id)); err != nil {
		return err
	}
	q.changed(events.EntityFixedExpense, events.OpDeleted, id)
	return nil
}
