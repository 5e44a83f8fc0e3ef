package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/burritos/internal/events"
	"github.com/Simplici0/burritos/internal/models"
)

const costColumns = `id, product_id, name, measurement, unit_price, amount_paid, quantity`

func scanCostRecord(row scanner) (models.CostRecord, error) {
	var (
		c                          models.CostRecord
		measurement                string
		unitPrice, paid, quantity sql.NullFloat64
	)
	if err := row.Scan(&c.ID, &c.ProductID, &c.Name, &measurement, &unitPrice, &paid, &quantity); err != nil {
		return models.CostRecord{}, err
	}
	c.Measurement = models.MeasurementMode(measurement)
	c.UnitPrice = floatPtr(unitPrice)
	c.AmountPaid = floatPtr(paid)
	c.Quantity = floatPtr(quantity)
	return c, nil
}

func (q *Queries) queryCostRecords(ctx context.Context, query string, args ...any) ([]models.CostRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cost records: %w", err)
	}
	defer rows.Close()

	var out []models.CostRecord
	for rows.Next() {
		c, err := scanCostRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost record: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost records: %w", err)
	}
	return out, nil
}

// CostRecordsFor lists the cost records of one product in insertion order.
func (q *Queries) CostRecordsFor(ctx context.Context, productID int64) ([]models.CostRecord, error) {
	return q.queryCostRecords(ctx, `
		SELECT `+costColumns+`
		FROM cost_records
		WHERE product_id = ?
		ORDER BY id
	`, productID)
}

// CostRecord loads one cost record.
func (q *Queries) CostRecord(ctx context.Context, id int64) (models.CostRecord, error) {
	c, err := scanCostRecord(q.db.QueryRowContext(ctx, `SELECT `+costColumns+` FROM cost_records WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CostRecord{}, fmt.Errorf("cost record %d: %w", id, ErrNotFound)
		}
		return models.CostRecord{}, fmt.Errorf("query cost record %d: %w", id, err)
	}
	return c, nil
}

// CountCostRecords counts the cost records owned by a product.
func (q *Queries) CountCostRecords(ctx context.Context, productID int64) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cost_records WHERE product_id = ?`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cost records of product %d: %w", productID, err)
	}
	return n, nil
}

// InsertCostRecord stores a cost record and returns its id.
func (q *Queries) InsertCostRecord(ctx context.Context, c models.CostRecord) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO cost_records (product_id, name, measurement, unit_price, amount_paid, quantity)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ProductID, c.Name, string(c.Measurement), nullFloat(c.UnitPrice), nullFloat(c.AmountPaid), nullFloat(c.Quantity))
	if err != nil {
		return 0, fmt.Errorf("insert cost record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cost record last insert id: %w", err)
	}
	q.changed(events.EntityCostRecord, events.OpCreated, id)
	return id, nil
}

// UpdateCostRecord replaces the editable fields of a cost record.
func (q *Queries) UpdateCostRecord(ctx context.Context, c models.CostRecord) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE cost_records
		SET name = ?, measurement = ?, unit_price = ?, amount_paid = ?, quantity = ?
		WHERE id = ?
	`, c.Name, string(c.Measurement), nullFloat(c.UnitPrice), nullFloat(c.AmountPaid), nullFloat(c.Quantity), c.ID)
	if err != nil {
		return fmt.Errorf("update cost record %d: %w", c.ID, err)
	}
	if err := requireAffected(result, fmt.Sprintf("cost record %d", c.ID)); err != nil {
		return err
	}
	q.changed(events.EntityCostRecord, events.OpUpdated, c.ID)
	return nil
}

// DeleteCostRecord removes one cost record.
func (q *Queries) DeleteCostRecord(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM cost_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cost record %d: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("cost record %d", id)); err != nil {
		return err
	}
	q.changed(events.EntityCostRecord, events.OpDeleted, id)
	return nil
}

// DeleteCostRecordsFor removes every cost record of a product and returns how many went.
func (q *Queries) DeleteCostRecordsFor(ctx context.Context, productID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM cost_records WHERE product_id = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete cost records of product %d: %w", productID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cost records rows affected: %w", err)
	}
	if n > 0 {
		q.changed(events.EntityCostRecord, events.OpDeleted, 0)
	}
	return n, nil
}
