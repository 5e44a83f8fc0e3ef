package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/events"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/pricing"
)

const saleColumns = `s.id, s.product_id, s.sale_date, s.quantity, s.suggested_price, s.actual_price, s.note, s.payment, s.created_at_ms`

func scanSale(row scanner, extra ...any) (models.Sale, error) {
	var (
		s         models.Sale
		date      string
		payment   string
		createdMS int64
	)
	dest := append([]any{&s.ID, &s.ProductID, &date, &s.Quantity, &s.SuggestedPrice, &s.ActualPrice, &s.Note, &payment, &createdMS}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Sale{}, err
	}

	var err error
	if s.Date, err = calendar.ParseDate(date); err != nil {
		return models.Sale{}, fmt.Errorf("sale %d date: %w", s.ID, err)
	}
	s.Payment = models.PaymentState(payment)
	s.CreatedAt = time.UnixMilli(createdMS)
	return s, nil
}

func (q *Queries) querySales(ctx context.Context, query string, args ...any) ([]models.SaleWithProduct, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	out := []models.SaleWithProduct{}
	for rows.Next() {
		var name string
		s, err := scanSale(rows, &name)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, models.SaleWithProduct{Sale: s, ProductName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return out, nil
}

// InsertSale stores a sale and returns its id.
func (q *Queries) InsertSale(ctx context.Context, s models.Sale) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO sales (product_id, sale_date, quantity, suggested_price, actual_price, note, payment, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ProductID, calendar.FormatDate(s.Date), s.Quantity, s.SuggestedPrice, s.ActualPrice, s.Note, string(s.Payment), s.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert sale: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sale last insert id: %w", err)
	}
	q.changed(events.EntitySale, events.OpCreated, id)
	return id, nil
}

// Sale loads one sale.
func (q *Queries) Sale(ctx context.Context, id int64) (models.Sale, error) {
	s, err := scanSale(q.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Sale{}, fmt.Errorf("sale %d: %w", id, ErrNotFound)
		}
		return models.Sale{}, fmt.Errorf("query sale %d: %w", id, err)
	}
	return s, nil
}

// UpdateSale replaces the editable fields of a sale. Date and creation time are kept.
func (q *Queries) UpdateSale(ctx context.Context, s models.Sale) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE sales
		SET quantity = ?, suggested_price = ?, actual_price = ?, note = ?, payment = ?
		WHERE id = ?
	`, s.Quantity, s.SuggestedPrice, s.ActualPrice, s.Note, string(s.Payment), s.ID)
	if err != nil {
		return fmt.Errorf("update sale %d: %w", s.ID, err)
	}
	if err := requireAffected(result, fmt.Sprintf("sale %d", s.ID)); err != nil {
		return err
	}
	q.changed(events.EntitySale, events.OpUpdated, s.ID)
	return nil
}

// SetPayment changes only the payment state of a sale.
func (q *Queries) SetPayment(ctx context.Context, id int64, payment models.PaymentState) error {
	result, err := q.db.ExecContext(ctx, `UPDATE sales SET payment = ? WHERE id = ?`, string(payment), id)
	if err != nil {
		return fmt.Errorf("update sale %d payment: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("sale %d", id)); err != nil {
		return err
	}
	q.changed(events.EntitySale, events.OpUpdated, id)
	return nil
}

// DeleteSale removes a sale.
func (q *Queries) DeleteSale(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("sale %d", id)); err != nil {
		return err
	}
	q.changed(events.EntitySale, events.OpDeleted, id)
	return nil
}

// SalesInRange lists the sales dated within [from, to], oldest first.
func (q *Queries) SalesInRange(ctx context.Context, from, to time.Time) ([]models.SaleWithProduct, error) {
	return q.querySales(ctx, `
		SELECT `+saleColumns+`, p.name
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date BETWEEN ? AND ?
		ORDER BY s.sale_date, s.created_at_ms, s.id
	`, calendar.FormatDate(from), calendar.FormatDate(to))
}

// SalesOn lists the sales of one day, newest first.
func (q *Queries) SalesOn(ctx context.Context, date time.Time) ([]models.SaleWithProduct, error) {
	return q.querySales(ctx, `
		SELECT `+saleColumns+`, p.name
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date = ?
		ORDER BY s.created_at_ms DESC, s.id DESC
	`, calendar.FormatDate(date))
}

// PendingSales lists every unpaid sale, newest first.
func (q *Queries) PendingSales(ctx context.Context) ([]models.SaleWithProduct, error) {
	return q.querySales(ctx, `
		SELECT `+saleColumns+`, p.name
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.payment = ?
		ORDER BY s.sale_date DESC, s.created_at_ms DESC, s.id DESC
	`, string(models.PaymentOpen))
}

// DayTotals aggregates the sales of one day. Pending figures span every date.
func (q *Queries) DayTotals(ctx context.Context, date time.Time) (pricing.SalesTotals, error) {
	var t pricing.SalesTotals
	err := q.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN payment != ? THEN actual_price * quantity ELSE 0 END), 0),
			COUNT(*),
			COALESCE(SUM(quantity), 0)
		FROM sales
		WHERE sale_date = ?
	`, string(models.PaymentOpen), calendar.FormatDate(date)).Scan(&t.PaidTotal, &t.SalesCount, &t.UnitsSold)
	if err != nil {
		return pricing.SalesTotals{}, fmt.Errorf("aggregate sales of %s: %w", calendar.FormatDate(date), err)
	}

	err = q.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(actual_price * quantity), 0)
		FROM sales
		WHERE payment = ?
	`, string(models.PaymentOpen)).Scan(&t.PendingCount, &t.PendingAmount)
	if err != nil {
		return pricing.SalesTotals{}, fmt.Errorf("aggregate pending sales: %w", err)
	}
	return t, nil
}

// UnitsSold sums every unit sold of a product, ignoring the sale excludeID (0 ignores none).
func (q *Queries) UnitsSold(ctx context.Context, productID, excludeID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM sales
		WHERE product_id = ? AND id != ?
	`, productID, excludeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum units of product %d: %w", productID, err)
	}
	return n, nil
}
