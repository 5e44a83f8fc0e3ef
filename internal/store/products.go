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
)

const productColumns = `id, name, created_date, production_date, week_id, active, produced_qty, state`

func scanProduct(row scanner) (models.Product, error) {
	var (
		p          models.Product
		created    string
		production sql.NullString
		produced   sql.NullInt64
		state      string
	)
	if err := row.Scan(&p.ID, &p.Name, &created, &production, &p.WeekID, &p.Active, &produced, &state); err != nil {
		return models.Product{}, err
	}

	var err error
	if p.CreatedDate, err = calendar.ParseDate(created); err != nil {
		return models.Product{}, fmt.Errorf("product %d created date: %w", p.ID, err)
	}
	if p.ProductionDate, err = datePtr(production); err != nil {
		return models.Product{}, fmt.Errorf("product %d production date: %w", p.ID, err)
	}
	p.ProducedQty = intPtr(produced)
	p.State = models.ProductState(state)
	return p, nil
}

func (q *Queries) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// withCosts loads the cost records of every product in one query.
func (q *Queries) withCosts(ctx context.Context, products []models.Product) ([]models.ProductWithCosts, error) {
	out := make([]models.ProductWithCosts, len(products))
	if len(products) == 0 {
		return out, nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
		out[i] = models.ProductWithCosts{Product: p, Costs: []models.CostRecord{}}
	}

	records, err := q.queryCostRecords(ctx, `
		SELECT `+costColumns+`
		FROM cost_records
		WHERE product_id IN (`+placeholders(len(ids))+`)
		ORDER BY id
	`, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	for _, c := range records {
		i := index[c.ProductID]
		out[i].Costs = append(out[i].Costs, c)
	}
	return out, nil
}

// CreateProduct inserts a product and returns its id.
func (q *Queries) CreateProduct(ctx context.Context, p models.Product) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO products (name, created_date, production_date, week_id, active, produced_qty, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, calendar.FormatDate(p.CreatedDate), nullDate(p.ProductionDate), p.WeekID, p.Active, nullInt(p.ProducedQty), string(p.State))
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("product last insert id: %w", err)
	}
	q.changed(events.EntityProduct, events.OpCreated, id)
	return id, nil
}

// Product loads one product, active or not.
func (q *Queries) Product(ctx context.Context, id int64) (models.Product, error) {
	p, err := scanProduct(q.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return models.Product{}, fmt.Errorf("query product %d: %w", id, err)
	}
	return p, nil
}

// ProductWithCosts loads one product with its cost records.
func (q *Queries) ProductWithCosts(ctx context.Context, id int64) (models.ProductWithCosts, error) {
	p, err := q.Product(ctx, id)
	if err != nil {
		return models.ProductWithCosts{}, err
	}
	list, err := q.withCosts(ctx, []models.Product{p})
	if err != nil {
		return models.ProductWithCosts{}, err
	}
	return list[0], nil
}

// ProductsByID loads the given products with their cost records. Unknown ids are skipped.
func (q *Queries) ProductsByID(ctx context.Context, ids []int64) ([]models.ProductWithCosts, error) {
	if len(ids) == 0 {
		return []models.ProductWithCosts{}, nil
	}
	products, err := q.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id IN (`+placeholders(len(ids))+`)
		ORDER BY id
	`, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	return q.withCosts(ctx, products)
}

// ProductsInWeek lists the active products created in the given week.
func (q *Queries) ProductsInWeek(ctx context.Context, weekID string) ([]models.ProductWithCosts, error) {
	products, err := q.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE week_id = ? AND active = 1
		ORDER BY created_date, id
	`, weekID)
	if err != nil {
		return nil, err
	}
	return q.withCosts(ctx, products)
}

// ProductOfDay returns the active product produced on date; the newest one wins.
func (q *Queries) ProductOfDay(ctx context.Context, date time.Time) (models.ProductWithCosts, error) {
	products, err := q.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE production_date = ? AND active = 1
		ORDER BY id DESC
		LIMIT 1
	`, calendar.FormatDate(date))
	if err != nil {
		return models.ProductWithCosts{}, err
	}
	if len(products) == 0 {
		return models.ProductWithCosts{}, fmt.Errorf("product of %s: %w", calendar.FormatDate(date), ErrNotFound)
	}
	list, err := q.withCosts(ctx, products)
	if err != nil {
		return models.ProductWithCosts{}, err
	}
	return list[0], nil
}

// UnproducedProducts lists active products whose production has not been recorded.
func (q *Queries) UnproducedProducts(ctx context.Context) ([]models.ProductWithCosts, error) {
	products, err := q.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE produced_qty IS NULL AND active = 1
		ORDER BY created_date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	return q.withCosts(ctx, products)
}

// ActiveProducts lists every active product without cost records.
func (q *Queries) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	return q.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active = 1
		ORDER BY id
	`)
}

// SetProduction records the produced quantity and the production date.
func (q *Queries) SetProduction(ctx context.Context, id int64, qty int, date time.Time) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE products
		SET produced_qty = ?, production_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, calendar.FormatDate(date), id)
	if err != nil {
		return fmt.Errorf("update product %d production: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("product %d", id)); err != nil {
		return err
	}
	q.changed(events.EntityProduct, events.OpUpdated, id)
	return nil
}

// SetProductState stores a lifecycle state.
func (q *Queries) SetProductState(ctx context.Context, id int64, state models.ProductState) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE products
		SET state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(state), id)
	if err != nil {
		return fmt.Errorf("update product %d state: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("product %d", id)); err != nil {
		return err
	}
	q.changed(events.EntityProduct, events.OpUpdated, id)
	return nil
}

// DeactivateProduct soft-deletes a product; its sales keep referencing it.
func (q *Queries) DeactivateProduct(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE products
		SET active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate product %d: %w", id, err)
	}
	if err := requireAffected(result, fmt.Sprintf("product %d", id)); err != nil {
		return err
	}
	q.changed(events.EntityProduct, events.OpDeleted, id)
	return nil
}
