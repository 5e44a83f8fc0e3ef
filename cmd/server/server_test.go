package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/db"
	"github.com/Simplici0/burritos/internal/events"
	"github.com/Simplici0/burritos/internal/ledger"
	"github.com/Simplici0/burritos/internal/live"
	"github.com/Simplici0/burritos/internal/metrics"
	"github.com/Simplici0/burritos/internal/migrations"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/pricing"
	"github.com/Simplici0/burritos/internal/reports"
	"github.com/Simplici0/burritos/internal/store"
)

var testNow = time.Date(2025, 1, 15, 13, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.Up(database, nil))

	broker := events.NewBroker()
	t.Cleanup(broker.Close)

	log := zap.NewNop()
	st := store.New(database, broker, log)
	srv := &server{
		ledger:      ledger.New(st, calendar.FixedClock(testNow), log),
		db:          database,
		hub:         live.NewHub(log),
		metrics:     metrics.New(),
		validate:    newValidator(),
		log:         log,
		reportWeeks: 4,
	}
	return srv, srv.routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// setupDay configures costs and a produced batch of 20 with 150 of materials.
func setupDay(t *testing.T, h http.Handler) models.Product {
	t.Helper()

	rec := do(t, h, http.MethodPut, "/api/config/wage", map[string]any{"per_person_daily": 100, "headcount": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPut, "/api/config/general", map[string]any{"margin_fraction": 0.25, "working_days_per_month": 22})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/api/expenses", map[string]any{"name": "Renta", "monthly_amount": 4400})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Chicharrón"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeBody[models.Product](t, rec)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/costs", p.ID), map[string]any{
		"records": []map[string]any{{"name": "Carne", "measurement": "weight", "unit_price": 100, "quantity": 1.5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/production", p.ID), map[string]any{"quantity": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[models.Product](t, rec)
}

func TestHealth(t *testing.T) {
	srv, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])

	assert.InDelta(t, 1.0, testutil.ToFloat64(srv.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")), 1e-9)
}

func TestNoDataIsNoContent(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/api/summary", "/api/products/today", "/api/config/wage", "/api/config/general"} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}

	rec := do(t, h, http.MethodGet, "/api/reports/weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]reports.WeeklyReport](t, rec))
}

func TestPriceSaleAndSummary(t *testing.T) {
	_, h := newTestServer(t)
	p := setupDay(t, h)
	assert.Equal(t, models.StateProduced, p.State)

	rec := do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d/price", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	price := decodeBody[pricing.Result](t, rec)
	assert.InDelta(t, 550.0, price.Breakdown.TotalCost, 1e-9)
	assert.InDelta(t, 34.375, price.Totals.SuggestedPrice, 1e-9)

	rec = do(t, h, http.MethodPost, "/api/sales", map[string]any{
		"product_id": p.ID, "quantity": 25, "actual_price": 150, "payment": "cash",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/sales", map[string]any{
		"product_id": p.ID, "quantity": 4, "actual_price": 150, "payment": "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decodeBody[models.Sale](t, rec)
	assert.InDelta(t, 34.375, sale.SuggestedPrice, 1e-9)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d/available", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 16, decodeBody[map[string]int](t, rec)["available"])

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d/available?exclude_sale=0", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 16, decodeBody[map[string]int](t, rec)["available"])

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d/available?exclude_sale=%d", p.ID, sale.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decodeBody[map[string]int](t, rec)["available"])

	rec = do(t, h, http.MethodGet, "/api/summary?date=2025-01-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[ledger.DailySummary](t, rec)
	assert.InDelta(t, 600.0, summary.PaidTotal, 1e-9)
	assert.InDelta(t, 550.0, summary.BreakEvenPoint, 1e-9)
	assert.True(t, summary.BreakEvenReached)
	assert.Equal(t, p.ID, summary.ProductID)

	rec = do(t, h, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.SaleWithProduct](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/reports/weekly?weeks=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weekly := decodeBody[[]reports.WeeklyReport](t, rec)
	require.Len(t, weekly, 2)
	assert.InDelta(t, 600.0, weekly[1].PaidTotal, 1e-9)
}

func TestPendingSaleSettlement(t *testing.T) {
	_, h := newTestServer(t)
	p := setupDay(t, h)

	rec := do(t, h, http.MethodPost, "/api/sales", map[string]any{
		"product_id": p.ID, "quantity": 2, "actual_price": 40, "payment": "pending", "note": "Mesa 3",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decodeBody[models.Sale](t, rec)

	rec = do(t, h, http.MethodGet, "/api/sales/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.SaleWithProduct](t, rec), 1)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/sales/%d/payment", sale.ID), map[string]any{"payment": "pending"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/sales/%d/payment", sale.ID), map[string]any{"payment": "card"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/sales/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]models.SaleWithProduct](t, rec))

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/sales/%d", sale.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/sales/%d", sale.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCostRecordValidation(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Pastor"})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decodeBody[models.Product](t, rec)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/costs", p.ID), map[string]any{
		"records": []map[string]any{
			{"name": "Tortilla", "unit_price": 2, "quantity": 30},
			{"name": "Piña", "unit_price": 25},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ledger.MsgCostRecordFields, decodeBody[errorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[models.ProductWithCosts](t, rec).Costs)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/costs", p.ID), map[string]any{
		"records": []map[string]any{{"name": "Tortilla", "unit_price": 2, "quantity": 30}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	records := decodeBody[[]models.CostRecord](t, rec)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].AmountPaid)
	assert.InDelta(t, 60.0, *records[0].AmountPaid, 1e-9)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/products/%d/costs", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeBody[map[string]int64](t, rec)["deleted"])
}

func TestRequestValidation(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "missing name", method: http.MethodPost, path: "/api/products", body: map[string]any{}, status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/products", body: `{"name":"x","color":"rojo"}`, status: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/api/products", body: `{"name":`, status: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/api/products/abc", status: http.StatusBadRequest},
		{name: "unknown product", method: http.MethodGet, path: "/api/products/999", status: http.StatusNotFound},
		{name: "bad state", method: http.MethodPut, path: "/api/products/1/state", body: map[string]any{"state": "sold"}, status: http.StatusBadRequest},
		{name: "zero production", method: http.MethodPost, path: "/api/products/1/production", body: map[string]any{"quantity": 0}, status: http.StatusBadRequest},
		{name: "negative wage", method: http.MethodPut, path: "/api/config/wage", body: map[string]any{"per_person_daily": -1, "headcount": 1}, status: http.StatusBadRequest},
		{name: "bad date", method: http.MethodGet, path: "/api/summary?date=15-01-2025", status: http.StatusBadRequest},
		{name: "bad weeks", method: http.MethodGet, path: "/api/reports/weekly?weeks=0", status: http.StatusBadRequest},
		{name: "weeks above cap", method: http.MethodGet, path: "/api/reports/weekly?weeks=105", status: http.StatusBadRequest},
		{name: "weeks at cap", method: http.MethodGet, path: "/api/reports/weekly?weeks=104", status: http.StatusOK},
		{name: "negative exclude", method: http.MethodGet, path: "/api/products/1/available?exclude_sale=-1", status: http.StatusBadRequest},
		{name: "inverted range", method: http.MethodGet, path: "/api/sales?from=2025-01-15&to=2025-01-01", status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestValidationMessageUsesJSONNames(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/products", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name es obligatorio", decodeBody[errorResponse](t, rec).Error)
}

func TestExpensesLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/expenses", map[string]any{"name": "Gas", "monthly_amount": 300})
	require.Equal(t, http.StatusCreated, rec.Code)
	e := decodeBody[models.FixedExpense](t, rec)

	rec = do(t, h, http.MethodPut, fmt.Sprintf("/api/expenses/%d", e.ID), map[string]any{"name": "Gas LP", "monthly_amount": 450})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Expenses     []models.FixedExpense `json:"expenses"`
		MonthlyTotal float64               `json:"monthly_total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "Gas LP", list.Expenses[0].Name)
	assert.InDelta(t, 450.0, list.MonthlyTotal, 1e-9)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", e.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/expenses", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Expenses)
}
