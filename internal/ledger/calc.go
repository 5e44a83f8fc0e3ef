package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/pricing"
	"github.com/Simplici0/burritos/internal/reports"
	"github.com/Simplici0/burritos/internal/store"
)

// DailySummary is the break-even position of a day and the product it was computed for.
type DailySummary struct {
	pricing.Summary
	Date        time.Time `json:"date"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
}

// globalInput gathers the shared cost structure, failing with ErrNotAvailable
// when either configuration singleton is missing.
func globalInput(ctx context.Context, q *store.Queries) (pricing.GlobalInput, error) {
	wage, err := q.WageConfig(ctx)
	if err != nil {
		return pricing.GlobalInput{}, err
	}
	general, err := q.GeneralConfig(ctx)
	if err != nil {
		return pricing.GlobalInput{}, err
	}
	if wage == nil || general == nil {
		return pricing.GlobalInput{}, fmt.Errorf("wage or general configuration missing: %w", ErrNotAvailable)
	}
	monthly, err := q.SumActiveMonthlyExpenses(ctx)
	if err != nil {
		return pricing.GlobalInput{}, err
	}
	return pricing.GlobalInput{
		MonthlyFixedExpenses: monthly,
		WorkingDaysPerMonth:  general.WorkingDaysPerMonth,
		DailyWages:           wage.DailyTotal(),
		MarginFraction:       general.MarginFraction,
	}, nil
}

func priceProduct(ctx context.Context, q *store.Queries, p models.ProductWithCosts) (pricing.Result, error) {
	if p.ProducedQty == nil {
		return pricing.Result{}, fmt.Errorf("product %d has no production: %w", p.ID, ErrNotAvailable)
	}
	global, err := globalInput(ctx, q)
	if err != nil {
		return pricing.Result{}, err
	}
	return pricing.Calculate(pricing.BatchInput{
		MaterialCost:  p.CostTotal(),
		UnitsProduced: *p.ProducedQty,
	}, global), nil
}

// CalculatePrice prices a produced batch. ErrNotAvailable means there is no data yet.
func (s *Service) CalculatePrice(ctx context.Context, productID int64) (pricing.Result, error) {
	p, err := s.store.ProductWithCosts(ctx, productID)
	if err != nil {
		return pricing.Result{}, err
	}
	return priceProduct(ctx, s.store.Queries, p)
}

// DailySummary compares the paid sales of date with the break-even point of its product.
func (s *Service) DailySummary(ctx context.Context, date time.Time) (DailySummary, error) {
	date = calendar.Date(date)
	p, err := s.ProductOfDay(ctx, date)
	if err != nil {
		return DailySummary{}, err
	}
	global, err := globalInput(ctx, s.store.Queries)
	if err != nil {
		return DailySummary{}, err
	}
	totals, err := s.store.DayTotals(ctx, date)
	if err != nil {
		return DailySummary{}, err
	}

	breakEven := pricing.DailyCost(p.CostTotal(), global).TotalCost
	return DailySummary{
		Summary:     pricing.Summarize(breakEven, totals),
		Date:        date,
		ProductID:   p.ID,
		ProductName: p.Name,
	}, nil
}

// WeeklyReports builds the trailing weekly trend, oldest week first.
func (s *Service) WeeklyReports(ctx context.Context, weeks int) ([]reports.WeeklyReport, error) {
	return s.reports.Weekly(ctx, s.Today(), weeks)
}

// ProductReports ranks the menu items sold in the trailing month by net profit.
func (s *Service) ProductReports(ctx context.Context) ([]reports.ProductReport, error) {
	return s.reports.Products(ctx, s.Today())
}
