package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/pricing"
)

const (
	// DefaultWeeks is the trend window used when callers do not ask for one.
	DefaultWeeks = 4
	// MaxWeeks bounds the trend window to two years; larger requests are clamped.
	MaxWeeks = 104
)

// Source is the read side of storage the aggregator needs.
type Source interface {
	SumActiveMonthlyExpenses(ctx context.Context) (float64, error)
	WageConfig(ctx context.Context) (*models.WageConfig, error)
	GeneralConfig(ctx context.Context) (*models.GeneralConfig, error)
	SalesInRange(ctx context.Context, from, to time.Time) ([]models.SaleWithProduct, error)
	ProductsInWeek(ctx context.Context, weekID string) ([]models.ProductWithCosts, error)
	ProductsByID(ctx context.Context, ids []int64) ([]models.ProductWithCosts, error)
}

// WeeklyReport is one point of the weekly profitability trend.
type WeeklyReport struct {
	WeekID     string    `json:"week_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	PaidTotal  float64   `json:"paid_total"`
	TotalCosts float64   `json:"total_costs"`
	NetProfit  float64   `json:"net_profit"`
	SalesCount int       `json:"sales_count"`
	UnitsSold  int       `json:"units_sold"`
	ActiveDays int       `json:"active_days"`
	Growth     float64   `json:"growth"`
}

// ProductReport is the trailing-month performance of one menu item, merged across batches.
type ProductReport struct {
	Name          string  `json:"name"`
	TimesProduced int     `json:"times_produced"`
	TotalProduced int     `json:"total_produced"`
	TotalSold     int     `json:"total_sold"`
	SellThrough   float64 `json:"sell_through"`
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	NetProfit     float64 `json:"net_profit"`
	AveragePrice  float64 `json:"average_price"`
}

// Aggregator builds weekly and per-product reports from storage.
type Aggregator struct {
	src Source
}

// NewAggregator wires an aggregator over a storage source.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Growth is the percent change of net profit against the previous week.
// It is 0 when there is no previous week or its net profit is 0.
func Growth(current WeeklyReport, previous *WeeklyReport) float64 {
	if previous == nil || previous.NetProfit == 0 {
		return 0
	}
	return (current.NetProfit - previous.NetProfit) / previous.NetProfit * 100
}

// Weekly aggregates the trailing weeks ending with the week of today, oldest first.
// The window is clamped to MaxWeeks.
// Missing wage or general configuration yields an empty series.
func (a *Aggregator) Weekly(ctx context.Context, today time.Time, weeks int) ([]WeeklyReport, error) {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	weeks = min(weeks, MaxWeeks)

	daily, ok, err := a.dailyOverhead(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []WeeklyReport{}, nil
	}

	out := make([]WeeklyReport, weeks)
	for i := 0; i < weeks; i++ {
		day := calendar.Date(today).AddDate(0, 0, -7*i)
		report, err := a.week(ctx, day, daily)
		if err != nil {
			return nil, err
		}
		// Iteration runs newest to oldest; fill from the back so the slice reads oldest first.
		out[weeks-1-i] = report
	}

	for i := range out {
		if i == 0 {
			continue
		}
		out[i].Growth = Growth(out[i], &out[i-1])
	}
	return out, nil
}

func (a *Aggregator) week(ctx context.Context, day time.Time, dailyOverhead float64) (WeeklyReport, error) {
	start, end := calendar.WeekRange(day)
	report := WeeklyReport{
		WeekID:    calendar.WeekID(day),
		StartDate: start,
		EndDate:   end,
	}

	sales, err := a.src.SalesInRange(ctx, start, end)
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("load sales for %s: %w", report.WeekID, err)
	}

	days := make(map[string]struct{})
	for _, s := range sales {
		days[calendar.FormatDate(s.Date)] = struct{}{}
		if !s.IsPaid() {
			continue
		}
		report.PaidTotal += s.Total()
		report.SalesCount++
		report.UnitsSold += s.Quantity
	}
	report.ActiveDays = min(len(days), models.ProductionDaysPerWeek)

	products, err := a.src.ProductsInWeek(ctx, report.WeekID)
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("load products for %s: %w", report.WeekID, err)
	}
	var materials float64
	for _, p := range products {
		materials += p.CostTotal()
	}

	report.TotalCosts = dailyOverhead*float64(report.ActiveDays) + materials
	report.NetProfit = report.PaidTotal - report.TotalCosts
	return report, nil
}

// dailyOverhead is the fixed-expense share plus wages of one working day.
func (a *Aggregator) dailyOverhead(ctx context.Context) (float64, bool, error) {
	wage, err := a.src.WageConfig(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("load wage config: %w", err)
	}
	general, err := a.src.GeneralConfig(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("load general config: %w", err)
	}
	if wage == nil || general == nil {
		return 0, false, nil
	}
	monthly, err := a.src.SumActiveMonthlyExpenses(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("sum fixed expenses: %w", err)
	}
	return pricing.DailyFixedExpense(monthly, general.WorkingDaysPerMonth) + wage.DailyTotal(), true, nil
}

// Products groups the sales of the trailing month by product name, best net profit first.
func (a *Aggregator) Products(ctx context.Context, today time.Time) ([]ProductReport, error) {
	to := calendar.Date(today)
	from := to.AddDate(0, -1, 0)

	sales, err := a.src.SalesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sales for product report: %w", err)
	}

	type group struct {
		ids   []int64
		seen  map[int64]struct{}
		sales []models.SaleWithProduct
	}
	groups := make(map[string]*group)
	var ids []int64
	for _, s := range sales {
		g, ok := groups[s.ProductName]
		if !ok {
			g = &group{seen: make(map[int64]struct{})}
			groups[s.ProductName] = g
		}
		g.sales = append(g.sales, s)
		if _, dup := g.seen[s.ProductID]; !dup {
			g.seen[s.ProductID] = struct{}{}
			g.ids = append(g.ids, s.ProductID)
			ids = append(ids, s.ProductID)
		}
	}

	products, err := a.src.ProductsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products for product report: %w", err)
	}
	byID := make(map[int64]models.ProductWithCosts, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ProductReport, 0, len(names))
	for _, name := range names {
		g := groups[name]
		r := ProductReport{Name: name, TimesProduced: len(g.ids)}
		for _, id := range g.ids {
			p, ok := byID[id]
			if !ok {
				continue
			}
			if p.ProducedQty != nil {
				r.TotalProduced += *p.ProducedQty
			}
			r.Cost += p.CostTotal()
		}
		for _, s := range g.sales {
			if !s.IsPaid() {
				continue
			}
			r.TotalSold += s.Quantity
			r.Revenue += s.Total()
		}
		if r.TotalProduced > 0 {
			r.SellThrough = float64(r.TotalSold) / float64(r.TotalProduced) * 100
		}
		if r.TotalSold > 0 {
			r.AveragePrice = r.Revenue / float64(r.TotalSold)
		}
		r.NetProfit = r.Revenue - r.Cost
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetProfit > out[j].NetProfit
	})
	return out, nil
}
