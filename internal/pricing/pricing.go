package pricing

// BatchInput represents the figures of one production batch used to price it.
type BatchInput struct {
	MaterialCost  float64
	UnitsProduced int
}

// GlobalInput represents the shared cost structure of the business.
type GlobalInput struct {
	MonthlyFixedExpenses float64
	WorkingDaysPerMonth  int
	DailyWages           float64
	MarginFraction       float64
}

// Breakdown contains the cost components of one working day.
type Breakdown struct {
	MaterialCost      float64 `json:"material_cost"`
	DailyFixedExpense float64 `json:"daily_fixed_expense"`
	DailyWages        float64 `json:"daily_wages"`
	TotalCost         float64 `json:"total_cost"`
}

// Totals contains the per-unit prices and the projected profit.
// PerUnitDefined is false when no units were produced; every per-unit value is then 0.
type Totals struct {
	MinimumPrice       float64 `json:"minimum_price"`
	SuggestedPrice     float64 `json:"suggested_price"`
	NetProfitProjected float64 `json:"net_profit_projected"`
	WageShareOfPrice   float64 `json:"wage_share_of_price"`
	UnitsProduced      int     `json:"units_produced"`
	PerUnitDefined     bool    `json:"per_unit_defined"`
}

// Result groups the full pricing output, including detailed breakdown and totals.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	Totals    Totals    `json:"totals"`
}

// DailyFixedExpense pro-rates the monthly fixed expenses over the working days.
// Non-positive working days yield 0.
func DailyFixedExpense(monthlyTotal float64, workingDays int) float64 {
	if workingDays <= 0 {
		return 0
	}
	return monthlyTotal / float64(workingDays)
}

// DailyCost is the cost of one working day for a batch: materials plus the
// daily shares of fixed expenses and wages. No margin is applied.
func DailyCost(materialCost float64, global GlobalInput) Breakdown {
	fixed := DailyFixedExpense(global.MonthlyFixedExpenses, global.WorkingDaysPerMonth)
	return Breakdown{
		MaterialCost:      materialCost,
		DailyFixedExpense: fixed,
		DailyWages:        global.DailyWages,
		TotalCost:         materialCost + fixed + global.DailyWages,
	}
}

// Calculate computes minimum and suggested unit prices from batch and global inputs.
func Calculate(batch BatchInput, global GlobalInput) Result {
	breakdown := DailyCost(batch.MaterialCost, global)
	totals := Totals{UnitsProduced: batch.UnitsProduced}

	if batch.UnitsProduced > 0 {
		units := float64(batch.UnitsProduced)
		totals.PerUnitDefined = true
		totals.MinimumPrice = breakdown.TotalCost / units
		totals.SuggestedPrice = totals.MinimumPrice * (1 + global.MarginFraction)
		if totals.SuggestedPrice > 0 {
			totals.WageShareOfPrice = (global.DailyWages / units) / totals.SuggestedPrice
		}
	}
	totals.NetProfitProjected = totals.SuggestedPrice*float64(batch.UnitsProduced) - breakdown.TotalCost

	return Result{Breakdown: breakdown, Totals: totals}
}
