package pricing

// SalesTotals are the sale aggregates of one day.
type SalesTotals struct {
	PaidTotal     float64 `json:"paid_total"`
	SalesCount    int     `json:"sales_count"`
	UnitsSold     int     `json:"units_sold"`
	PendingCount  int     `json:"pending_count"`
	PendingAmount float64 `json:"pending_amount"`
}

// Summary is the break-even position of one day.
type Summary struct {
	SalesTotals
	BreakEvenPoint   float64 `json:"break_even_point"`
	NetProfit        float64 `json:"net_profit"`
	PercentAchieved  float64 `json:"percent_achieved"`
	Shortfall        float64 `json:"shortfall"`
	BreakEvenReached bool    `json:"break_even_reached"`
	BreakEvenDefined bool    `json:"break_even_defined"`
}

// Summarize compares the paid sales of a day with its break-even point.
// A non-positive break-even point reports 0% achieved.
func Summarize(breakEven float64, totals SalesTotals) Summary {
	s := Summary{
		SalesTotals:      totals,
		BreakEvenPoint:   breakEven,
		NetProfit:        totals.PaidTotal - breakEven,
		BreakEvenReached: totals.PaidTotal >= breakEven,
		BreakEvenDefined: breakEven > 0,
	}
	if breakEven > 0 {
		s.PercentAchieved = totals.PaidTotal / breakEven * 100
	}
	if shortfall := breakEven - totals.PaidTotal; shortfall > 0 {
		s.Shortfall = shortfall
	}
	return s
}
