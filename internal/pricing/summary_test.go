package pricing

import "testing"

func TestSummarize_AboveBreakEven(t *testing.T) {
	s := Summarize(550, SalesTotals{PaidTotal: 600, SalesCount: 12, UnitsSold: 18})

	nearlyEqual(t, "netProfit", s.NetProfit, 50)
	nearlyEqual(t, "percentAchieved", s.PercentAchieved, 600.0/550.0*100)
	nearlyEqual(t, "shortfall", s.Shortfall, 0)
	if !s.BreakEvenReached || !s.BreakEvenDefined {
		t.Fatalf("expected reached and defined break-even: %+v", s)
	}
	if s.SalesCount != 12 || s.UnitsSold != 18 {
		t.Fatalf("sales totals not carried over: %+v", s)
	}
}

func TestSummarize_BelowBreakEven(t *testing.T) {
	s := Summarize(550, SalesTotals{PaidTotal: 300})

	nearlyEqual(t, "shortfall", s.Shortfall, 250)
	nearlyEqual(t, "netProfit", s.NetProfit, -250)
	if s.PercentAchieved < 54.5 || s.PercentAchieved > 54.55 {
		t.Fatalf("percentAchieved = %v, want ~54.5", s.PercentAchieved)
	}
	if s.BreakEvenReached {
		t.Fatalf("break-even should not be reached")
	}
}

func TestSummarize_ZeroBreakEven(t *testing.T) {
	s := Summarize(0, SalesTotals{PaidTotal: 80})

	nearlyEqual(t, "percentAchieved", s.PercentAchieved, 0)
	nearlyEqual(t, "shortfall", s.Shortfall, 0)
	if s.BreakEvenDefined {
		t.Fatalf("zero break-even should be reported as undefined")
	}
}

func TestDailyCostMatchesCalculateWithoutMargin(t *testing.T) {
	global := GlobalInput{MonthlyFixedExpenses: 4400, WorkingDaysPerMonth: 22, DailyWages: 200, MarginFraction: 0.25}

	day := DailyCost(150, global)
	priced := Calculate(BatchInput{MaterialCost: 150, UnitsProduced: 20}, global)

	nearlyEqual(t, "breakEven", day.TotalCost, 550)
	nearlyEqual(t, "breakEven vs totalCost", day.TotalCost, priced.Breakdown.TotalCost)
}
