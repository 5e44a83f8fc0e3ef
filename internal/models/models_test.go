package models

import "testing"

func ptr(v float64) *float64 { return &v }

func TestProductWithCostsCostTotalTreatsMissingAsZero(t *testing.T) {
	p := ProductWithCosts{Costs: []CostRecord{
		{Name: "Carne", AmountPaid: ptr(120)},
		{Name: "Tortillas", AmountPaid: nil},
		{Name: "Salsa", AmountPaid: ptr(30)},
	}}

	if got := p.CostTotal(); got != 150 {
		t.Fatalf("CostTotal = %v, want 150", got)
	}
}

func TestProductWithCostsIsComplete(t *testing.T) {
	qty := 20
	p := ProductWithCosts{}
	if p.IsComplete() {
		t.Fatalf("empty product should not be complete")
	}
	p.Costs = []CostRecord{{Name: "Carne"}}
	if p.IsComplete() {
		t.Fatalf("product without production should not be complete")
	}
	p.ProducedQty = &qty
	if !p.IsComplete() {
		t.Fatalf("expected complete product")
	}
}

func TestSaleHelpers(t *testing.T) {
	s := Sale{Quantity: 3, SuggestedPrice: 34.5, ActualPrice: 35, Payment: PaymentOpen}
	if s.Total() != 105 {
		t.Fatalf("Total = %v, want 105", s.Total())
	}
	if s.IsPaid() {
		t.Fatalf("pending sale reported as paid")
	}
	if s.PriceDifference() != 0.5 {
		t.Fatalf("PriceDifference = %v, want 0.5", s.PriceDifference())
	}
	s.Payment = PaidCard
	if !s.IsPaid() {
		t.Fatalf("card sale reported as unpaid")
	}
}

func TestWageConfigTotals(t *testing.T) {
	w := WageConfig{PerPersonDaily: 100, Headcount: 2}
	if w.DailyTotal() != 200 {
		t.Fatalf("DailyTotal = %v, want 200", w.DailyTotal())
	}
	if w.WeeklyTotal() != 1000 {
		t.Fatalf("WeeklyTotal = %v, want 1000", w.WeeklyTotal())
	}
}
