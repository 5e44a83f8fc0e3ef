package lifecycle

import (
	"testing"

	"github.com/Simplici0/burritos/internal/models"
)

func intPtr(v int) *int { return &v }

func TestDeriveState(t *testing.T) {
	cases := []struct {
		name    string
		current models.ProductState
		facts   Facts
		want    models.ProductState
	}{
		{"no costs", models.StatePlanned, Facts{}, models.StatePlanned},
		{"costs without production", models.StatePlanned, Facts{HasCostRecords: true}, models.StatePurchased},
		{"produced and selling", models.StatePurchased, Facts{HasCostRecords: true, ProducedQty: intPtr(20), UnitsSold: 5}, models.StateProduced},
		{"sold out", models.StateProduced, Facts{HasCostRecords: true, ProducedQty: intPtr(20), UnitsSold: 20}, models.StateCompleted},
		{"oversold", models.StateProduced, Facts{HasCostRecords: true, ProducedQty: intPtr(20), UnitsSold: 21}, models.StateCompleted},
		{"zero produced counts as sold out", models.StatePurchased, Facts{HasCostRecords: true, ProducedQty: intPtr(0)}, models.StateCompleted},
		{"costs removed falls back to planned", models.StateProduced, Facts{ProducedQty: intPtr(20)}, models.StatePlanned},
		{"manual produced is overwritten", models.StateProduced, Facts{HasCostRecords: true}, models.StatePurchased},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveState(tc.current, tc.facts); got != tc.want {
				t.Fatalf("DeriveState = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDeriveState_CompletedIsSticky(t *testing.T) {
	facts := []Facts{
		{},
		{HasCostRecords: true},
		{HasCostRecords: true, ProducedQty: intPtr(10), UnitsSold: 0},
		{HasCostRecords: false, ProducedQty: intPtr(10), UnitsSold: 10},
	}
	for i, f := range facts {
		if got := DeriveState(models.StateCompleted, f); got != models.StateCompleted {
			t.Fatalf("facts %d: DeriveState = %s, want completed", i, got)
		}
	}
}

func TestDeriveState_CostRecordsGateEverything(t *testing.T) {
	got := DeriveState(models.StatePlanned, Facts{HasCostRecords: false, ProducedQty: intPtr(5), UnitsSold: 5})
	if got != models.StatePlanned {
		t.Fatalf("DeriveState = %s, want planned", got)
	}
}

func TestNeedsWrite(t *testing.T) {
	if NeedsWrite(models.StateProduced, models.StateProduced) {
		t.Fatalf("unchanged state should not need a write")
	}
	if !NeedsWrite(models.StatePurchased, models.StateProduced) {
		t.Fatalf("changed state should need a write")
	}
}

func TestCanTransitionManually(t *testing.T) {
	for _, s := range []models.ProductState{models.StatePlanned, models.StatePurchased, models.StateProduced, models.StateCompleted} {
		if !CanTransitionManually(s) {
			t.Fatalf("manual transition to %s rejected", s)
		}
	}
	if CanTransitionManually("cooking") {
		t.Fatalf("unknown state accepted")
	}
}
