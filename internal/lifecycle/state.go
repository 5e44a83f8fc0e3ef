package lifecycle

import "github.com/Simplici0/burritos/internal/models"

// Facts are the observations a product's state is derived from.
type Facts struct {
	HasCostRecords bool
	ProducedQty    *int
	UnitsSold      int
}

// DeriveState computes the automatic state of a product batch.
//
// Completed is sticky: once a batch is completed, manually or by selling out,
// it is never reverted. Without cost records the batch is always Planned.
func DeriveState(current models.ProductState, facts Facts) models.ProductState {
	switch {
	case current == models.StateCompleted:
		return models.StateCompleted
	case !facts.HasCostRecords:
		return models.StatePlanned
	case facts.ProducedQty == nil:
		return models.StatePurchased
	case facts.UnitsSold >= *facts.ProducedQty:
		return models.StateCompleted
	default:
		return models.StateProduced
	}
}

// NeedsWrite reports whether the derived state differs from the stored one.
func NeedsWrite(current, derived models.ProductState) bool {
	return current != derived
}

// CanTransitionManually reports whether an operator may force target.
// Any known state is allowed, including moving back from Completed.
func CanTransitionManually(target models.ProductState) bool {
	return target.Valid()
}
