package pricing

import (
	"math"
	"strings"
)

// ratioTolerance is the relative slack allowed between UnitPrice * Quantity and
// AmountPaid, enough to absorb rounding to cents.
const ratioTolerance = 0.005

// Ratio holds the three related figures of a cost record. Nil means "not provided".
// When all three are present, UnitPrice * Quantity == AmountPaid.
type Ratio struct {
	UnitPrice  *float64
	AmountPaid *float64
	Quantity   *float64
}

// Present counts how many of the three figures are provided.
func (r Ratio) Present() int {
	n := 0
	for _, v := range []*float64{r.UnitPrice, r.AmountPaid, r.Quantity} {
		if v != nil {
			n++
		}
	}
	return n
}

// CompleteRatio fills the single missing figure from the other two.
// Records with all three or fewer than two figures are returned unchanged, and a
// division by zero leaves the target absent.
func CompleteRatio(r Ratio) Ratio {
	switch {
	case r.UnitPrice != nil && r.Quantity != nil && r.AmountPaid == nil:
		r.AmountPaid = float64Ptr(*r.UnitPrice * *r.Quantity)
	case r.UnitPrice != nil && r.AmountPaid != nil && r.Quantity == nil:
		if *r.UnitPrice != 0 {
			r.Quantity = float64Ptr(*r.AmountPaid / *r.UnitPrice)
		}
	case r.AmountPaid != nil && r.Quantity != nil && r.UnitPrice == nil:
		if *r.Quantity != 0 {
			r.UnitPrice = float64Ptr(*r.AmountPaid / *r.Quantity)
		}
	}
	return r
}

// IsValidCostRecord reports whether a cost record may be persisted: a non-blank
// name and at least two of the three figures. Run CompleteRatio first.
func IsValidCostRecord(name string, r Ratio) bool {
	return strings.TrimSpace(name) != "" && r.Present() >= 2
}

// IsConsistent reports whether a record with all three figures satisfies
// UnitPrice * Quantity == AmountPaid within rounding. Records missing a figure
// are trivially consistent.
func IsConsistent(r Ratio) bool {
	if r.Present() < 3 {
		return true
	}
	diff := math.Abs(*r.UnitPrice**r.Quantity - *r.AmountPaid)
	return diff <= ratioTolerance*math.Max(1, math.Abs(*r.AmountPaid))
}

func float64Ptr(v float64) *float64 {
	return &v
}
