package models

import "time"

// MeasurementMode tells how a raw material is bought.
type MeasurementMode string

const (
	ByWeight MeasurementMode = "weight"
	ByUnit   MeasurementMode = "unit"
)

// Valid reports whether m is a known measurement mode.
func (m MeasurementMode) Valid() bool {
	return m == ByWeight || m == ByUnit
}

// ProductState is the lifecycle state of a product batch.
type ProductState string

const (
	StatePlanned   ProductState = "planned"
	StatePurchased ProductState = "purchased"
	StateProduced  ProductState = "produced"
	StateCompleted ProductState = "completed"
)

// Valid reports whether s is a known product state.
func (s ProductState) Valid() bool {
	switch s {
	case StatePlanned, StatePurchased, StateProduced, StateCompleted:
		return true
	}
	return false
}

// PaymentState is how (and whether) a sale was paid.
type PaymentState string

const (
	PaidCash    PaymentState = "cash"
	PaidCard    PaymentState = "card"
	PaymentOpen PaymentState = "pending"
)

// Valid reports whether p is a known payment state.
func (p PaymentState) Valid() bool {
	return p == PaidCash || p == PaidCard || p == PaymentOpen
}

// IsPaid reports whether money has been received.
func (p PaymentState) IsPaid() bool {
	return p == PaidCash || p == PaidCard
}

// CostRecord is one raw-material line item bought for a product batch.
// Any of the three numeric fields may be absent until completed.
type CostRecord struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Measurement MeasurementMode `json:"measurement"`
	UnitPrice   *float64        `json:"unit_price"`
	AmountPaid  *float64        `json:"amount_paid"`
	Quantity    *float64        `json:"quantity"`
}

// Product is one batch of a menu item.
type Product struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	CreatedDate    time.Time    `json:"created_date"`
	ProductionDate *time.Time   `json:"production_date,omitempty"`
	WeekID         string       `json:"week_id"`
	Active         bool         `json:"active"`
	ProducedQty    *int         `json:"produced_qty,omitempty"`
	State          ProductState `json:"state"`
}

// ProductWithCosts is a product together with the cost records it owns.
type ProductWithCosts struct {
	Product
	Costs []CostRecord `json:"costs"`
}

// CostTotal sums the amount paid across the product's cost records; absent amounts count as zero.
func (p ProductWithCosts) CostTotal() float64 {
	var total float64
	for _, c := range p.Costs {
		if c.AmountPaid != nil {
			total += *c.AmountPaid
		}
	}
	return total
}

// IsComplete reports whether the batch has both cost records and a recorded production.
func (p ProductWithCosts) IsComplete() bool {
	return len(p.Costs) > 0 && p.ProducedQty != nil
}

// Sale is a sales transaction against one product.
type Sale struct {
	ID             int64        `json:"id"`
	ProductID      int64        `json:"product_id"`
	Date           time.Time    `json:"date"`
	Quantity       int          `json:"quantity"`
	SuggestedPrice float64      `json:"suggested_price"`
	ActualPrice    float64      `json:"actual_price"`
	Note           string       `json:"note"`
	Payment        PaymentState `json:"payment"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Total is the amount charged for the sale.
func (s Sale) Total() float64 {
	return s.ActualPrice * float64(s.Quantity)
}

// IsPaid reports whether the sale has been collected.
func (s Sale) IsPaid() bool {
	return s.Payment.IsPaid()
}

// PriceDifference is how far the charged price deviates from the suggested one.
func (s Sale) PriceDifference() float64 {
	return s.ActualPrice - s.SuggestedPrice
}

// SaleWithProduct pairs a sale with the product it was made against.
type SaleWithProduct struct {
	Sale
	ProductName string `json:"product_name"`
}

// FixedExpense is a recurring monthly cost.
type FixedExpense struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
	Active        bool    `json:"active"`
}

// ProductionDaysPerWeek is the number of working days assumed in a week.
const ProductionDaysPerWeek = 5

// WageConfig holds the per-person daily wage and the number of people paid.
type WageConfig struct {
	PerPersonDaily float64 `json:"per_person_daily"`
	Headcount      int     `json:"headcount"`
}

// DailyTotal is the wage cost of one working day.
func (w WageConfig) DailyTotal() float64 {
	return w.PerPersonDaily * float64(w.Headcount)
}

// WeeklyTotal is the wage cost of a five-day week.
func (w WageConfig) WeeklyTotal() float64 {
	return w.DailyTotal() * ProductionDaysPerWeek
}

// GeneralConfig holds the target margin and the working calendar.
type GeneralConfig struct {
	MarginFraction      float64 `json:"margin_fraction"`
	WorkingDaysPerMonth int     `json:"working_days_per_month"`
	MonthTag            string  `json:"month_tag"`
}
