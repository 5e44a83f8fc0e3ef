package ledger

import (
	"context"
	"strings"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/models"
)

// WageConfig returns the wage singleton, nil when unset.
func (s *Service) WageConfig(ctx context.Context) (*models.WageConfig, error) {
	return s.store.WageConfig(ctx)
}

// SetWageConfig replaces the wage singleton.
func (s *Service) SetWageConfig(ctx context.Context, w models.WageConfig) (models.WageConfig, error) {
	if w.PerPersonDaily < 0 || w.Headcount < 0 {
		return models.WageConfig{}, invalid("El sueldo y el número de personas no pueden ser negativos")
	}
	if err := s.store.UpsertWageConfig(ctx, w); err != nil {
		return models.WageConfig{}, err
	}
	return w, nil
}

// GeneralConfig returns the general singleton, nil when unset.
func (s *Service) GeneralConfig(ctx context.Context) (*models.GeneralConfig, error) {
	return s.store.GeneralConfig(ctx)
}

// SetGeneralConfig replaces the general singleton, tagging it with the current month.
func (s *Service) SetGeneralConfig(ctx context.Context, marginFraction float64, workingDays int) (models.GeneralConfig, error) {
	if marginFraction < 0 {
		return models.GeneralConfig{}, invalid("El margen no puede ser negativo")
	}
	if workingDays < 0 {
		return models.GeneralConfig{}, invalid("Los días laborales no pueden ser negativos")
	}
	g := models.GeneralConfig{
		MarginFraction:      marginFraction,
		WorkingDaysPerMonth: workingDays,
		MonthTag:            calendar.MonthTag(s.Today()),
	}
	if err := s.store.UpsertGeneralConfig(ctx, g); err != nil {
		return models.GeneralConfig{}, err
	}
	return g, nil
}

// FixedExpenses lists the active fixed expenses.
func (s *Service) FixedExpenses(ctx context.Context) ([]models.FixedExpense, error) {
	return s.store.FixedExpenses(ctx)
}

func validateExpense(name string, amount float64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("El nombre del gasto es obligatorio")
	}
	if amount < 0 {
		return "", invalid("El monto mensual no puede ser negativo")
	}
	return name, nil
}

// CreateFixedExpense adds an active fixed expense.
func (s *Service) CreateFixedExpense(ctx context.Context, name string, monthlyAmount float64) (models.FixedExpense, error) {
	name, err := validateExpense(name, monthlyAmount)
	if err != nil {
		return models.FixedExpense{}, err
	}
	e := models.FixedExpense{Name: name, MonthlyAmount: monthlyAmount, Active: true}
	if e.ID, err = s.store.InsertFixedExpense(ctx, e); err != nil {
		return models.FixedExpense{}, err
	}
	return e, nil
}

// UpdateFixedExpense replaces a fixed expense.
func (s *Service) UpdateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error) {
	name, err := validateExpense(e.Name, e.MonthlyAmount)
	if err != nil {
		return models.FixedExpense{}, err
	}
	e.Name = name
	if err := s.store.UpdateFixedExpense(ctx, e); err != nil {
		return models.FixedExpense{}, err
	}
	return e, nil
}

// DeleteFixedExpense soft-deletes a fixed expense.
func (s *Service) DeleteFixedExpense(ctx context.Context, id int64) error {
	return s.store.DeactivateFixedExpense(ctx, id)
}

// SumActiveMonthly totals the active fixed expenses.
func (s *Service) SumActiveMonthly(ctx context.Context) (float64, error) {
	return s.store.SumActiveMonthlyExpenses(ctx)
}
