package main

import (
	"net/http"

	"github.com/Simplici0/burritos/internal/models"
)

type wageConfigRequest struct {
	PerPersonDaily *float64 `json:"per_person_daily" validate:"required,gte=0"`
	Headcount      *int     `json:"headcount" validate:"required,gte=0"`
}

type generalConfigRequest struct {
	MarginFraction      *float64 `json:"margin_fraction" validate:"required,gte=0"`
	WorkingDaysPerMonth *int     `json:"working_days_per_month" validate:"required,gte=0"`
}

type expenseRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	MonthlyAmount *float64 `json:"monthly_amount" validate:"required,gte=0"`
	Active        *bool    `json:"active"`
}

func (s *server) handleWageConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.WageConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cfg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleWageConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req wageConfigRequest
	if !s.decode(w, r, &req) {
		return
	}
	cfg, err := s.ledger.SetWageConfig(r.Context(), models.WageConfig{
		PerPersonDaily: *req.PerPersonDaily,
		Headcount:      *req.Headcount,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleGeneralConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.GeneralConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cfg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleGeneralConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req generalConfigRequest
	if !s.decode(w, r, &req) {
		return
	}
	cfg, err := s.ledger.SetGeneralConfig(r.Context(), *req.MarginFraction, *req.WorkingDaysPerMonth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleExpensesList(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.FixedExpenses(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.ledger.SumActiveMonthly(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses":      expenses,
		"monthly_total": total,
	})
}

func (s *server) handleExpensesCreate(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.ledger.CreateFixedExpense(r.Context(), req.Name, *req.MonthlyAmount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *server) handleExpensesUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !s.decode(w, r, &req) {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	e, err := s.ledger.UpdateFixedExpense(r.Context(), models.FixedExpense{
		ID:            id,
		Name:          req.Name,
		MonthlyAmount: *req.MonthlyAmount,
		Active:        active,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) handleExpensesDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteFixedExpense(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
