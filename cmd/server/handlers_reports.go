package main

import (
	"fmt"
	"net/http"

	"github.com/Simplici0/burritos/internal/reports"
)

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date", s.ledger.Today())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	summary, err := s.ledger.DailySummary(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *server) handleWeeklyReports(w http.ResponseWriter, r *http.Request) {
	weeks, err := queryInt(r, "weeks", s.reportWeeks, 1)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if weeks > reports.MaxWeeks {
		writeBadRequest(w, fmt.Sprintf("weeks no puede ser mayor a %d", reports.MaxWeeks))
		return
	}
	out, err := s.ledger.WeeklyReports(r.Context(), weeks)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleProductReports(w http.ResponseWriter, r *http.Request) {
	out, err := s.ledger.ProductReports(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
