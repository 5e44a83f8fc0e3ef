package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/ws", s.hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config/wage", s.handleWageConfig)
		r.Put("/config/wage", s.handleWageConfigUpdate)
		r.Get("/config/general", s.handleGeneralConfig)
		r.Put("/config/general", s.handleGeneralConfigUpdate)

		r.Get("/expenses", s.handleExpensesList)
		r.Post("/expenses", s.handleExpensesCreate)
		r.Put("/expenses/{id}", s.handleExpensesUpdate)
		r.Delete("/expenses/{id}", s.handleExpensesDelete)

		r.Get("/products", s.handleProductsList)
		r.Post("/products", s.handleProductsCreate)
		r.Get("/products/today", s.handleProductOfDay)
		r.Get("/products/unproduced", s.handleProductsUnproduced)
		r.Get("/products/{id}", s.handleProductDetail)
		r.Delete("/products/{id}", s.handleProductsDelete)
		r.Post("/products/{id}/production", s.handleProductionRecord)
		r.Put("/products/{id}/state", s.handleProductState)
		r.Get("/products/{id}/price", s.handleProductPrice)
		r.Get("/products/{id}/available", s.handleProductAvailable)
		r.Post("/products/{id}/costs", s.handleCostRecordsCreate)
		r.Delete("/products/{id}/costs", s.handleCostRecordsClear)

		r.Put("/costs/{id}", s.handleCostRecordUpdate)
		r.Delete("/costs/{id}", s.handleCostRecordDelete)

		r.Get("/sales", s.handleSalesList)
		r.Post("/sales", s.handleSalesCreate)
		r.Get("/sales/pending", s.handleSalesPending)
		r.Put("/sales/{id}", s.handleSalesUpdate)
		r.Delete("/sales/{id}", s.handleSalesDelete)
		r.Post("/sales/{id}/payment", s.handleSalesPayment)

		r.Get("/summary", s.handleSummary)
		r.Get("/reports/weekly", s.handleWeeklyReports)
		r.Get("/reports/products", s.handleProductReports)
	})
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.hub.Clients()})
}
