package main

import (
	"net/http"

	"github.com/Simplici0/burritos/internal/ledger"
	"github.com/Simplici0/burritos/internal/models"
)

type saleRequest struct {
	ProductID      int64    `json:"product_id" validate:"required,gt=0"`
	Quantity       int      `json:"quantity" validate:"required,gt=0"`
	SuggestedPrice *float64 `json:"suggested_price" validate:"omitempty,gte=0"`
	ActualPrice    *float64 `json:"actual_price" validate:"required,gte=0"`
	Note           string   `json:"note" validate:"max=500"`
	Payment        string   `json:"payment" validate:"required,oneof=cash card pending"`
}

type saleUpdateRequest struct {
	Quantity    int      `json:"quantity" validate:"required,gt=0"`
	ActualPrice *float64 `json:"actual_price" validate:"required,gte=0"`
	Note        string   `json:"note" validate:"max=500"`
	Payment     string   `json:"payment" validate:"required,oneof=cash card pending"`
}

type paymentRequest struct {
	Payment string `json:"payment" validate:"required,oneof=cash card"`
}

// handleSalesList serves ?from=&to= ranges, or a single ?date= (today by default).
func (s *server) handleSalesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") != "" || q.Get("to") != "" {
		today := s.ledger.Today()
		from, err := queryDate(r, "from", today)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		to, err := queryDate(r, "to", today)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		sales, err := s.ledger.SalesInRange(r.Context(), from, to)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sales)
		return
	}

	date, err := queryDate(r, "date", s.ledger.Today())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	sales, err := s.ledger.SalesOn(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *server) handleSalesPending(w http.ResponseWriter, r *http.Request) {
	sales, err := s.ledger.PendingSales(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *server) handleSalesCreate(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !s.decode(w, r, &req) {
		return
	}
	sale, err := s.ledger.RecordSale(r.Context(), ledger.SaleInput{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		SuggestedPrice: req.SuggestedPrice,
		ActualPrice:    *req.ActualPrice,
		Note:           req.Note,
		Payment:        models.PaymentState(req.Payment),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *server) handleSalesUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req saleUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	sale, err := s.ledger.UpdateSale(r.Context(), id, ledger.SaleUpdate{
		Quantity:    req.Quantity,
		ActualPrice: *req.ActualPrice,
		Note:        req.Note,
		Payment:     models.PaymentState(req.Payment),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *server) handleSalesDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteSale(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSalesPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.MarkPaid(r.Context(), id, models.PaymentState(req.Payment)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
