package main

import (
	"net/http"
	"strings"

	"github.com/Simplici0/burritos/internal/ledger"
	"github.com/Simplici0/burritos/internal/models"
)

type productRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type productionRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type productStateRequest struct {
	State string `json:"state" validate:"required,oneof=planned purchased produced completed"`
}

type costRecordRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Measurement string   `json:"measurement" validate:"omitempty,oneof=weight unit"`
	UnitPrice   *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	AmountPaid  *float64 `json:"amount_paid" validate:"omitempty,gte=0"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gte=0"`
}

func (c costRecordRequest) input() ledger.CostRecordInput {
	return ledger.CostRecordInput{
		Name:        c.Name,
		Measurement: models.MeasurementMode(c.Measurement),
		UnitPrice:   c.UnitPrice,
		AmountPaid:  c.AmountPaid,
		Quantity:    c.Quantity,
	}
}

type costRecordsRequest struct {
	Records []costRecordRequest `json:"records" validate:"required,min=1,dive"`
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.ledger.ProductsInWeek(r.Context(), strings.TrimSpace(r.URL.Query().Get("week")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductsCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.ledger.CreateProduct(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handleProductOfDay(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date", s.ledger.Today())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	p, err := s.ledger.ProductOfDay(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProductsUnproduced(w http.ResponseWriter, r *http.Request) {
	products, err := s.ledger.UnproducedProducts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := s.ledger.Product(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProductsDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProductionRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req productionRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.ledger.RecordProduction(r.Context(), id, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProductState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req productStateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.ledger.SetProductState(r.Context(), id, models.ProductState(req.State)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProductPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	result, err := s.ledger.CalculatePrice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleProductAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	exclude, err := queryInt(r, "exclude_sale", 0, 0)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	n, err := s.ledger.AvailableUnits(r.Context(), id, int64(exclude))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"available": n})
}

func (s *server) handleCostRecordsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req costRecordsRequest
	if !s.decode(w, r, &req) {
		return
	}
	inputs := make([]ledger.CostRecordInput, len(req.Records))
	for i, rec := range req.Records {
		inputs[i] = rec.input()
	}
	records, err := s.ledger.AddCostRecords(r.Context(), id, inputs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, records)
}

func (s *server) handleCostRecordsClear(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	n, err := s.ledger.ClearCostRecords(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *server) handleCostRecordUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req costRecordRequest
	if !s.decode(w, r, &req) {
		return
	}
	rec, err := s.ledger.UpdateCostRecord(r.Context(), id, req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleCostRecordDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteCostRecord(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
