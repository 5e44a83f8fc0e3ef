package ledger

import (
	"context"
	"strings"

	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/pricing"
	"github.com/Simplici0/burritos/internal/store"
)

const (
	// MsgCostRecordFields is shown when fewer than two figures are provided.
	MsgCostRecordFields = "Debes llenar al menos 2 campos (precio unitario, precio pagado o cantidad)"
	// MsgCostRecordMismatch is shown when the three figures contradict each other.
	MsgCostRecordMismatch = "El precio pagado no coincide con precio unitario × cantidad"
)

// CostRecordInput is an ingredient line as typed by the operator.
type CostRecordInput struct {
	Name        string
	Measurement models.MeasurementMode
	UnitPrice   *float64
	AmountPaid  *float64
	Quantity    *float64
}

// prepareCostRecord validates the input and derives the missing figure.
func prepareCostRecord(productID int64, in CostRecordInput) (models.CostRecord, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.CostRecord{}, invalid("El nombre del ingrediente es obligatorio")
	}
	measurement := in.Measurement
	if measurement == "" {
		measurement = models.ByUnit
	}
	if !measurement.Valid() {
		return models.CostRecord{}, invalid("Tipo de medida inválido: %q", measurement)
	}
	for _, v := range []*float64{in.UnitPrice, in.AmountPaid, in.Quantity} {
		if v != nil && *v < 0 {
			return models.CostRecord{}, invalid("Los valores no pueden ser negativos")
		}
	}

	r := pricing.CompleteRatio(pricing.Ratio{UnitPrice: in.UnitPrice, AmountPaid: in.AmountPaid, Quantity: in.Quantity})
	if !pricing.IsValidCostRecord(name, r) {
		return models.CostRecord{}, invalid(MsgCostRecordFields)
	}
	if !pricing.IsConsistent(r) {
		return models.CostRecord{}, invalid(MsgCostRecordMismatch)
	}

	return models.CostRecord{
		ProductID:   productID,
		Name:        name,
		Measurement: measurement,
		UnitPrice:   r.UnitPrice,
		AmountPaid:  r.AmountPaid,
		Quantity:    r.Quantity,
	}, nil
}

// AddCostRecord completes, validates and stores one cost record.
func (s *Service) AddCostRecord(ctx context.Context, productID int64, in CostRecordInput) (models.CostRecord, error) {
	out, err := s.AddCostRecords(ctx, productID, []CostRecordInput{in})
	if err != nil {
		return models.CostRecord{}, err
	}
	return out[0], nil
}

// AddCostRecords stores several cost records; either all of them persist or none.
func (s *Service) AddCostRecords(ctx context.Context, productID int64, inputs []CostRecordInput) ([]models.CostRecord, error) {
	if len(inputs) == 0 {
		return nil, invalid("Agrega al menos un ingrediente")
	}
	records := make([]models.CostRecord, len(inputs))
	for i, in := range inputs {
		r, err := prepareCostRecord(productID, in)
		if err != nil {
			return nil, err
		}
		records[i] = r
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if _, err := q.Product(ctx, productID); err != nil {
			return err
		}
		for i := range records {
			id, err := q.InsertCostRecord(ctx, records[i])
			if err != nil {
				return err
			}
			records[i].ID = id
		}
		_, err := s.rederive(ctx, q, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateCostRecord replaces a cost record with re-completed figures.
func (s *Service) UpdateCostRecord(ctx context.Context, id int64, in CostRecordInput) (models.CostRecord, error) {
	var out models.CostRecord
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		existing, err := q.CostRecord(ctx, id)
		if err != nil {
			return err
		}
		r, err := prepareCostRecord(existing.ProductID, in)
		if err != nil {
			return err
		}
		r.ID = id
		if err := q.UpdateCostRecord(ctx, r); err != nil {
			return err
		}
		if _, err := s.rederive(ctx, q, r.ProductID); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return models.CostRecord{}, err
	}
	return out, nil
}

// DeleteCostRecord removes a cost record and re-derives its product.
func (s *Service) DeleteCostRecord(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		existing, err := q.CostRecord(ctx, id)
		if err != nil {
			return err
		}
		if err := q.DeleteCostRecord(ctx, id); err != nil {
			return err
		}
		_, err = s.rederive(ctx, q, existing.ProductID)
		return err
	})
}

// ClearCostRecords removes every cost record of a product.
func (s *Service) ClearCostRecords(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		if n, err = q.DeleteCostRecordsFor(ctx, productID); err != nil {
			return err
		}
		_, err = s.rederive(ctx, q, productID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
