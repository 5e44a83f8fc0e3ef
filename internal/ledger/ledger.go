package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/lifecycle"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/reports"
	"github.com/Simplici0/burritos/internal/store"
)

var (
	// ErrNotAvailable means there is not enough data yet: missing configuration,
	// no product of the day or a product without production.
	ErrNotAvailable = errors.New("not available")
	// ErrNotFound aliases the storage sentinel so callers only import ledger.
	ErrNotFound = store.ErrNotFound
	// ErrInsufficientUnits rejects a sale larger than what is left of the batch.
	ErrInsufficientUnits = errors.New("insufficient units")
)

// ValidationError carries a message meant for the operator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Service is the mutation and query API of the business. Every mutation runs
// in one transaction together with the product state re-derivation it triggers.
type Service struct {
	store   *store.Store
	reports *reports.Aggregator
	clock   calendar.Clock
	log     *zap.Logger
}

// New builds the service. A nil clock uses the system clock in local time.
func New(st *store.Store, clock calendar.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   st,
		reports: reports.NewAggregator(st),
		clock:   clock,
		log:     log,
	}
}

// Today is the current business date.
func (s *Service) Today() time.Time {
	return calendar.Today(s.clock)
}

// rederive recomputes and persists the automatic state of one product from
// its cumulative sales, the same count availability is checked against.
func (s *Service) rederive(ctx context.Context, q *store.Queries, productID int64) (models.ProductState, error) {
	p, err := q.Product(ctx, productID)
	if err != nil {
		return "", err
	}
	costs, err := q.CountCostRecords(ctx, productID)
	if err != nil {
		return "", err
	}
	sold, err := q.UnitsSold(ctx, productID, 0)
	if err != nil {
		return "", err
	}

	next := lifecycle.DeriveState(p.State, lifecycle.Facts{
		HasCostRecords: costs > 0,
		ProducedQty:    p.ProducedQty,
		UnitsSold:      sold,
	})
	if !lifecycle.NeedsWrite(p.State, next) {
		return next, nil
	}
	if err := q.SetProductState(ctx, productID, next); err != nil {
		return "", err
	}
	s.log.Debug("product state derived",
		zap.Int64("product_id", productID),
		zap.String("from", string(p.State)),
		zap.String("to", string(next)),
	)
	return next, nil
}
