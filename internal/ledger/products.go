package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/lifecycle"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/store"
)

// CreateProduct starts a new batch dated today.
func (s *Service) CreateProduct(ctx context.Context, name string) (models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Product{}, invalid("El nombre del producto es obligatorio")
	}

	today := s.Today()
	p := models.Product{
		Name:        name,
		CreatedDate: today,
		WeekID:      calendar.WeekID(today),
		Active:      true,
		State:       models.StatePlanned,
	}
	id, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	p.ID = id
	s.log.Info("product created", zap.Int64("product_id", id), zap.String("name", name))
	return p, nil
}

// Product loads a product with its cost records.
func (s *Service) Product(ctx context.Context, id int64) (models.ProductWithCosts, error) {
	return s.store.ProductWithCosts(ctx, id)
}

// RecordProduction sets the produced quantity, dated today, and re-derives the state.
func (s *Service) RecordProduction(ctx context.Context, productID int64, qty int) (models.Product, error) {
	if qty <= 0 {
		return models.Product{}, invalid("La cantidad producida debe ser mayor a 0")
	}

	var out models.Product
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.SetProduction(ctx, productID, qty, s.Today()); err != nil {
			return err
		}
		if _, err := s.rederive(ctx, q, productID); err != nil {
			return err
		}
		p, err := q.Product(ctx, productID)
		out = p
		return err
	})
	if err != nil {
		return models.Product{}, err
	}
	return out, nil
}

// SetProductState overrides the automatic state. Only Completed survives the
// next automatic derivation.
func (s *Service) SetProductState(ctx context.Context, productID int64, state models.ProductState) error {
	if !lifecycle.CanTransitionManually(state) {
		return invalid("Estado inválido: %q", state)
	}
	if err := s.store.SetProductState(ctx, productID, state); err != nil {
		return err
	}
	s.log.Info("product state set manually", zap.Int64("product_id", productID), zap.String("state", string(state)))
	return nil
}

// DeleteProduct soft-deletes a product.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.store.DeactivateProduct(ctx, productID)
}

// ReconcileStates re-derives every active product and returns how many changed.
func (s *Service) ReconcileStates(ctx context.Context) (int, error) {
	changed := 0
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		changed = 0
		products, err := q.ActiveProducts(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			next, err := s.rederive(ctx, q, p.ID)
			if err != nil {
				return fmt.Errorf("reconcile product %d: %w", p.ID, err)
			}
			if next != p.State {
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// ProductsInWeek lists the active products of a week; an empty id means the current week.
func (s *Service) ProductsInWeek(ctx context.Context, weekID string) ([]models.ProductWithCosts, error) {
	if weekID == "" {
		weekID = calendar.WeekID(s.Today())
	}
	return s.store.ProductsInWeek(ctx, weekID)
}

// ProductOfDay returns the product designated for date.
func (s *Service) ProductOfDay(ctx context.Context, date time.Time) (models.ProductWithCosts, error) {
	p, err := s.store.ProductOfDay(ctx, calendar.Date(date))
	if errors.Is(err, store.ErrNotFound) {
		return models.ProductWithCosts{}, fmt.Errorf("product of %s: %w", calendar.FormatDate(date), ErrNotAvailable)
	}
	return p, err
}

// UnproducedProducts lists active products still waiting for production.
func (s *Service) UnproducedProducts(ctx context.Context) ([]models.ProductWithCosts, error) {
	return s.store.UnproducedProducts(ctx)
}
