package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/models"
	"github.com/Simplici0/burritos/internal/pricing"
	"github.com/Simplici0/burritos/internal/store"
)

// SaleInput is a new sale as entered at the counter. A nil SuggestedPrice
// snapshots the product's current suggested price.
type SaleInput struct {
	ProductID      int64
	Quantity       int
	SuggestedPrice *float64
	ActualPrice    float64
	Note           string
	Payment        models.PaymentState
}

// SaleUpdate holds the editable fields of an existing sale.
type SaleUpdate struct {
	Quantity    int
	ActualPrice float64
	Note        string
	Payment     models.PaymentState
}

func validateSaleFields(qty int, price float64, payment models.PaymentState) error {
	if qty <= 0 {
		return invalid("La cantidad debe ser mayor a 0")
	}
	if price < 0 {
		return invalid("El precio no puede ser negativo")
	}
	if !payment.Valid() {
		return invalid("Forma de pago inválida: %q", payment)
	}
	return nil
}

// availableUnits is produced minus everything sold of the product, ignoring excludeSaleID.
func availableUnits(ctx context.Context, q *store.Queries, p models.Product, excludeSaleID int64) (int, error) {
	if p.ProducedQty == nil {
		return 0, nil
	}
	sold, err := q.UnitsSold(ctx, p.ID, excludeSaleID)
	if err != nil {
		return 0, err
	}
	return max(*p.ProducedQty-sold, 0), nil
}

// AvailableUnits reports how many units of a product can still be sold.
// excludingSaleID lets an edit count the sale being edited as available.
func (s *Service) AvailableUnits(ctx context.Context, productID, excludingSaleID int64) (int, error) {
	p, err := s.store.Product(ctx, productID)
	if err != nil {
		return 0, err
	}
	return availableUnits(ctx, s.store.Queries, p, excludingSaleID)
}

// RecordSale stores a sale dated today.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (models.Sale, error) {
	if err := validateSaleFields(in.Quantity, in.ActualPrice, in.Payment); err != nil {
		return models.Sale{}, err
	}
	if in.SuggestedPrice != nil && *in.SuggestedPrice < 0 {
		return models.Sale{}, invalid("El precio sugerido no puede ser negativo")
	}

	sale := models.Sale{
		ProductID:   in.ProductID,
		Date:        s.Today(),
		Quantity:    in.Quantity,
		ActualPrice: in.ActualPrice,
		Note:        strings.TrimSpace(in.Note),
		Payment:     in.Payment,
		CreatedAt:   s.clock.Now(),
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		p, err := q.ProductWithCosts(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !p.Active {
			return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
		}

		available, err := availableUnits(ctx, q, p.Product, 0)
		if err != nil {
			return err
		}
		if in.Quantity > available {
			return fmt.Errorf("sell %d of product %d with %d left: %w", in.Quantity, p.ID, available, ErrInsufficientUnits)
		}

		if in.SuggestedPrice != nil {
			sale.SuggestedPrice = *in.SuggestedPrice
		} else {
			sale.SuggestedPrice, err = suggestedPrice(ctx, q, p)
			if err != nil {
				return err
			}
		}

		if sale.ID, err = q.InsertSale(ctx, sale); err != nil {
			return err
		}
		_, err = s.rederive(ctx, q, p.ID)
		return err
	})
	if err != nil {
		return models.Sale{}, err
	}

	s.log.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("payment", string(sale.Payment)),
	)
	return sale, nil
}

// suggestedPrice is the current suggested unit price, or 0 when it cannot be computed yet.
func suggestedPrice(ctx context.Context, q *store.Queries, p models.ProductWithCosts) (float64, error) {
	result, err := priceProduct(ctx, q, p)
	if errors.Is(err, ErrNotAvailable) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return result.Totals.SuggestedPrice, nil
}

// UpdateSale edits quantity, price, note and payment of a sale.
func (s *Service) UpdateSale(ctx context.Context, id int64, in SaleUpdate) (models.Sale, error) {
	if err := validateSaleFields(in.Quantity, in.ActualPrice, in.Payment); err != nil {
		return models.Sale{}, err
	}

	var out models.Sale
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		sale, err := q.Sale(ctx, id)
		if err != nil {
			return err
		}
		p, err := q.Product(ctx, sale.ProductID)
		if err != nil {
			return err
		}
		available, err := availableUnits(ctx, q, p, id)
		if err != nil {
			return err
		}
		if in.Quantity > available {
			return fmt.Errorf("sell %d of product %d with %d left: %w", in.Quantity, p.ID, available, ErrInsufficientUnits)
		}

		sale.Quantity = in.Quantity
		sale.ActualPrice = in.ActualPrice
		sale.Note = strings.TrimSpace(in.Note)
		sale.Payment = in.Payment
		if err := q.UpdateSale(ctx, sale); err != nil {
			return err
		}
		if _, err := s.rederive(ctx, q, sale.ProductID); err != nil {
			return err
		}
		out = sale
		return nil
	})
	if err != nil {
		return models.Sale{}, err
	}
	return out, nil
}

// DeleteSale removes a sale and re-derives its product.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		sale, err := q.Sale(ctx, id)
		if err != nil {
			return err
		}
		if err := q.DeleteSale(ctx, id); err != nil {
			return err
		}
		_, err = s.rederive(ctx, q, sale.ProductID)
		return err
	})
}

// MarkPaid settles a pending sale with cash or card.
func (s *Service) MarkPaid(ctx context.Context, id int64, payment models.PaymentState) error {
	if !payment.IsPaid() {
		return invalid("Forma de pago inválida: %q", payment)
	}
	return s.store.SetPayment(ctx, id, payment)
}

// SalesOn lists a day's sales, newest first.
func (s *Service) SalesOn(ctx context.Context, date time.Time) ([]models.SaleWithProduct, error) {
	return s.store.SalesOn(ctx, calendar.Date(date))
}

// PendingSales lists every unpaid sale.
func (s *Service) PendingSales(ctx context.Context) ([]models.SaleWithProduct, error) {
	return s.store.PendingSales(ctx)
}

// SalesInRange lists the sales dated between from and to, inclusive.
func (s *Service) SalesInRange(ctx context.Context, from, to time.Time) ([]models.SaleWithProduct, error) {
	from, to = calendar.Date(from), calendar.Date(to)
	if to.Before(from) {
		return nil, invalid("La fecha final no puede ser anterior a la inicial")
	}
	return s.store.SalesInRange(ctx, from, to)
}

// DayTotals exposes the raw sale aggregates of a day.
func (s *Service) DayTotals(ctx context.Context, date time.Time) (pricing.SalesTotals, error) {
	return s.store.DayTotals(ctx, calendar.Date(date))
}
