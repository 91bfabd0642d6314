package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
	"github.com/marcuseden/slavajewlery-sub001/internal/ids"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/pricing"
)

var ErrInvalidOrder = errors.New("invalid order input")

type OrderStore interface {
	Create(ctx context.Context, order models.Order) error
	ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]models.Order, error)
}

type DesignReader interface {
	GetByID(ctx context.Context, id string) (models.Design, error)
}

type OrderService struct {
	orders  OrderStore
	designs DesignReader
	cfg     config.PricingConfig
	log     zerolog.Logger
}

func NewOrderService(orders OrderStore, designs DesignReader, cfg config.PricingConfig, log zerolog.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		designs: designs,
		cfg:     cfg,
		log:     log,
	}
}

// Create prices the order from the design's current unit price. All amounts
// stay in integer cents.
func (s *OrderService) Create(ctx context.Context, buyerID, designID string, quantity int) (models.Order, error) {
	if quantity <= 0 || quantity > 100 {
		return models.Order{}, fmt.Errorf("%w: quantity out of range", ErrInvalidOrder)
	}

	design, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return models.Order{}, err
	}

	subtotal := pricing.Subtotal(design.PriceCents, quantity)
	commission := pricing.Commission(subtotal, s.cfg.CommissionBasisPoints)

	order := models.Order{
		ID:              ids.New(),
		BuyerID:         buyerID,
		DesignID:        designID,
		Quantity:        quantity,
		UnitPriceCents:  design.PriceCents,
		SubtotalCents:   subtotal,
		CommissionCents: commission,
		TotalCents:      pricing.Total(subtotal, commission),
		Status:          models.OrderStatusPending,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return models.Order{}, fmt.Errorf("persist order: %w", err)
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("design_id", designID).
		Int64("total_cents", order.TotalCents).
		Msg("order created")
	return order, nil
}

func (s *OrderService) List(ctx context.Context, buyerID string, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.ListByBuyer(ctx, buyerID, limit, offset)
}
