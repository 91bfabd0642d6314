package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

type fakeOrderStore struct {
	orders []models.Order
}

func (f *fakeOrderStore) Create(ctx context.Context, order models.Order) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderStore) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]models.Order, error) {
	return f.orders, nil
}

func newOrderService(orders *fakeOrderStore, designs DesignReader) *OrderService {
	return NewOrderService(orders, designs, config.PricingConfig{CommissionBasisPoints: 1500}, zerolog.Nop())
}

func TestOrderService_Create_PricesFromDesignInCents(t *testing.T) {
	designs := newFakeDesignStore()
	designs.designs["d1"] = models.Design{ID: "d1", UserID: "u1", PriceCents: 1099}

	store := &fakeOrderStore{}
	svc := newOrderService(store, designs)

	order, err := svc.Create(context.Background(), "buyer1", "d1", 3)
	require.NoError(t, err)
	require.Equal(t, int64(1099), order.UnitPriceCents)
	require.Equal(t, int64(3297), order.SubtotalCents)
	require.Equal(t, int64(495), order.CommissionCents, "15% of 3297 rounds half-up")
	require.Equal(t, int64(3792), order.TotalCents)
	require.Equal(t, models.OrderStatusPending, order.Status)

	require.Len(t, store.orders, 1)
	require.Equal(t, order, store.orders[0])
}

func TestOrderService_Create_QuantityOutOfRange(t *testing.T) {
	designs := newFakeDesignStore()
	designs.designs["d1"] = models.Design{ID: "d1", PriceCents: 100}
	store := &fakeOrderStore{}
	svc := newOrderService(store, designs)

	_, err := svc.Create(context.Background(), "buyer1", "d1", 0)
	require.ErrorIs(t, err, ErrInvalidOrder)

	_, err = svc.Create(context.Background(), "buyer1", "d1", 101)
	require.ErrorIs(t, err, ErrInvalidOrder)

	require.Empty(t, store.orders)
}
