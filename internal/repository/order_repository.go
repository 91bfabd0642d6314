package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marcuseden/slavajewlery-sub001/internal/database"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	pool database.Pool
}

func NewOrderRepository(pool database.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	const query = `
		INSERT INTO orders (
			id, buyer_id, design_id, quantity, unit_price_cents, subtotal_cents,
			commission_cents, total_cents, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.BuyerID,
		order.DesignID,
		order.Quantity,
		order.UnitPriceCents,
		order.SubtotalCents,
		order.CommissionCents,
		order.TotalCents,
		order.Status,
	)
	return err
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	const query = `
		SELECT id, buyer_id, design_id, quantity, unit_price_cents, subtotal_cents,
		       commission_cents, total_cents, status, created_at
		FROM orders WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var order models.Order
	if err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&order.DesignID,
		&order.Quantity,
		&order.UnitPriceCents,
		&order.SubtotalCents,
		&order.CommissionCents,
		&order.TotalCents,
		&order.Status,
		&order.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]models.Order, error) {
	const query = `
		SELECT id, buyer_id, design_id, quantity, unit_price_cents, subtotal_cents,
		       commission_cents, total_cents, status, created_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(
			&order.ID,
			&order.BuyerID,
			&order.DesignID,
			&order.Quantity,
			&order.UnitPriceCents,
			&order.SubtotalCents,
			&order.CommissionCents,
			&order.TotalCents,
			&order.Status,
			&order.CreatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
