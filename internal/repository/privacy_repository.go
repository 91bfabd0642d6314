package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/marcuseden/slavajewlery-sub001/internal/database"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

var ErrDeletionRequestNotFound = errors.New("deletion request not found")

// PrivacyRepository owns the data-subject-request tables and the
// anonymization transaction.
type PrivacyRepository struct {
	pool database.Pool
}

func NewPrivacyRepository(pool database.Pool) *PrivacyRepository {
	return &PrivacyRepository{pool: pool}
}

// UpsertDeletionRequest records or reschedules a pending request. A request
// that already executed is terminal and stays untouched.
func (r *PrivacyRepository) UpsertDeletionRequest(ctx context.Context, req models.DeletionRequest) error {
	const query = `
		INSERT INTO deletion_requests (
			user_id, reason, requested_at, scheduled_for
		) VALUES (
			$1, $2, NOW(), $3
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			reason = EXCLUDED.reason,
			requested_at = NOW(),
			scheduled_for = EXCLUDED.scheduled_for
		WHERE deletion_requests.executed_at IS NULL
	`

	_, err := r.pool.Exec(ctx, query, req.UserID, req.Reason, req.ScheduledFor)
	return err
}

func (r *PrivacyRepository) GetDeletionRequest(ctx context.Context, userID string) (models.DeletionRequest, error) {
	const query = `
		SELECT user_id, reason, requested_at, scheduled_for, executed_at
		FROM deletion_requests
		WHERE user_id = $1
	`

	row := r.pool.QueryRow(ctx, query, userID)
	var req models.DeletionRequest
	if err := row.Scan(
		&req.UserID,
		&req.Reason,
		&req.RequestedAt,
		&req.ScheduledFor,
		&req.ExecutedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DeletionRequest{}, ErrDeletionRequestNotFound
		}
		return models.DeletionRequest{}, err
	}
	return req, nil
}

// CancelDeletionRequest clears a pending request. Cancelling when nothing is
// pending is a no-op, not an error.
func (r *PrivacyRepository) CancelDeletionRequest(ctx context.Context, userID string) error {
	const query = `
		DELETE FROM deletion_requests
		WHERE user_id = $1 AND executed_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// ListDue returns users whose grace period has passed and whose
// anonymization has not run yet.
func (r *PrivacyRepository) ListDue(ctx context.Context, now time.Time) ([]string, error) {
	const query = `
		SELECT user_id FROM deletion_requests
		WHERE scheduled_for <= $1 AND executed_at IS NULL
		ORDER BY scheduled_for
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// Anonymize irreversibly blanks identifying fields in one transaction while
// keeping order records. Share links and sessions of the user are revoked.
func (r *PrivacyRepository) Anonymize(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin anonymize: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE users
		SET email = 'deleted-' || id || '@anonymized.invalid',
		    display_name = '',
		    password_hash = ''::bytea,
		    status = 'deleted',
		    anonymized_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`, userID); err != nil {
		return fmt.Errorf("anonymize user: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE designs
		SET prompt = '', title = '', tags = '{}', updated_at = NOW()
		WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("anonymize designs: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM share_links WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("revoke share links: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO deletion_requests (user_id, scheduled_for, executed_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET executed_at = NOW()
	`, userID); err != nil {
		return fmt.Errorf("mark executed: %w", err)
	}

	return tx.Commit(ctx)
}

// Export aggregates every row scoped to the user into one document.
func (r *PrivacyRepository) Export(ctx context.Context, userID string) (models.ExportDocument, error) {
	doc := models.ExportDocument{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
	}

	const userQuery = `
		SELECT id, email, display_name, status, created_at
		FROM users WHERE id = $1
	`
	if err := r.pool.QueryRow(ctx, userQuery, userID).Scan(
		&doc.User.ID,
		&doc.User.Email,
		&doc.User.DisplayName,
		&doc.User.Status,
		&doc.User.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ExportDocument{}, ErrUserNotFound
		}
		return models.ExportDocument{}, fmt.Errorf("export user: %w", err)
	}

	// Exports read every row the user owns, unpaginated: the document is
	// complete or the whole request fails.
	list, err := r.exportDesigns(ctx, userID)
	if err != nil {
		return models.ExportDocument{}, fmt.Errorf("export designs: %w", err)
	}
	designs := NewDesignRepository(r.pool)
	for i := range list {
		images, err := designs.ListImages(ctx, list[i].ID)
		if err != nil {
			return models.ExportDocument{}, fmt.Errorf("export design images: %w", err)
		}
		list[i].Images = images
	}
	doc.Designs = list

	shares := NewShareRepository(r.pool)
	links, err := shares.ListByUser(ctx, userID)
	if err != nil {
		return models.ExportDocument{}, fmt.Errorf("export share links: %w", err)
	}
	doc.ShareLinks = links

	orderList, err := r.exportOrders(ctx, userID)
	if err != nil {
		return models.ExportDocument{}, fmt.Errorf("export orders: %w", err)
	}
	doc.Orders = orderList

	req, err := r.GetDeletionRequest(ctx, userID)
	switch {
	case err == nil:
		doc.Deletion = &req
	case errors.Is(err, ErrDeletionRequestNotFound):
	default:
		return models.ExportDocument{}, fmt.Errorf("export deletion request: %w", err)
	}

	return doc, nil
}

func (r *PrivacyRepository) exportDesigns(ctx context.Context, userID string) ([]models.Design, error) {
	const query = `
		SELECT id, user_id, prompt, title, tags, price_cents, status, created_at, updated_at
		FROM designs
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var designs []models.Design
	for rows.Next() {
		var design models.Design
		if err := rows.Scan(
			&design.ID,
			&design.UserID,
			&design.Prompt,
			&design.Title,
			&design.Tags,
			&design.PriceCents,
			&design.Status,
			&design.CreatedAt,
			&design.UpdatedAt,
		); err != nil {
			return nil, err
		}
		designs = append(designs, design)
	}
	return designs, rows.Err()
}

func (r *PrivacyRepository) exportOrders(ctx context.Context, userID string) ([]models.Order, error) {
	const query = `
		SELECT id, buyer_id, design_id, quantity, unit_price_cents, subtotal_cents,
		       commission_cents, total_cents, status, created_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
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
