package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marcuseden/slavajewlery-sub001/internal/database"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

var ErrDesignNotFound = errors.New("design not found")

type DesignRepository struct {
	pool database.Pool
}

func NewDesignRepository(pool database.Pool) *DesignRepository {
	return &DesignRepository{pool: pool}
}

func (r *DesignRepository) Create(ctx context.Context, design models.Design) error {
	const query = `
		INSERT INTO designs (
			id, user_id, prompt, title, tags, price_cents, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		design.ID,
		design.UserID,
		design.Prompt,
		design.Title,
		design.Tags,
		design.PriceCents,
		design.Status,
	)
	return err
}

func (r *DesignRepository) GetByID(ctx context.Context, id string) (models.Design, error) {
	const query = `
		SELECT id, user_id, prompt, title, tags, price_cents, status, created_at, updated_at
		FROM designs WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var design models.Design
	if err := row.Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Design{}, ErrDesignNotFound
		}
		return models.Design{}, err
	}

	images, err := r.ListImages(ctx, design.ID)
	if err != nil {
		return models.Design{}, err
	}
	design.Images = images
	return design, nil
}

func (r *DesignRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Design, error) {
	const query = `
		SELECT id, user_id, prompt, title, tags, price_cents, status, created_at, updated_at
		FROM designs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
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

func (r *DesignRepository) UpdateStatus(ctx context.Context, id string, status models.DesignStatus) error {
	const query = `
		UPDATE designs SET status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDesignNotFound
	}
	return nil
}

// ReplaceImage inserts a regenerated image ref and removes the displaced
// refs for the same view in one transaction, returning the displaced object
// keys so the caller can clean up the blob store. A failed insert rolls back
// and leaves the previous refs intact.
func (r *DesignRepository) ReplaceImage(ctx context.Context, ref models.ImageRef) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin replace image: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO design_images (
			id, design_id, view_index, label, object_key, public_url, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
	`, ref.ID, ref.DesignID, ref.ViewIndex, ref.Label, ref.ObjectKey, ref.PublicURL); err != nil {
		return nil, fmt.Errorf("insert image ref: %w", err)
	}

	rows, err := tx.Query(ctx, `
		DELETE FROM design_images
		WHERE design_id = $1 AND view_index = $2 AND id <> $3
		RETURNING object_key
	`, ref.DesignID, ref.ViewIndex, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("delete displaced refs: %w", err)
	}

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit replace image: %w", err)
	}
	return keys, nil
}

func (r *DesignRepository) ListImages(ctx context.Context, designID string) ([]models.ImageRef, error) {
	const query = `
		SELECT id, design_id, view_index, label, object_key, public_url, created_at
		FROM design_images
		WHERE design_id = $1
		ORDER BY view_index, created_at
	`

	rows, err := r.pool.Query(ctx, query, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.ImageRef
	for rows.Next() {
		var ref models.ImageRef
		if err := rows.Scan(
			&ref.ID,
			&ref.DesignID,
			&ref.ViewIndex,
			&ref.Label,
			&ref.ObjectKey,
			&ref.PublicURL,
			&ref.CreatedAt,
		); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// OwnsImagePaths reports whether every path is a stored image of the given
// design and the design belongs to the given user.
func (r *DesignRepository) OwnsImagePaths(ctx context.Context, userID, designID string, paths []string) (bool, error) {
	const query = `
		SELECT COUNT(*)
		FROM design_images i
		JOIN designs d ON d.id = i.design_id
		WHERE d.id = $1 AND d.user_id = $2 AND i.object_key = ANY($3)
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, designID, userID, paths).Scan(&count); err != nil {
		return false, err
	}
	return count == len(paths), nil
}
