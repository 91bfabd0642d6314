package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marcuseden/slavajewlery-sub001/internal/database"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

var ErrShareLinkNotFound = errors.New("share link not found")

type ShareRepository struct {
	pool database.Pool
}

func NewShareRepository(pool database.Pool) *ShareRepository {
	return &ShareRepository{pool: pool}
}

func (r *ShareRepository) Create(ctx context.Context, link models.ShareLink) error {
	const query = `
		INSERT INTO share_links (
			token, design_id, user_id, image_paths, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.pool.Exec(ctx, query,
		link.Token,
		link.DesignID,
		link.UserID,
		link.ImagePaths,
		link.CreatedAt,
		link.ExpiresAt,
	)
	return err
}

func (r *ShareRepository) GetByToken(ctx context.Context, token string) (models.ShareLink, error) {
	const query = `
		SELECT token, design_id, user_id, image_paths, created_at, expires_at
		FROM share_links
		WHERE token = $1
	`

	row := r.pool.QueryRow(ctx, query, token)
	var link models.ShareLink
	if err := row.Scan(
		&link.Token,
		&link.DesignID,
		&link.UserID,
		&link.ImagePaths,
		&link.CreatedAt,
		&link.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ShareLink{}, ErrShareLinkNotFound
		}
		return models.ShareLink{}, err
	}
	return link, nil
}

func (r *ShareRepository) ListByUser(ctx context.Context, userID string) ([]models.ShareLink, error) {
	const query = `
		SELECT token, design_id, user_id, image_paths, created_at, expires_at
		FROM share_links
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.ShareLink
	for rows.Next() {
		var link models.ShareLink
		if err := rows.Scan(
			&link.Token,
			&link.DesignID,
			&link.UserID,
			&link.ImagePaths,
			&link.CreatedAt,
			&link.ExpiresAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// PurgeExpired deletes links whose expiry has passed and returns how many
// rows went away. Expired rows are already unserveable; this only reclaims
// space.
func (r *ShareRepository) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM share_links WHERE expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
