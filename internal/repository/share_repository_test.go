package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

func TestShareRepository_Create_OK(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewShareRepository(mock)

	created := time.Now().UTC()
	expires := created.Add(30 * 24 * time.Hour)
	paths := []string{"u1/d1/view_0_1.png", "u1/d1/view_1_1.png"}

	mock.ExpectExec(`INSERT INTO share_links`).
		WithArgs("tok", "d1", "u1", paths, created, expires).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := r.Create(context.Background(), models.ShareLink{
		Token:      "tok",
		DesignID:   "d1",
		UserID:     "u1",
		ImagePaths: paths,
		CreatedAt:  created,
		ExpiresAt:  expires,
	})
	require.NoError(t, err)
}

func TestShareRepository_GetByToken_OK(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewShareRepository(mock)

	created := time.Now().UTC()
	expires := created.Add(time.Hour)

	mock.ExpectQuery(`SELECT token, design_id, user_id, image_paths, created_at, expires_at`).
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows([]string{
			"token", "design_id", "user_id", "image_paths", "created_at", "expires_at",
		}).AddRow("tok", "d1", "u1", []string{"u1/d1/view_0_1.png"}, created, expires))

	link, err := r.GetByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "d1", link.DesignID)
	require.Equal(t, []string{"u1/d1/view_0_1.png"}, link.ImagePaths)
	require.Equal(t, expires, link.ExpiresAt)
}

func TestShareRepository_GetByToken_NotFound(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewShareRepository(mock)

	mock.ExpectQuery(`SELECT token, design_id, user_id, image_paths, created_at, expires_at`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByToken(context.Background(), "missing")
	require.ErrorIs(t, err, ErrShareLinkNotFound)
}

func TestShareRepository_PurgeExpired(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewShareRepository(mock)

	mock.ExpectExec(`DELETE FROM share_links WHERE expires_at <= NOW\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	purged, err := r.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), purged)
}
