package repository

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

func TestDesignRepository_ReplaceImage_SwapsInOneTransaction(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewDesignRepository(mock)

	ref := models.ImageRef{
		ID:        "r-new",
		DesignID:  "d1",
		ViewIndex: 1,
		Label:     "front",
		ObjectKey: "u1/d1/view_1_2.png",
		PublicURL: "https://cdn/u1/d1/view_1_2.png",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO design_images`).
		WithArgs(ref.ID, ref.DesignID, ref.ViewIndex, ref.Label, ref.ObjectKey, ref.PublicURL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`DELETE FROM design_images`).
		WithArgs(ref.DesignID, ref.ViewIndex, ref.ID).
		WillReturnRows(pgxmock.NewRows([]string{"object_key"}).AddRow("u1/d1/view_1_1.png"))
	mock.ExpectCommit()

	oldKeys, err := r.ReplaceImage(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, []string{"u1/d1/view_1_1.png"}, oldKeys)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDesignRepository_ReplaceImage_RollsBackOnInsertFailure(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewDesignRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO design_images`).
		WithArgs("r-new", "d1", 1, "front", "u1/d1/view_1_2.png", "https://cdn/x.png").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := r.ReplaceImage(context.Background(), models.ImageRef{
		ID:        "r-new",
		DesignID:  "d1",
		ViewIndex: 1,
		Label:     "front",
		ObjectKey: "u1/d1/view_1_2.png",
		PublicURL: "https://cdn/x.png",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "insert image ref")
	require.NoError(t, mock.ExpectationsWereMet())
}
