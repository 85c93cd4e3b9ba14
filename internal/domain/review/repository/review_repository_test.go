package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestExistsForOrderIncludesDeleted(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewReviewRepository(gdb)

	// Unscoped：不追加 deleted_at IS NULL
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE order_id = \$1$`).
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.ExistsForOrder(context.Background(), "o-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryOnlyApproved(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewReviewRepository(gdb)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS count, COALESCE\(AVG\(rating\), 0\) AS average FROM "reviews" WHERE is_approved = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count", "average"}).AddRow(4, 4.25))

	s, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Count)
	assert.Equal(t, 4.25, s.Average)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteIsSoft(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewReviewRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reviews" SET "deleted_at"=\$1 WHERE id = \$2 AND "reviews"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "r-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewReviewRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reviews" SET .*"is_approved"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), "r-9", map[string]interface{}{"is_approved": false})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
