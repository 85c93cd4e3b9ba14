package repository

import (
	"context"
	"testing"
	"time"
	"fortune_shop/internal/domain/order/model"

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

func TestTransitionConditionalUpdate(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewOrderRepository(gdb)
	tr, _ := model.TransitionFor(model.ActionCancel)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .*"cancelled_at"=.*"order_status"=.*"payment_status"=.*"status"=.*WHERE \(id = \$\d+ AND status IN \(\$\d+,\$\d+\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Transition(context.Background(), "o-1", tr, map[string]interface{}{"cancelled_at": time.Now()})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStaleStatus(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewOrderRepository(gdb)
	tr, _ := model.TransitionFor(model.ActionConfirmPayment)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Transition(context.Background(), "o-1", tr, nil)

	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExpiredFiles(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewOrderRepository(gdb)
	cutoff := time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "order_number", "result_file_key", "file_uploaded_at"}).
		AddRow("o-1", "20260801-0001", "results/20260801/a.pdf", cutoff.Add(-time.Hour))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE \(file_uploaded_at IS NOT NULL AND file_uploaded_at < \$1\) AND "orders"."deleted_at" IS NULL ORDER BY file_uploaded_at ASC LIMIT \$2`).
		WithArgs(cutoff, 100).
		WillReturnRows(rows)

	orders, err := repo.FindExpiredFiles(context.Background(), cutoff, 100)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "results/20260801/a.pdf", *orders[0].ResultFileKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearResultFileGuardsKey(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewOrderRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .*"file_uploaded_at"=.*"result_file_key"=.*"result_file_url"=.*WHERE id = \$\d+ AND result_file_key = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.ClearResultFile(context.Background(), "o-1", "results/a.pdf")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
