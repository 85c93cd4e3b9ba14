package repository

import (
	"context"
	"database/sql/driver"
	"fortune_shop/internal/domain/product/model"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// insertRecorder 记录实际执行的 INSERT 及绑定参数
type insertRecorder struct {
	sql  string
	args []driver.Value
}

func (r *insertRecorder) ConvertValue(v interface{}) (driver.Value, error) {
	dv, err := driver.DefaultParameterConverter.ConvertValue(v)
	if err == nil {
		r.args = append(r.args, dv)
	}
	return dv, err
}

func (r *insertRecorder) Match(expectedSQL, actualSQL string) error {
	if strings.HasPrefix(actualSQL, "INSERT") {
		r.sql = actualSQL
	}
	return sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
}

func (r *insertRecorder) column(t *testing.T, name string) driver.Value {
	t.Helper()
	open, end := strings.Index(r.sql, "("), strings.Index(r.sql, ")")
	require.True(t, open >= 0 && end > open, "no column list in %q", r.sql)
	for i, c := range strings.Split(r.sql[open+1:end], ",") {
		if strings.Trim(strings.TrimSpace(c), `"`) == name {
			require.Less(t, i, len(r.args))
			return r.args[i]
		}
	}
	t.Fatalf("column %s not inserted: %s", name, r.sql)
	return nil
}

func TestCreateKeepsInactiveFlag(t *testing.T) {
	for _, active := range []bool{false, true} {
		rec := &insertRecorder{}
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(rec), sqlmock.ValueConverterOption(rec))
		require.NoError(t, err)
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "products"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		p := &model.Product{
			Code:            "SAJU-2024",
			Name:            "2024 신년운세",
			BasePrice:       29800,
			AdditionalPrice: 24500,
			IsActive:        active,
		}
		require.NoError(t, NewProductRepository(gdb).Create(context.Background(), p))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, active, rec.column(t, "is_active"), "is_active=%v", active)
		db.Close()
	}
}
