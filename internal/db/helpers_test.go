package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasColumn(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM information_schema.columns`)).
		WithArgs("budget_requests", "return_note").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("return_note"))
	ok, err := HasColumn(ctx, conn, "budget_requests", "return_note")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM information_schema.columns`)).
		WithArgs("budget_requests", "version").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	ok, err = HasColumn(ctx, conn, "budget_requests", "version")
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM information_schema.columns`)).WillReturnError(boom)
	_, err = HasColumn(ctx, conn, "notifications", "seq")
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
