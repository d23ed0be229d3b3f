package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormStore_DeleteExpiredSQL(t *testing.T) {
	db, mock := newPostgresMock(t)
	now := time.UnixMilli(1767225600000)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "sessions" WHERE expires_at < $1`)).
		WithArgs(now.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewGormStore(db).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetErrorPropagates(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sessions" WHERE sid = $1`)).
		WithArgs("tok", 1).
		WillReturnError(assert.AnError)

	_, ok, err := NewGormStore(db).Get(context.Background(), "tok")
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, ok)
}
