package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestWithinTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	tr := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ocms_valid_offence_notice").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		_, ok := TxFromContext(ctx)
		assert.True(t, ok)
		_, err := Conn(ctx, db).ExecContext(ctx, "UPDATE ocms_valid_offence_notice SET version = version + 1")
		return err
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tr := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tr.WithinTx(context.Background(), func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxNestedReusesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	tr := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		outer, _ := TxFromContext(ctx)
		return tr.WithinTx(ctx, func(inner context.Context) error {
			got, _ := TxFromContext(inner)
			assert.Same(t, outer, got)
			return nil
		})
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnWithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Same(t, db, Conn(context.Background(), db))
}
