package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func newMock(t *testing.T) (*TxManager, *DB, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewTXManager(mock), New(mock), mock
}

func TestTxManager_Commit(t *testing.T) {
	txm, db, mock := newMock(t)

	mock.ExpectBeginTx(readCommitted)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE balances")).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO withdraw_records")).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := txm.Begin(context.Background(), func(ctx context.Context) error {
		_, ok := TxFromContext(ctx)
		assert.True(t, ok)
		if _, err := db.Exec(ctx, "UPDATE balances SET frozen = frozen + 1"); err != nil {
			return err
		}
		return txm.Begin(ctx, func(ctx context.Context) error {
			_, err := db.Exec(ctx, "INSERT INTO withdraw_records DEFAULT VALUES")
			return err
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackOnError(t *testing.T) {
	txm, _, mock := newMock(t)
	fnErr := errors.New("insufficient")

	mock.ExpectBeginTx(readCommitted)
	mock.ExpectRollback()

	err := txm.Begin(context.Background(), func(ctx context.Context) error {
		return fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	txm, _, mock := newMock(t)

	mock.ExpectBeginTx(readCommitted)
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = txm.Begin(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_BeginFails(t *testing.T) {
	txm, _, mock := newMock(t)

	mock.ExpectBeginTx(readCommitted).WillReturnError(errors.New("pool closed"))

	called := false
	err := txm.Begin(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_WithoutTxUsesRoot(t *testing.T) {
	_, db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM x")).WillReturnResult(pgxmock.NewResult("DELETE", 2))

	tag, err := db.Exec(context.Background(), "DELETE FROM x")
	require.NoError(t, err)
	assert.EqualValues(t, 2, tag.RowsAffected())

	_, ok := TxFromContext(context.Background())
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
