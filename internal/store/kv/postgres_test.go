package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQL(db, Postgres), mock
}

const (
	qGet    = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
	qUpsert = `(?s)^INSERT\s+INTO\s+kv\s*\(key,\s*value,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*now\(\)\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE`
	qDelete = `(?s)^DELETE\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
)

func TestPostgres_Get_Found(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectQuery(qGet).WithArgs("sigmax_users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"u1":{}}`)))

	v, err := b.Get(context.Background(), "sigmax_users")
	require.NoError(t, err)
	assert.Equal(t, `{"u1":{}}`, string(v))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectQuery(qGet).WithArgs("sigmax_chats").WillReturnError(sql.ErrNoRows)

	_, err := b.Get(context.Background(), "sigmax_chats")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Get_DBError(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectQuery(qGet).WithArgs("sigmax_chats").WillReturnError(errors.New("db down"))

	_, err := b.Get(context.Background(), "sigmax_chats")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestPostgres_Put(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectExec(qUpsert).WithArgs("sigmax_session", `"u1"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.Put(context.Background(), "sigmax_session", []byte(`"u1"`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PutMany_CommitsInKeyOrder(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(qUpsert).WithArgs("sigmax_chats", `{}`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qUpsert).WithArgs("sigmax_messages", `[]`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := b.PutMany(context.Background(), map[string][]byte{
		"sigmax_messages": []byte(`[]`),
		"sigmax_chats":    []byte(`{}`),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PutMany_RollsBackOnError(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(qUpsert).WithArgs("sigmax_chats", `{}`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qUpsert).WithArgs("sigmax_messages", `[]`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := b.PutMany(context.Background(), map[string][]byte{
		"sigmax_messages": []byte(`[]`),
		"sigmax_chats":    []byte(`{}`),
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	b, mock := newPostgresWithMock(t)

	mock.ExpectExec(qDelete).WithArgs("sigmax_session").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.Delete(context.Background(), "sigmax_session"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db, Postgres))
	assert.Equal(t, "postgres", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err = RunMigrations(context.Background(), db, SQLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
