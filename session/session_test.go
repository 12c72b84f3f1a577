package session_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen"
	"github.com/syssam/modelgen/dialect"
	"github.com/syssam/modelgen/session"
)

func newMockClient(t *testing.T, d string) (*session.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return session.OpenDB(d, db), mock
}

func TestInsert(t *testing.T) {
	t.Run("sorted_columns", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectExec("INSERT INTO users (email, name) VALUES (?, ?)").
			WithArgs("alice@example.com", "Alice").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := c.Insert(context.Background(), "users", map[string]any{
			"name":  "Alice",
			"email": "alice@example.com",
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres_placeholders", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.Postgres)
		mock.ExpectExec("INSERT INTO users (name) VALUES ($1)").
			WithArgs("Bob").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := c.Insert(context.Background(), "users", map[string]any{"name": "Bob"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects_bad_identifier", func(t *testing.T) {
		c, _ := newMockClient(t, dialect.SQLite)
		err := c.Insert(context.Background(), "users; DROP TABLE users", map[string]any{"name": "x"})
		require.Error(t, err)
		err = c.Insert(context.Background(), "users", map[string]any{"name = 1 --": "x"})
		require.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectQuery("SELECT * FROM users WHERE id = ?").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Alice"))

		row, err := c.Get(context.Background(), "users", "id", 1)
		require.NoError(t, err)
		assert.Equal(t, "Alice", row["name"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row_is_not_found", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectQuery("SELECT * FROM users WHERE id = ?").
			WithArgs(999).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		_, err := c.Get(context.Background(), "users", "id", 999)
		require.Error(t, err)
		assert.True(t, modelgen.IsNotFound(err))
	})
}

func TestAll(t *testing.T) {
	c, mock := newMockClient(t, dialect.SQLite)
	mock.ExpectQuery("SELECT * FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Alice").
			AddRow(2, "Bob"))

	rows, err := c.All(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[1]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	t.Run("updates_by_primary_key", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectExec("UPDATE users SET email = ? WHERE id = ?").
			WithArgs("new@example.com", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := c.Update(context.Background(), "users", "id", 1, map[string]any{"email": "new@example.com"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row_is_not_found", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectExec("UPDATE users SET email = ? WHERE id = ?").
			WithArgs("x@example.com", 999).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := c.Update(context.Background(), "users", "id", 999, map[string]any{"email": "x@example.com"})
		require.Error(t, err)
		assert.True(t, modelgen.IsNotFound(err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("deletes_by_primary_key", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs(2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, c.Delete(context.Background(), "users", "id", 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row_is_not_found", func(t *testing.T) {
		c, mock := newMockClient(t, dialect.SQLite)
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs(998).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := c.Delete(context.Background(), "users", "id", 998)
		require.Error(t, err)
		assert.True(t, modelgen.IsNotFound(err))
	})
}
