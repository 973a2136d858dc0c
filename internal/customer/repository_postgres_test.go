package customer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerRowColumns = []string{"id", "email", "password_hash", "full_name", "phone", "created_at", "updated_at"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("a@b.co", "hash", "A", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), Customer{Email: "a@b.co", PasswordHash: "hash", FullName: "A"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByEmail(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).WithArgs("A@B.co").
		WillReturnRows(sqlmock.NewRows(customerRowColumns).AddRow(2, "a@b.co", "hash", "A", "", now, now))

	c, err := repo.GetByEmail(context.Background(), "A@B.co")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)
	assert.Equal(t, "hash", c.PasswordHash)

	mock.ExpectQuery(`WHERE id = \$1`).WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateProfile(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery("UPDATE customers SET full_name").WithArgs("B", "9000000000", int64(2)).
		WillReturnRows(sqlmock.NewRows(customerRowColumns).AddRow(2, "a@b.co", "hash", "B", "9000000000", now, now))

	c, err := repo.UpdateProfile(context.Background(), 2, "B", "9000000000")
	require.NoError(t, err)
	assert.Equal(t, "B", c.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
