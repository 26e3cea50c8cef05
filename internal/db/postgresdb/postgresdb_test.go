package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

const (
	insertUserQuery     = `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*created_at\).*ON\s+CONFLICT\s*\(email\)\s*DO\s+NOTHING\s+RETURNING\s+id\s*$`
	selectByEmailQuery  = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	selectByIDQuery     = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	testConnTimeout     = time.Second
	testPasswordHashVal = "$2a$10$hash"
	testUserID          = "9f1c1f4e-3f0a-4f0e-8d55-0d0e0c0b0a01"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func newDBWithMock(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	return &PostgresDB{database: database, connectionTimeout: testConnTimeout}, mock
}

func TestCreateUser(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	usr := &user.User{
		ID:           "9f1c1f4e-3f0a-4f0e-8d55-0d0e0c0b0a01",
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: testPasswordHashVal,
		CreatedAt:    createdAt,
	}

	testCases := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		wantErrIs error
		wantErr   bool
	}{
		{
			name: "inserted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insertUserQuery).
					WithArgs(usr.ID, usr.Name, usr.Email, usr.PasswordHash, createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(usr.ID))
			},
		},
		{
			name: "email_taken",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insertUserQuery).
					WithArgs(usr.ID, usr.Name, usr.Email, usr.PasswordHash, createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErrIs: models.ErrUserAlreadyExists,
			wantErr:   true,
		},
		{
			name: "db_down",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insertUserQuery).
					WillReturnError(errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			db, mock := newDBWithMock(t)
			testCase.setup(mock)

			err := db.CreateUser(context.Background(), usr)

			if testCase.wantErr {
				require.Error(t, err)
				if testCase.wantErrIs != nil {
					assert.ErrorIs(t, err, testCase.wantErrIs)
				} else {
					assert.NotErrorIs(t, err, models.ErrUserAlreadyExists)
				}
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	db, mock := newDBWithMock(t)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectByEmailQuery).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("id-1", "", "a@x.com", testPasswordHashVal, createdAt))

	usr, found, err := db.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "id-1", usr.ID)
	assert.Equal(t, "", usr.Name)
	assert.Equal(t, testPasswordHashVal, usr.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID(t *testing.T) {
	db, mock := newDBWithMock(t)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectByIDQuery).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, "Alice", "a@x.com", testPasswordHashVal, createdAt))

	usr, found, err := db.GetUserByID(context.Background(), testUserID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testUserID, usr.ID)
	assert.Equal(t, "a@x.com", usr.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	db, mock := newDBWithMock(t)

	mock.ExpectQuery(selectByIDQuery).
		WithArgs(testUserID).
		WillReturnError(sql.ErrNoRows)

	usr, found, err := db.GetUserByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, usr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDMalformedSkipsQuery(t *testing.T) {
	db, mock := newDBWithMock(t)

	for _, userID := range []string{"", "garbage", "id-1", testUserID + "0"} {
		usr, found, err := db.GetUserByID(context.Background(), userID)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, usr)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDDriverError(t *testing.T) {
	db, mock := newDBWithMock(t)

	mock.ExpectQuery(selectByIDQuery).
		WithArgs(testUserID).
		WillReturnError(errors.New("connection reset"))

	_, found, err := db.GetUserByID(context.Background(), testUserID)
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPing(t *testing.T) {
	db, mock := newDBWithMock(t)

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("unreachable"))
	assert.Error(t, db.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
