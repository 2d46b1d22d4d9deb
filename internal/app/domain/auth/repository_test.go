package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
)

func TestGetUserByUsername(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, zap.NewNop())
	created := time.Now()

	mockPool.ExpectQuery(`SELECT id, username, password_hash, role, is_active, created_at FROM users`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "username", "password_hash", "role", "is_active", "created_at"},
		).AddRow(int64(7), "alice", "$2a$10$hash", models.RoleAdmin, true, created))

	user, err := repo.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, zap.NewNop())

	mockPool.ExpectQuery(`SELECT id, username, password_hash, role, is_active, created_at FROM users`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetUserByUsernameQueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, zap.NewNop())

	mockPool.ExpectQuery(`SELECT id, username, password_hash, role, is_active, created_at FROM users`).
		WithArgs("alice").
		WillReturnError(errors.New("connection reset"))

	user, err := repo.GetUserByUsername(context.Background(), "alice")
	assert.Nil(t, user)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
