package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo is the credential store contract. Accounts are provisioned
// out of band (cmd/seeduser); the portal only ever reads them.
type UserRepo interface {
	// GetUserByUsername fetches the full record, including the hash
	// and active flag, by exact username match.
	GetUserByUsername(ctx context.Context, username string) (*models.UserAuth, error)
}

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresUserRepo struct {
	pgpool PgxPool
	logger *zap.Logger
}

func NewPostgresUserRepo(pgpool PgxPool, logger *zap.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{pgpool: pgpool, logger: logger}
}

// GetUserByUsername implements UserRepo. The active flag is returned
// rather than filtered in SQL so the service can distinguish a
// disabled account from a missing one.
func (r *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.UserAuth, error) {
	var user models.UserAuth
	query := `SELECT id, username, password_hash, role, is_active, created_at FROM users WHERE username = $1`
	err := r.pgpool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q not found: %w", username, models.ErrNotFound)
		}
		r.logger.Error("Error fetching user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}
