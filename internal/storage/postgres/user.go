package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/akasa-feast/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at`

	getUserByEmailSQL = `SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1`

	getUserByIDSQL = `SELECT id, email, password_hash, created_at
		FROM users WHERE id = $1`
)

const codeUniqueViolation = "23505"

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account. A duplicate email maps to user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, createUserSQL, email, passwordHash)
	if err != nil {
		return nil, errors.Wrapf(err, "creating user %q", email)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return nil, user.ErrEmailTaken
		}
		return nil, errors.Wrapf(err, "creating user %q", email)
	}
	return &u, nil
}

// GetByEmail returns the account for an email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByEmailSQL, email)
	if err != nil {
		return nil, errors.Wrapf(err, "getting user %q", email)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting user %q", email)
	}
	return &u, nil
}

// GetByID returns the account with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting user %d", id)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting user %d", id)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
