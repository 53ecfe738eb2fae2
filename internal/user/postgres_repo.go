package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookshelf/internal/pgdb"
)

const userColumns = `id, username, password_hash, approved, role, mfa_secret, created_at, updated_at`

// PostgresRepo implements Repository using PostgreSQL.
type PostgresRepo struct {
	db      pgdb.Pool
	timeout time.Duration
}

// NewPostgresRepo creates a new Postgres-backed user repository.
func NewPostgresRepo(db pgdb.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Password, &u.Approved, &u.Role,
		&u.MFASecret, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (id, username, password_hash, approved, role)
	VALUES (gen_random_uuid(), $1, $2, $3, $4)
	RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, u.Username, u.Password, u.Approved, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	WHERE username = $1
	LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	WHERE id = $1
	LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	ORDER BY created_at, id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepo) Approve(ctx context.Context, id string) error {
	return r.execOne(ctx, `UPDATE users SET approved = true, updated_at = NOW() WHERE id = $1`, id)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepo) SetMFASecret(ctx context.Context, username, secret string) error {
	return r.execOne(ctx, `UPDATE users SET mfa_secret = $2, updated_at = NOW() WHERE username = $1`, username, secret)
}

// execOne runs a statement expected to touch exactly one row; zero rows
// means the user does not exist.
func (r *PostgresRepo) execOne(ctx context.Context, query string, args ...any) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
