package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookshelf/internal/pgdb"
)

const bookColumns = `id, isbn, title, authors, publisher, published_date, cover_path, in_library, owner, created_at, updated_at`

// PostgresRepo implements Repository using PostgreSQL.
type PostgresRepo struct {
	db      pgdb.Pool
	timeout time.Duration
}

// NewPostgresRepo creates a new Postgres-backed catalog repository.
func NewPostgresRepo(db pgdb.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Authors, &b.Publisher, &b.PublishedDate,
		&b.CoverPath, &b.InLibrary, &b.Owner, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Insert persists a candidate as a new record. The check and the insert
// are a single statement: ON CONFLICT DO NOTHING returns no row when
// the ISBN is already taken, so at most one of two racing inserts for
// the same ISBN ever succeeds.
func (r *PostgresRepo) Insert(ctx context.Context, c Candidate, owner string) (Book, error) {
	const query = `
	INSERT INTO books (id, isbn, title, authors, publisher, published_date, cover_path, in_library, owner)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, true, $7)
	ON CONFLICT (isbn) DO NOTHING
	RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query,
		c.ISBN, c.Title, c.Authors, c.Publisher, c.PublishedDate, c.CoverPath, owner,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrDuplicateISBN
		}
		return Book{}, err
	}
	return b, nil
}

// GetByISBN returns the record for an ISBN, or ErrNotFound.
func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	const query = `
	SELECT ` + bookColumns + `
	FROM books
	WHERE isbn = $1
	LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// Toggle flips in_library in place and returns the updated record. A
// non-UUID id cannot match any row, so it is ErrNotFound without a
// round trip (the uuid column would reject it with a cast error
// otherwise).
func (r *PostgresRepo) Toggle(ctx context.Context, id string) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}

	const query = `
	UPDATE books
	SET in_library = NOT in_library, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// List returns records in insertion order, optionally restricted to an
// owner and to books currently in the library.
func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, error) {
	const query = `
	SELECT ` + bookColumns + `
	FROM books
	WHERE ($1 = '' OR owner = $1)
	AND (NOT $2 OR in_library)
	ORDER BY created_at, id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, q.Owner, q.InLibraryOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
