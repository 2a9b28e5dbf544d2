package book

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryadmin/internal/platform/postgres"
)

const tableBooks = "books"

var dialect = goqu.Dialect("postgres")

var bookColumns = []any{
	"id", "title", "author", "isbn", "category", "total_copies", "available_copies",
	"publication_year", "created_at", "updated_at",
}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, sort SortKey) iter.Seq2[Book, error] {
	ds := dialect.From(tableBooks).
		Select(bookColumns...).
		Order(goqu.I(string(sort)).Asc(), goqu.I("id").Asc())
	return r.query(ctx, ds)
}

func (r *PostgresRepo) ListAvailable(ctx context.Context) iter.Seq2[Book, error] {
	ds := dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C("available_copies").Gt(0)).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc())
	return r.query(ctx, ds)
}

// query runs ds each time the returned sequence is ranged over.
func (r *PostgresRepo) query(ctx context.Context, ds *goqu.SelectDataset) iter.Seq2[Book, error] {
	return func(yield func(Book, error) bool) {
		sql, args, err := ds.Prepared(true).ToSQL()
		if err != nil {
			yield(Book{}, err)
			return
		}

		timeoutCtx, cancel := r.withTimeout(ctx)
		defer cancel()
		rows, err := r.db.Query(timeoutCtx, sql, args...)
		if err != nil {
			yield(Book{}, postgres.TranslateError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				yield(Book{}, postgres.TranslateError(err))
				return
			}
			if !yield(b, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Book{}, postgres.TranslateError(err))
		}
	}
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, error) {
	sql, args, err := dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, postgres.TranslateError(err)
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (id, title, author, isbn, category, total_copies, available_copies,
		                   publication_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql,
		b.ID, b.Title, b.Author, b.ISBN, b.Category, b.TotalCopies, b.AvailableCopies, b.PublicationYear,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return postgres.TranslateError(err)
}

// Update locks the row, applies in to the stored values and writes them back
// in one transaction. A concurrent issue or return waits on the row lock.
func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput) (Book, error) {
	sql, args, err := dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		ForUpdate(exp.Wait).
		Prepared(true).ToSQL()
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b Book
	err = pgx.BeginFunc(timeoutCtx, r.db, func(dbtx pgx.Tx) error {
		var err error
		b, err = scanBook(dbtx.QueryRow(timeoutCtx, sql, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := in.Apply(&b); err != nil {
			return err
		}

		return dbtx.QueryRow(timeoutCtx, `
			UPDATE books
			SET title = $2, author = $3, isbn = $4, category = $5, total_copies = $6,
			    available_copies = $7, publication_year = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			b.ID, b.Title, b.Author, b.ISBN, b.Category, b.TotalCopies, b.AvailableCopies, b.PublicationYear,
		).Scan(&b.UpdatedAt)
	})
	if err != nil {
		return Book{}, postgres.TranslateError(err)
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return ErrHasTransactions.WithCause(err)
		}
		return postgres.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.TotalCopies, &b.AvailableCopies,
		&b.PublicationYear, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}
