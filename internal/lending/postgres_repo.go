package lending

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryadmin/internal/book"
	"libraryadmin/internal/money"
	"libraryadmin/internal/platform/postgres"
	"libraryadmin/internal/student"
)

var dialect = goqu.Dialect("postgres")

var txColumns = []any{
	goqu.I("t.id"), goqu.I("t.student_id"), goqu.I("t.book_id"), goqu.I("t.issue_date"),
	goqu.I("t.due_date"), goqu.I("t.return_date"), goqu.I("t.status"), goqu.I("t.fine_amount"),
	goqu.I("t.created_at"),
}

const txReturning = `id, student_id, book_id, issue_date, due_date, return_date, status, fine_amount, created_at`

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

func (r *PostgresRepo) Issue(ctx context.Context, tx *Transaction) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := pgx.BeginFunc(timeoutCtx, r.db, func(dbtx pgx.Tx) error {
		// FOR KEY SHARE keeps the student from being deleted before the insert.
		var one int
		err := dbtx.QueryRow(timeoutCtx, `SELECT 1 FROM students WHERE id = $1 FOR KEY SHARE`, tx.StudentID).Scan(&one)
		if errors.Is(err, pgx.ErrNoRows) {
			return student.ErrNotFound
		}
		if err != nil {
			return err
		}

		tag, err := dbtx.Exec(timeoutCtx, `
			UPDATE books
			SET available_copies = available_copies - 1, updated_at = NOW()
			WHERE id = $1 AND available_copies > 0`, tx.BookID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := dbtx.QueryRow(timeoutCtx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, tx.BookID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return book.ErrNotFound
			}
			return ErrNoCopiesAvailable
		}

		return dbtx.QueryRow(timeoutCtx, `
			INSERT INTO transactions (id, student_id, book_id, issue_date, due_date, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING created_at`,
			tx.ID, tx.StudentID, tx.BookID, tx.IssueDate, tx.DueDate, string(tx.Status),
		).Scan(&tx.CreatedAt)
	})
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) Return(ctx context.Context, id string, returnDate time.Time) (Transaction, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var tx Transaction
	err := pgx.BeginFunc(timeoutCtx, r.db, func(dbtx pgx.Tx) error {
		var err error
		tx, err = scanTransaction(dbtx.QueryRow(timeoutCtx, `
			UPDATE transactions
			SET status = 'returned', return_date = $2
			WHERE id = $1 AND status = 'issued'
			RETURNING `+txReturning, id, returnDate))
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missingOrReturned(timeoutCtx, dbtx, id)
		}
		if err != nil {
			return err
		}

		_, err = dbtx.Exec(timeoutCtx, `
			UPDATE books
			SET available_copies = LEAST(available_copies + 1, total_copies), updated_at = NOW()
			WHERE id = $1`, tx.BookID)
		return err
	})
	if err != nil {
		return Transaction{}, postgres.TranslateError(err)
	}
	return tx, nil
}

func (r *PostgresRepo) missingOrReturned(ctx context.Context, dbtx pgx.Tx, id string) error {
	var exists bool
	if err := dbtx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadyReturned
}

func (r *PostgresRepo) ApplyFine(ctx context.Context, id string, amount money.Amount) (Transaction, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := scanTransaction(r.db.QueryRow(timeoutCtx, `
		UPDATE transactions
		SET fine_amount = $2
		WHERE id = $1 AND fine_amount IS NULL AND status = 'issued'
		RETURNING `+txReturning, id, amount.Paise()))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.Get(ctx, id)
		if getErr != nil {
			return Transaction{}, getErr
		}
		if current.FineAmount != nil {
			return Transaction{}, ErrFineAlreadyApplied
		}
		return Transaction{}, ErrNotOverdue
	}
	if err != nil {
		return Transaction{}, postgres.TranslateError(err)
	}
	return tx, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Transaction, error) {
	sql, args, err := dialect.From(goqu.T("transactions").As("t")).
		Select(txColumns...).
		Where(goqu.I("t.id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return Transaction{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tx, err := scanTransaction(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, postgres.TranslateError(err)
	}
	return tx, nil
}

func recentFirst(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Order(goqu.I("t.issue_date").Desc(), goqu.I("t.created_at").Desc(), goqu.I("t.id").Desc())
}

func (r *PostgresRepo) List(ctx context.Context) iter.Seq2[Transaction, error] {
	return func(yield func(Transaction, error) bool) {
		sql, args, err := recentFirst(dialect.From(goqu.T("transactions").As("t")).Select(txColumns...)).
			Prepared(true).ToSQL()
		if err != nil {
			yield(Transaction{}, err)
			return
		}

		timeoutCtx, cancel := r.withTimeout(ctx)
		defer cancel()
		rows, err := r.db.Query(timeoutCtx, sql, args...)
		if err != nil {
			yield(Transaction{}, postgres.TranslateError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			tx, err := scanTransaction(rows)
			if err != nil {
				yield(Transaction{}, postgres.TranslateError(err))
				return
			}
			if !yield(tx, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Transaction{}, postgres.TranslateError(err))
		}
	}
}

func (r *PostgresRepo) ListJoined(ctx context.Context) ([]View, error) {
	cols := append(append([]any{}, txColumns...),
		goqu.COALESCE(goqu.I("s.name"), UnknownStudent).As("student_name"),
		goqu.COALESCE(goqu.I("s.email"), "").As("student_email"),
		goqu.COALESCE(goqu.I("b.title"), UnknownBook).As("book_title"),
		goqu.COALESCE(goqu.I("b.author"), UnknownAuthor).As("book_author"),
	)
	ds := dialect.From(goqu.T("transactions").As("t")).
		LeftJoin(goqu.T("students").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("t.student_id")))).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("t.book_id")))).
		Select(cols...)
	sql, args, err := recentFirst(ds).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		var v View
		var fineAmount *int64
		var status string
		if err := rows.Scan(
			&v.ID, &v.StudentID, &v.BookID, &v.IssueDate, &v.DueDate, &v.ReturnDate, &status, &fineAmount,
			&v.CreatedAt, &v.StudentName, &v.StudentEmail, &v.BookTitle, &v.BookAuthor,
		); err != nil {
			return nil, postgres.TranslateError(err)
		}
		v.Status = Status(status)
		v.FineAmount = toAmount(fineAmount)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.TranslateError(err)
	}
	return views, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var tx Transaction
	var fineAmount *int64
	var status string
	err := row.Scan(
		&tx.ID, &tx.StudentID, &tx.BookID, &tx.IssueDate, &tx.DueDate, &tx.ReturnDate, &status, &fineAmount,
		&tx.CreatedAt,
	)
	tx.Status = Status(status)
	tx.FineAmount = toAmount(fineAmount)
	return tx, err
}

func toAmount(paise *int64) *money.Amount {
	if paise == nil {
		return nil
	}
	a := money.Amount(*paise)
	return &a
}
