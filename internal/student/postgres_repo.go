package student

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryadmin/internal/platform/postgres"
)

const tableStudents = "students"

var dialect = goqu.Dialect("postgres")

var studentColumns = []any{"id", "name", "email", "phone_number", "gender", "created_at", "updated_at"}

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

func (r *PostgresRepo) List(ctx context.Context, sort SortKey) iter.Seq2[Student, error] {
	return func(yield func(Student, error) bool) {
		sql, args, err := dialect.From(tableStudents).
			Select(studentColumns...).
			Order(goqu.I(string(sort)).Asc(), goqu.I("id").Asc()).
			Prepared(true).ToSQL()
		if err != nil {
			yield(Student{}, err)
			return
		}

		timeoutCtx, cancel := r.withTimeout(ctx)
		defer cancel()
		rows, err := r.db.Query(timeoutCtx, sql, args...)
		if err != nil {
			yield(Student{}, postgres.TranslateError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			s, err := scanStudent(rows)
			if err != nil {
				yield(Student{}, postgres.TranslateError(err))
				return
			}
			if !yield(s, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Student{}, postgres.TranslateError(err))
		}
	}
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Student, error) {
	sql, args, err := dialect.From(tableStudents).
		Select(studentColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return Student{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	s, err := scanStudent(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, postgres.TranslateError(err)
	}
	return s, nil
}

func (r *PostgresRepo) Create(ctx context.Context, s *Student) error {
	const sql = `
		INSERT INTO students (id, name, email, phone_number, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql, s.ID, s.Name, s.Email, s.PhoneNumber, s.Gender).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) Update(ctx context.Context, s *Student) error {
	const sql = `
		UPDATE students
		SET name = $2, email = $3, phone_number = $4, gender = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql, s.ID, s.Name, s.Email, s.PhoneNumber, s.Gender).Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM students WHERE id = $1`, id)
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

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PhoneNumber, &s.Gender, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
