package lending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryadmin/internal/book"
	"libraryadmin/internal/money"
	"libraryadmin/internal/platform/postgres/pgtest"
	"libraryadmin/internal/student"
)

type pgFixture struct {
	pool     *pgxpool.Pool
	repo     *PostgresRepo
	books    *book.PostgresRepo
	students *student.PostgresRepo
}

func newPGFixture(t *testing.T) pgFixture {
	t.Helper()
	pool := pgtest.Open(t)
	f := pgFixture{
		pool:     pool,
		repo:     NewPostgresRepo(pool, pgtest.QueryTimeout),
		books:    book.NewPostgresRepo(pool, pgtest.QueryTimeout),
		students: student.NewPostgresRepo(pool, pgtest.QueryTimeout),
	}

	ctx := context.Background()
	st := student.Student{ID: "stu_1", Name: "Ana", Email: "ana@example.com", PhoneNumber: "1", Gender: student.GenderFemale}
	require.NoError(t, f.students.Create(ctx, &st))
	return f
}

func (f pgFixture) addBook(t *testing.T, id string, copies int) {
	t.Helper()
	b := book.Book{
		ID: id, Title: "Title " + id, Author: "Author", ISBN: "isbn-" + id, Category: "C",
		TotalCopies: copies, AvailableCopies: copies,
	}
	require.NoError(t, f.books.Create(context.Background(), &b))
}

func (f pgFixture) available(t *testing.T, id string) int {
	t.Helper()
	b, err := f.books.Get(context.Background(), id)
	require.NoError(t, err)
	return b.AvailableCopies
}

func (f pgFixture) countTransactions(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM transactions`).Scan(&n))
	return n
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTx(id, bookID string) *Transaction {
	return &Transaction{
		ID: id, StudentID: "stu_1", BookID: bookID,
		IssueDate: date(2026, 3, 1), DueDate: date(2026, 3, 15), Status: StatusIssued,
	}
}

func TestPostgresRepo_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements available copies", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 2)

		tx := newTx("txn_1", "book_1")
		require.NoError(t, f.repo.Issue(ctx, tx))
		assert.False(t, tx.CreatedAt.IsZero())
		assert.Equal(t, 1, f.available(t, "book_1"))

		got, err := f.repo.Get(ctx, "txn_1")
		require.NoError(t, err)
		assert.Equal(t, StatusIssued, got.Status)
		assert.Nil(t, got.ReturnDate)
		assert.Nil(t, got.FineAmount)
		assert.True(t, got.DueDate.Equal(date(2026, 3, 15)))
	})

	t.Run("no copies leaves no row", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)
		require.NoError(t, f.repo.Issue(ctx, newTx("txn_1", "book_1")))

		err := f.repo.Issue(ctx, newTx("txn_2", "book_1"))
		assert.ErrorIs(t, err, ErrNoCopiesAvailable)
		assert.Equal(t, 1, f.countTransactions(t))
		assert.Equal(t, 0, f.available(t, "book_1"))

		_, err = f.repo.Get(ctx, "txn_2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown book or student", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)

		assert.ErrorIs(t, f.repo.Issue(ctx, newTx("txn_1", "missing")), book.ErrNotFound)

		tx := newTx("txn_2", "book_1")
		tx.StudentID = "missing"
		assert.ErrorIs(t, f.repo.Issue(ctx, tx), student.ErrNotFound)

		assert.Equal(t, 0, f.countTransactions(t))
		assert.Equal(t, 1, f.available(t, "book_1"))
	})

	t.Run("concurrent issues of the last copy", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)

		const workers = 2
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = f.repo.Issue(ctx, newTx(fmt.Sprintf("txn_%d", i), "book_1"))
			}(i)
		}
		wg.Wait()

		var ok, rejected int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrNoCopiesAvailable):
				rejected++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, rejected)
		assert.Equal(t, 0, f.available(t, "book_1"))
		assert.Equal(t, 1, f.countTransactions(t))
	})
}

func TestPostgresRepo_Return(t *testing.T) {
	ctx := context.Background()

	t.Run("double return", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)
		require.NoError(t, f.repo.Issue(ctx, newTx("txn_1", "book_1")))

		got, err := f.repo.Return(ctx, "txn_1", date(2026, 3, 10))
		require.NoError(t, err)
		assert.Equal(t, StatusReturned, got.Status)
		require.NotNil(t, got.ReturnDate)
		assert.True(t, got.ReturnDate.Equal(date(2026, 3, 10)))
		assert.Equal(t, 1, f.available(t, "book_1"))

		_, err = f.repo.Return(ctx, "txn_1", date(2026, 3, 11))
		assert.ErrorIs(t, err, ErrAlreadyReturned)
		assert.Equal(t, 1, f.available(t, "book_1"))
	})

	t.Run("caps available at total", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)
		require.NoError(t, f.repo.Issue(ctx, newTx("txn_1", "book_1")))
		_, err := f.pool.Exec(ctx, `UPDATE books SET available_copies = total_copies WHERE id = 'book_1'`)
		require.NoError(t, err)

		_, err = f.repo.Return(ctx, "txn_1", date(2026, 3, 10))
		require.NoError(t, err)
		assert.Equal(t, 1, f.available(t, "book_1"))
	})

	t.Run("missing", func(t *testing.T) {
		f := newPGFixture(t)
		_, err := f.repo.Return(ctx, "missing", date(2026, 3, 10))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresRepo_ApplyFine(t *testing.T) {
	ctx := context.Background()

	t.Run("re-apply is rejected", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)
		require.NoError(t, f.repo.Issue(ctx, newTx("txn_1", "book_1")))

		got, err := f.repo.ApplyFine(ctx, "txn_1", money.Rupees(20))
		require.NoError(t, err)
		require.NotNil(t, got.FineAmount)
		assert.Equal(t, money.Rupees(20), *got.FineAmount)

		_, err = f.repo.ApplyFine(ctx, "txn_1", money.Rupees(30))
		assert.ErrorIs(t, err, ErrFineAlreadyApplied)

		stored, err := f.repo.Get(ctx, "txn_1")
		require.NoError(t, err)
		assert.Equal(t, money.Rupees(20), *stored.FineAmount)
	})

	t.Run("returned transaction", func(t *testing.T) {
		f := newPGFixture(t)
		f.addBook(t, "book_1", 1)
		require.NoError(t, f.repo.Issue(ctx, newTx("txn_1", "book_1")))
		_, err := f.repo.Return(ctx, "txn_1", date(2026, 3, 20))
		require.NoError(t, err)

		_, err = f.repo.ApplyFine(ctx, "txn_1", money.Rupees(10))
		assert.ErrorIs(t, err, ErrNotOverdue)
	})

	t.Run("missing", func(t *testing.T) {
		f := newPGFixture(t)
		_, err := f.repo.ApplyFine(ctx, "missing", money.Rupees(10))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresRepo_ListJoined(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)
	f.addBook(t, "book_1", 2)

	first := newTx("txn_1", "book_1")
	require.NoError(t, f.repo.Issue(ctx, first))
	second := newTx("txn_2", "book_1")
	second.IssueDate = date(2026, 3, 5)
	second.DueDate = date(2026, 3, 19)
	require.NoError(t, f.repo.Issue(ctx, second))

	views, err := f.repo.ListJoined(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "txn_2", views[0].ID)
	assert.Equal(t, "Ana", views[0].StudentName)
	assert.Equal(t, "ana@example.com", views[0].StudentEmail)
	assert.Equal(t, "Title book_1", views[0].BookTitle)
	assert.Equal(t, "Author", views[0].BookAuthor)

	var ids []string
	for tx, err := range f.repo.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"txn_2", "txn_1"}, ids)
}

func TestPostgresRepo_DeleteWithHistory(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)
	f.addBook(t, "book_1", 1)
	require.NoError(t, f.repo.Issue(ctx, newTx("txn_1", "book_1")))
	_, err := f.repo.Return(ctx, "txn_1", date(2026, 3, 10))
	require.NoError(t, err)

	assert.ErrorIs(t, f.books.Delete(ctx, "book_1"), book.ErrHasTransactions)
	assert.ErrorIs(t, f.students.Delete(ctx, "stu_1"), student.ErrHasTransactions)

	_, err = f.repo.Get(ctx, "txn_1")
	assert.NoError(t, err)
}
