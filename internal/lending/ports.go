package lending

import (
	"context"
	"iter"
	"time"

	"libraryadmin/internal/book"
	"libraryadmin/internal/money"
	"libraryadmin/internal/student"
)

// Repository persists the ledger. Issue, Return and ApplyFine are each a single
// atomic unit covering the transaction row and the book's copy counter.
type Repository interface {
	// Issue decrements the book's available copies, conditioned on it being
	// positive at write time, and inserts tx. It returns student.ErrNotFound,
	// book.ErrNotFound or ErrNoCopiesAvailable without writing anything.
	Issue(ctx context.Context, tx *Transaction) error
	// Return marks an issued transaction returned on returnDate and increments the
	// book's available copies, capped at total copies. A transaction that is not
	// issued yields ErrAlreadyReturned.
	Return(ctx context.Context, id string, returnDate time.Time) (Transaction, error)
	// ApplyFine stores amount on an issued transaction whose fine is unset.
	ApplyFine(ctx context.Context, id string, amount money.Amount) (Transaction, error)
	Get(ctx context.Context, id string) (Transaction, error)
	// List yields all transactions, most recent issue date first.
	List(ctx context.Context) iter.Seq2[Transaction, error]
	// ListJoined returns all transactions joined with student and book names,
	// most recent issue date first.
	ListJoined(ctx context.Context) ([]View, error)
}

// BookLister lists the catalog for the fallback join.
type BookLister interface {
	List(ctx context.Context, sort book.SortKey) iter.Seq2[book.Book, error]
}

// StudentLister lists students for the fallback join.
type StudentLister interface {
	List(ctx context.Context, sort student.SortKey) iter.Seq2[student.Student, error]
}
