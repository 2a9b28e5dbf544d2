package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"libraryadmin/internal/apperr"
	"libraryadmin/internal/book"
	"libraryadmin/internal/lending"
	"libraryadmin/internal/money"
	"libraryadmin/internal/student"
)

// TransactionRepo implements lending.Repository on Badger. The ledger entry and
// the book counter are written in the same Badger transaction; a concurrent
// writer that touched either key forces a retry that re-reads both.
type TransactionRepo struct {
	s *Store
}

var _ lending.Repository = (*TransactionRepo)(nil)

func (r *TransactionRepo) Issue(ctx context.Context, tx *lending.Transaction) error {
	return r.s.update(ctx, func(txn *badger.Txn) error {
		var st student.Student
		if err := getStudent(txn, tx.StudentID, &st); err != nil {
			return err
		}
		var b book.Book
		if err := getBook(txn, tx.BookID, &b); err != nil {
			return err
		}
		if !b.IsAvailable() {
			return lending.ErrNoCopiesAvailable
		}
		taken, err := exists(txn, key(prefixTxn, tx.ID))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(fmt.Sprintf("transaction %s already exists", tx.ID))
		}

		// Rewriting the student puts its key in this commit, so a delete that
		// read it without seeing the new link conflicts and retries.
		if err := setJSON(txn, key(prefixStudent, st.ID), st); err != nil {
			return err
		}

		now := r.s.now()
		b.AvailableCopies--
		b.UpdatedAt = now
		if err := setJSON(txn, key(prefixBook, b.ID), b); err != nil {
			return err
		}

		tx.CreatedAt = now
		if err := setJSON(txn, key(prefixTxn, tx.ID), tx); err != nil {
			return err
		}
		if err := txn.Set(linkKey(prefixTxnBook, tx.BookID, tx.ID), nil); err != nil {
			return err
		}
		return txn.Set(linkKey(prefixTxnStudent, tx.StudentID, tx.ID), nil)
	})
}

func (r *TransactionRepo) Return(ctx context.Context, id string, returnDate time.Time) (lending.Transaction, error) {
	var tx lending.Transaction
	err := r.s.update(ctx, func(txn *badger.Txn) error {
		tx = lending.Transaction{}
		if err := getTransaction(txn, id, &tx); err != nil {
			return err
		}
		if tx.Status != lending.StatusIssued {
			return lending.ErrAlreadyReturned
		}

		rd := returnDate
		tx.Status = lending.StatusReturned
		tx.ReturnDate = &rd
		if err := setJSON(txn, key(prefixTxn, tx.ID), tx); err != nil {
			return err
		}

		var b book.Book
		err := getBook(txn, tx.BookID, &b)
		if errors.Is(err, book.ErrNotFound) {
			// Books with ledger history cannot be deleted, so this only
			// happens on data written outside the service.
			r.s.logger.WarnContext(ctx, "returned transaction references a missing book",
				"transaction_id", tx.ID, "book_id", tx.BookID)
			return nil
		}
		if err != nil {
			return err
		}
		b.AvailableCopies = min(b.AvailableCopies+1, b.TotalCopies)
		b.UpdatedAt = r.s.now()
		return setJSON(txn, key(prefixBook, b.ID), b)
	})
	if err != nil {
		return lending.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionRepo) ApplyFine(ctx context.Context, id string, amount money.Amount) (lending.Transaction, error) {
	var tx lending.Transaction
	err := r.s.update(ctx, func(txn *badger.Txn) error {
		tx = lending.Transaction{}
		if err := getTransaction(txn, id, &tx); err != nil {
			return err
		}
		if tx.FineAmount != nil {
			return lending.ErrFineAlreadyApplied
		}
		if tx.Status != lending.StatusIssued {
			return lending.ErrNotOverdue
		}
		a := amount
		tx.FineAmount = &a
		return setJSON(txn, key(prefixTxn, tx.ID), tx)
	})
	if err != nil {
		return lending.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionRepo) Get(_ context.Context, id string) (lending.Transaction, error) {
	var tx lending.Transaction
	err := r.s.view(func(txn *badger.Txn) error {
		return getTransaction(txn, id, &tx)
	})
	return tx, err
}

func getTransaction(txn *badger.Txn, id string, tx *lending.Transaction) error {
	err := getJSON(txn, key(prefixTxn, id), tx)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return lending.ErrNotFound
	}
	return err
}

func (r *TransactionRepo) List(ctx context.Context) iter.Seq2[lending.Transaction, error] {
	return lazy(ctx, func() ([]lending.Transaction, error) {
		var txs []lending.Transaction
		err := r.s.view(func(txn *badger.Txn) error {
			var err error
			txs, err = scanPrefix[lending.Transaction](txn, []byte(prefixTxn))
			return err
		})
		if err != nil {
			return nil, err
		}
		lending.SortRecentFirst(txs)
		return txs, nil
	})
}

// ListJoined reads the ledger, students and books from one snapshot and joins
// them in memory.
func (r *TransactionRepo) ListJoined(ctx context.Context) ([]lending.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable(err)
	}

	var (
		txs      []lending.Transaction
		students []student.Student
		books    []book.Book
	)
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		if txs, err = scanPrefix[lending.Transaction](txn, []byte(prefixTxn)); err != nil {
			return err
		}
		if students, err = scanPrefix[student.Student](txn, []byte(prefixStudent)); err != nil {
			return err
		}
		books, err = scanPrefix[book.Book](txn, []byte(prefixBook))
		return err
	})
	if err != nil {
		return nil, err
	}

	lending.SortRecentFirst(txs)
	return lending.Join(seqOf(txs), seqOf(students), seqOf(books))
}

func seqOf[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v := range slices.Values(items) {
			if !yield(v, nil) {
				return
			}
		}
	}
}
