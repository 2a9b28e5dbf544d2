package badgerstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"libraryadmin/internal/apperr"
	"libraryadmin/internal/book"
)

// BookRepo implements book.Repository on Badger.
type BookRepo struct {
	s *Store
}

var _ book.Repository = (*BookRepo)(nil)

func (r *BookRepo) List(ctx context.Context, sort book.SortKey) iter.Seq2[book.Book, error] {
	return lazy(ctx, func() ([]book.Book, error) {
		books, err := r.all()
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(books, bookOrder(sort))
		return books, nil
	})
}

func (r *BookRepo) ListAvailable(ctx context.Context) iter.Seq2[book.Book, error] {
	return lazy(ctx, func() ([]book.Book, error) {
		books, err := r.all()
		if err != nil {
			return nil, err
		}
		books = slices.DeleteFunc(books, func(b book.Book) bool { return !b.IsAvailable() })
		slices.SortStableFunc(books, bookOrder(book.SortTitle))
		return books, nil
	})
}

func (r *BookRepo) all() ([]book.Book, error) {
	var books []book.Book
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		books, err = scanPrefix[book.Book](txn, []byte(prefixBook))
		return err
	})
	return books, err
}

func bookOrder(sort book.SortKey) func(a, b book.Book) int {
	return func(a, b book.Book) int {
		var c int
		switch sort {
		case book.SortAuthor:
			c = compareFold(a.Author, b.Author)
		case book.SortCategory:
			c = compareFold(a.Category, b.Category)
		case book.SortPublicationYear:
			c = cmp.Compare(a.PublicationYear, b.PublicationYear)
		case book.SortCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = compareFold(a.Title, b.Title)
		}
		return cmp.Or(c, strings.Compare(a.ID, b.ID))
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func (r *BookRepo) Get(_ context.Context, id string) (book.Book, error) {
	var b book.Book
	err := r.s.view(func(txn *badger.Txn) error {
		return getBook(txn, id, &b)
	})
	return b, err
}

func getBook(txn *badger.Txn, id string, b *book.Book) error {
	err := getJSON(txn, key(prefixBook, id), b)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return book.ErrNotFound
	}
	return err
}

func (r *BookRepo) Create(ctx context.Context, b *book.Book) error {
	return r.s.update(ctx, func(txn *badger.Txn) error {
		if err := b.CheckCopies(); err != nil {
			return err
		}
		taken, err := exists(txn, key(prefixBook, b.ID))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(fmt.Sprintf("book %s already exists", b.ID))
		}
		if err := claimUnique(txn, prefixISBN, "isbn", b.ISBN, b.ID); err != nil {
			return err
		}

		now := r.s.now()
		b.CreatedAt, b.UpdatedAt = now, now
		return setJSON(txn, key(prefixBook, b.ID), b)
	})
}

// Update applies in to the book read inside the write transaction, so an
// issue or return committed meanwhile forces a conflict and a retry on fresh
// counters.
func (r *BookRepo) Update(ctx context.Context, id string, in book.UpdateInput) (book.Book, error) {
	var b book.Book
	err := r.s.update(ctx, func(txn *badger.Txn) error {
		b = book.Book{}
		if err := getBook(txn, id, &b); err != nil {
			return err
		}
		oldISBN := b.ISBN
		if err := in.Apply(&b); err != nil {
			return err
		}
		if b.ISBN != oldISBN {
			if err := claimUnique(txn, prefixISBN, "isbn", b.ISBN, b.ID); err != nil {
				return err
			}
			if err := txn.Delete(key(prefixISBN, oldISBN)); err != nil {
				return err
			}
		}

		b.UpdatedAt = r.s.now()
		return setJSON(txn, key(prefixBook, b.ID), &b)
	})
	if err != nil {
		return book.Book{}, err
	}
	return b, nil
}

func (r *BookRepo) Delete(ctx context.Context, id string) error {
	return r.s.update(ctx, func(txn *badger.Txn) error {
		var current book.Book
		if err := getBook(txn, id, &current); err != nil {
			return err
		}
		if hasPrefix(txn, linkPrefix(prefixTxnBook, id)) {
			return book.ErrHasTransactions
		}
		if err := txn.Delete(key(prefixISBN, current.ISBN)); err != nil {
			return err
		}
		return txn.Delete(key(prefixBook, id))
	})
}

// claimUnique points the unique index entry for value at ownerID, failing with
// a conflict when another record already owns it.
func claimUnique(txn *badger.Txn, prefix, field, value, ownerID string) error {
	item, err := txn.Get(key(prefix, value))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return err
	default:
		owner, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(owner) != ownerID {
			return apperr.Conflict(fmt.Sprintf("Key (%s)=(%s) already exists.", field, value))
		}
	}
	return txn.Set(key(prefix, value), []byte(ownerID))
}
