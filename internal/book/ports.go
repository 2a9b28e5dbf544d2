package book

import (
	"context"
	"iter"
)

// Repository defines the contract for book data storage.
//
// List and ListAvailable return lazy sequences: the store is queried each time
// the sequence is ranged over, so a sequence can be iterated again for fresh data.
type Repository interface {
	List(ctx context.Context, sort SortKey) iter.Seq2[Book, error]
	// ListAvailable yields books with available_copies > 0 ordered by title.
	ListAvailable(ctx context.Context) iter.Seq2[Book, error]
	Get(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, b *Book) error
	// Update applies in to the stored book and the write in one atomic unit,
	// so concurrent issues and returns are never overwritten.
	Update(ctx context.Context, id string, in UpdateInput) (Book, error)
	// Delete returns ErrNotFound for a missing id and ErrHasTransactions when the
	// book is referenced by the ledger.
	Delete(ctx context.Context, id string) error
}
