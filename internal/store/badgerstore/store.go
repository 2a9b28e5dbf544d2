// Package badgerstore is the embedded storage backend. One Badger database holds
// books, students and transactions; every mutation is a single serializable
// Badger transaction, retried with backoff when it loses a write conflict.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"

	"libraryadmin/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	retry  retryConfig
	now    func() time.Time
}

// Open opens the database at path. An empty path opens an in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("badger database opened", "path", path, "in_memory", path == "")

	return &Store{
		db:     db,
		logger: logger,
		retry:  defaultRetryConfig(),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.logger.Info("closing badger database")
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return apperr.Unavailable(badger.ErrDBClosed)
	}
	return nil
}

// Books returns the book repository.
func (s *Store) Books() *BookRepo { return &BookRepo{s: s} }

// Students returns the student repository.
func (s *Store) Students() *StudentRepo { return &StudentRepo{s: s} }

// Transactions returns the ledger repository.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	attempt := 0
	return retryOnConflict(ctx, s.retry, func() error {
		attempt++
		if attempt > 1 {
			s.logger.DebugContext(ctx, "retrying badger transaction after conflict", "attempt", attempt)
		}
		return s.db.Update(fn)
	})
}

// view runs fn in a read-only transaction.
func (s *Store) view(fn func(txn *badger.Txn) error) error {
	return translateError(s.db.View(fn))
}

func getJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

func setJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// hasPrefix reports whether any key starts with prefix.
func hasPrefix(txn *badger.Txn, prefix []byte) bool {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	it.Rewind()
	return it.Valid()
}

// scanPrefix decodes every value stored under prefix.
func scanPrefix[T any](txn *badger.Txn, prefix []byte) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []T
	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// lazy returns a sequence that calls load on every iteration and yields its items.
func lazy[T any](ctx context.Context, load func() ([]T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if err := ctx.Err(); err != nil {
			yield(zero, apperr.Unavailable(err))
			return
		}
		items, err := load()
		if err != nil {
			yield(zero, err)
			return
		}
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}
