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
	"libraryadmin/internal/student"
)

// StudentRepo implements student.Repository on Badger.
type StudentRepo struct {
	s *Store
}

var _ student.Repository = (*StudentRepo)(nil)

func (r *StudentRepo) List(ctx context.Context, sort student.SortKey) iter.Seq2[student.Student, error] {
	return lazy(ctx, func() ([]student.Student, error) {
		var students []student.Student
		err := r.s.view(func(txn *badger.Txn) error {
			var err error
			students, err = scanPrefix[student.Student](txn, []byte(prefixStudent))
			return err
		})
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(students, studentOrder(sort))
		return students, nil
	})
}

func studentOrder(sort student.SortKey) func(a, b student.Student) int {
	return func(a, b student.Student) int {
		var c int
		switch sort {
		case student.SortEmail:
			c = compareFold(a.Email, b.Email)
		case student.SortCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = compareFold(a.Name, b.Name)
		}
		return cmp.Or(c, strings.Compare(a.ID, b.ID))
	}
}

func (r *StudentRepo) Get(_ context.Context, id string) (student.Student, error) {
	var st student.Student
	err := r.s.view(func(txn *badger.Txn) error {
		return getStudent(txn, id, &st)
	})
	return st, err
}

func getStudent(txn *badger.Txn, id string, st *student.Student) error {
	err := getJSON(txn, key(prefixStudent, id), st)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return student.ErrNotFound
	}
	return err
}

func (r *StudentRepo) Create(ctx context.Context, st *student.Student) error {
	return r.s.update(ctx, func(txn *badger.Txn) error {
		taken, err := exists(txn, key(prefixStudent, st.ID))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(fmt.Sprintf("student %s already exists", st.ID))
		}
		if err := claimUnique(txn, prefixEmail, "email", st.Email, st.ID); err != nil {
			return err
		}

		now := r.s.now()
		st.CreatedAt, st.UpdatedAt = now, now
		return setJSON(txn, key(prefixStudent, st.ID), st)
	})
}

func (r *StudentRepo) Update(ctx context.Context, st *student.Student) error {
	return r.s.update(ctx, func(txn *badger.Txn) error {
		var current student.Student
		if err := getStudent(txn, st.ID, &current); err != nil {
			return err
		}
		if current.Email != st.Email {
			if err := claimUnique(txn, prefixEmail, "email", st.Email, st.ID); err != nil {
				return err
			}
			if err := txn.Delete(key(prefixEmail, current.Email)); err != nil {
				return err
			}
		}

		st.CreatedAt = current.CreatedAt
		st.UpdatedAt = r.s.now()
		return setJSON(txn, key(prefixStudent, st.ID), st)
	})
}

func (r *StudentRepo) Delete(ctx context.Context, id string) error {
	return r.s.update(ctx, func(txn *badger.Txn) error {
		return deleteStudent(txn, id)
	})
}

// deleteStudent reads the student key before checking the ledger links; Issue
// writes that key, so the two cannot both commit.
func deleteStudent(txn *badger.Txn, id string) error {
	var current student.Student
	if err := getStudent(txn, id, &current); err != nil {
		return err
	}
	if hasPrefix(txn, linkPrefix(prefixTxnStudent, id)) {
		return student.ErrHasTransactions
	}
	if err := txn.Delete(key(prefixEmail, current.Email)); err != nil {
		return err
	}
	return txn.Delete(key(prefixStudent, id))
}
